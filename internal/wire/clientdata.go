package wire

// PrekeyPair is a stored, unconsumed prekey.
type PrekeyPair struct {
	PrivateKey []byte `cbor:"1,keyasint"`
	PublicKey  []byte `cbor:"2,keyasint"`
}

// TopicKeyPair is a stored, unconsumed topic key with its published bundle.
type TopicKeyPair struct {
	SigningKey    []byte         `cbor:"1,keyasint"`
	EncryptionKey []byte         `cbor:"2,keyasint"`
	Public        TopicKeyPublic `cbor:"3,keyasint"`
}

// TopicStore is the full persisted state of one topic, including the chain
// position and the pending verification queue.
type TopicStore struct {
	ID             []byte        `cbor:"1,keyasint"`
	CreationTime   int64         `cbor:"2,keyasint"`
	Timestamp      int64         `cbor:"3,keyasint"`
	Members        []Member      `cbor:"4,keyasint"`
	MessageKey     []byte        `cbor:"5,keyasint"`
	SigningKey     []byte        `cbor:"6,keyasint"`
	EncryptionKey  []byte        `cbor:"7,keyasint"`
	ChainIndex     uint32        `cbor:"8,keyasint"`
	VerifiedOutput []byte        `cbor:"9,keyasint"`
	Unverified     []TopicUpdate `cbor:"10,keyasint,omitempty"`
}

// ClientData is the single serialized blob a device persists.
type ClientData struct {
	ServerURL        string         `cbor:"1,keyasint"`
	AppID            string         `cbor:"2,keyasint"`
	UserPrivateKey   []byte         `cbor:"3,keyasint"`
	DevicePrivateKey []byte         `cbor:"4,keyasint"`
	UserPublicKey    []byte         `cbor:"5,keyasint"`
	Info             *UserInfo      `cbor:"6,keyasint,omitempty"`
	AuthToken        []byte         `cbor:"7,keyasint"`
	Prekeys          []PrekeyPair   `cbor:"8,keyasint,omitempty"`
	TopicKeys        []TopicKeyPair `cbor:"9,keyasint,omitempty"`
	Topics           []TopicStore   `cbor:"10,keyasint,omitempty"`
}
