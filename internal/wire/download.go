package wire

// Receipt records that a member's device has verified a topic chain up to
// ChainIndex. Receipts are produced server-side on delivery; the client
// only parses them.
type Receipt struct {
	SenderKey  []byte `cbor:"1,keyasint"`
	TopicID    []byte `cbor:"2,keyasint"`
	ChainIndex uint32 `cbor:"3,keyasint"`
}

// DeviceDownload is the envelope returned by the message download endpoint.
// The receive pipeline processes the fields strictly in declaration order.
type DeviceDownload struct {
	UserInfo         *UserInfo         `cbor:"1,keyasint,omitempty"`
	TopicKeyMessages []TopicKeyMessage `cbor:"2,keyasint,omitempty"`
	Topics           []Topic           `cbor:"3,keyasint,omitempty"`
	Messages         []TopicUpdate     `cbor:"4,keyasint,omitempty"`
	Receipts         []Receipt         `cbor:"5,keyasint,omitempty"`
}

// RegistrationBundle is the one-shot registration request: the signed
// initial UserInfo, the admin-issued pin, and the first batches of prekeys
// and topic keys.
type RegistrationBundle struct {
	Info      UserInfo         `cbor:"1,keyasint"`
	Pin       uint32           `cbor:"2,keyasint"`
	Prekeys   []Prekey         `cbor:"3,keyasint,omitempty"`
	TopicKeys []TopicKeyPublic `cbor:"4,keyasint,omitempty"`
}

// AllowedUser is the admin's answer to an allow request.
type AllowedUser struct {
	Name   string `cbor:"1,keyasint"`
	Pin    uint32 `cbor:"2,keyasint"`
	Expiry int64  `cbor:"3,keyasint"`
}
