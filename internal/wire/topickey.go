package wire

import (
	"github.com/christophhagen/RendezvousClient/internal/crypto"
	"github.com/christophhagen/RendezvousClient/internal/keys"
)

// TopicKeyPublic is the published bundle of a per-user topic key. The
// signature binds signature key ‖ encryption key to the user identity key.
type TopicKeyPublic struct {
	UserKey       []byte `cbor:"1,keyasint"`
	SignatureKey  []byte `cbor:"2,keyasint"`
	EncryptionKey []byte `cbor:"3,keyasint"`
	Signature     []byte `cbor:"4,keyasint"`
}

// SignedPayload returns signature key ‖ encryption key, the bytes the
// bundle signature covers.
func (t TopicKeyPublic) SignedPayload() []byte {
	out := make([]byte, 0, len(t.SignatureKey)+len(t.EncryptionKey))
	out = append(out, t.SignatureKey...)
	return append(out, t.EncryptionKey...)
}

// Verify checks the binding signature under the given user key and returns
// the typed component keys.
func (t TopicKeyPublic) Verify(user keys.SigningPublic) (sig keys.SigningPublic, enc keys.AgreementPublic, ok bool) {
	sig, ok = keys.SigningPublicFromBytes(t.SignatureKey)
	if !ok {
		return sig, enc, false
	}
	enc, ok = keys.AgreementPublicFromBytes(t.EncryptionKey)
	if !ok {
		return sig, enc, false
	}
	if !crypto.Verify(user, t.SignedPayload(), t.Signature) {
		return sig, enc, false
	}
	return sig, enc, true
}

// TopicKeyMessage delivers a topic key's private halves to another device
// of the same user, encrypted to one of that device's prekeys.
type TopicKeyMessage struct {
	DevicePrekey  []byte         `cbor:"1,keyasint"`
	TopicKey      TopicKeyPublic `cbor:"2,keyasint"`
	EncryptedKeys []byte         `cbor:"3,keyasint"`
}

// DeviceTopicKeyMessages groups the messages addressed to one device.
type DeviceTopicKeyMessages struct {
	DeviceKey []byte            `cbor:"1,keyasint"`
	Messages  []TopicKeyMessage `cbor:"2,keyasint"`
}

// TopicKeyBundle uploads a batch of fresh topic keys together with the
// per-device messages distributing their private halves.
type TopicKeyBundle struct {
	TopicKeys []TopicKeyPublic         `cbor:"1,keyasint"`
	Messages  []DeviceTopicKeyMessages `cbor:"2,keyasint"`
}

// TopicKeyRequest asks for one unconsumed topic key per listed user.
type TopicKeyRequest struct {
	Users [][]byte `cbor:"1,keyasint"`
}

// UserTopicKey pairs a served topic key with the user it belongs to.
type UserTopicKey struct {
	UserKey  []byte         `cbor:"1,keyasint"`
	TopicKey TopicKeyPublic `cbor:"2,keyasint"`
}

// TopicKeyResponse answers a TopicKeyRequest. Users without an available
// topic key are absent from the list.
type TopicKeyResponse struct {
	Keys []UserTopicKey `cbor:"1,keyasint"`
}
