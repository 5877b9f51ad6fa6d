package wire

import (
	"github.com/christophhagen/RendezvousClient/internal/crypto"
	"github.com/christophhagen/RendezvousClient/internal/keys"
)

// Prekey is a published ephemeral key-agreement key. The signature over the
// public key is made by the owning device's signing key.
type Prekey struct {
	PublicKey []byte `cbor:"1,keyasint"`
	Signature []byte `cbor:"2,keyasint"`
}

// NewPrekey signs the public half with the device key.
func NewPrekey(devicePriv keys.SigningPrivate, pub keys.AgreementPublic) Prekey {
	return Prekey{
		PublicKey: pub.Slice(),
		Signature: crypto.Sign(devicePriv, pub.Slice()),
	}
}

// Verify checks the prekey signature under the device key and returns the
// typed public key.
func (p Prekey) Verify(deviceKey keys.SigningPublic) (keys.AgreementPublic, bool) {
	pub, ok := keys.AgreementPublicFromBytes(p.PublicKey)
	if !ok {
		return pub, false
	}
	if !crypto.Verify(deviceKey, p.PublicKey, p.Signature) {
		return pub, false
	}
	return pub, true
}

// PrekeyUploadRequest publishes fresh prekeys for the authenticated device.
type PrekeyUploadRequest struct {
	Prekeys []Prekey `cbor:"1,keyasint"`
}

// DevicePrekeys is one device's share of a prekey bundle.
type DevicePrekeys struct {
	DeviceKey []byte   `cbor:"1,keyasint"`
	Prekeys   []Prekey `cbor:"2,keyasint"`
}

// DevicePrekeyBundle is the server's answer to a prekey request: KeyCount
// prekeys for every other device of the requesting user.
type DevicePrekeyBundle struct {
	KeyCount uint32          `cbor:"1,keyasint"`
	Devices  []DevicePrekeys `cbor:"2,keyasint"`
}
