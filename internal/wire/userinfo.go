package wire

import (
	"bytes"

	"github.com/christophhagen/RendezvousClient/internal/crypto"
	"github.com/christophhagen/RendezvousClient/internal/keys"
)

// DeviceInfo describes one device inside a UserInfo record.
type DeviceInfo struct {
	DeviceKey    []byte `cbor:"1,keyasint"`
	CreationTime int64  `cbor:"2,keyasint"`
	IsActive     bool   `cbor:"3,keyasint"`
	AppID        string `cbor:"4,keyasint,omitempty"`
}

// Equal reports byte-for-byte equality of two device records.
func (d DeviceInfo) Equal(o DeviceInfo) bool {
	return bytes.Equal(d.DeviceKey, o.DeviceKey) &&
		d.CreationTime == o.CreationTime &&
		d.IsActive == o.IsActive &&
		d.AppID == o.AppID
}

// UserInfo is the signed record listing a user's devices.
//
// Invariants: devices are sorted ascending by creation time, the timestamp
// grows monotonically across updates, and public key, name and creation
// time never change.
type UserInfo struct {
	PublicKey    []byte       `cbor:"1,keyasint"`
	Name         string       `cbor:"2,keyasint"`
	CreationTime int64        `cbor:"3,keyasint"`
	Timestamp    int64        `cbor:"4,keyasint"`
	Devices      []DeviceInfo `cbor:"5,keyasint"`
	Signature    []byte       `cbor:"6,keyasint"`
}

type userInfoUnsigned struct {
	PublicKey    []byte       `cbor:"1,keyasint"`
	Name         string       `cbor:"2,keyasint"`
	CreationTime int64        `cbor:"3,keyasint"`
	Timestamp    int64        `cbor:"4,keyasint"`
	Devices      []DeviceInfo `cbor:"5,keyasint"`
}

func (u *UserInfo) signedBytes() ([]byte, error) {
	return Marshal(userInfoUnsigned{
		PublicKey:    u.PublicKey,
		Name:         u.Name,
		CreationTime: u.CreationTime,
		Timestamp:    u.Timestamp,
		Devices:      u.Devices,
	})
}

// SignWith sets the record's signature using the user identity key.
func (u *UserInfo) SignWith(priv keys.SigningPrivate) error {
	b, err := u.signedBytes()
	if err != nil {
		return err
	}
	u.Signature = crypto.Sign(priv, b)
	return nil
}

// VerifySignature checks the signature under the user identity key.
func (u *UserInfo) VerifySignature(pub keys.SigningPublic) bool {
	b, err := u.signedBytes()
	if err != nil {
		return false
	}
	return crypto.Verify(pub, b, u.Signature)
}

// DevicesSorted reports whether devices ascend by creation time.
func (u *UserInfo) DevicesSorted() bool {
	for i := 1; i < len(u.Devices); i++ {
		if u.Devices[i].CreationTime < u.Devices[i-1].CreationTime {
			return false
		}
	}
	return true
}

// Device returns the device record with the given key.
func (u *UserInfo) Device(key keys.SigningPublic) (DeviceInfo, bool) {
	for _, d := range u.Devices {
		if bytes.Equal(d.DeviceKey, key.Slice()) {
			return d, true
		}
	}
	return DeviceInfo{}, false
}
