package topic

import (
	"io"

	"github.com/christophhagen/RendezvousClient/internal/crypto"
	"github.com/christophhagen/RendezvousClient/internal/keys"
	"github.com/christophhagen/RendezvousClient/internal/wire"
	"github.com/christophhagen/RendezvousClient/pkg/rverr"
)

// TopicKeys is a full per-user topic key: both private halves plus the
// published bundle binding the public halves to the user identity key.
type TopicKeys struct {
	SigningPrivate    keys.SigningPrivate
	EncryptionPrivate keys.AgreementPrivate
	Public            wire.TopicKeyPublic
}

// NewKeys generates a fresh topic key for the user and signs the binding.
func NewKeys(rng io.Reader, userPriv keys.SigningPrivate) (*TopicKeys, error) {
	sigPriv, sigPub, err := crypto.GenerateSigningKey(rng)
	if err != nil {
		return nil, err
	}
	encPriv, encPub, err := crypto.GenerateAgreementKey(rng)
	if err != nil {
		return nil, err
	}
	pub := wire.TopicKeyPublic{
		UserKey:       crypto.PublicOf(userPriv).Slice(),
		SignatureKey:  sigPub.Slice(),
		EncryptionKey: encPub.Slice(),
	}
	pub.Signature = crypto.Sign(userPriv, pub.SignedPayload())
	return &TopicKeys{
		SigningPrivate:    sigPriv,
		EncryptionPrivate: encPriv,
		Public:            pub,
	}, nil
}

// WrapFor packs the private halves for a peer device, encrypted to one of
// its prekeys. The prekey travels alongside so the receiver can locate the
// matching private half.
func (t *TopicKeys) WrapFor(rng io.Reader, peerPrekey keys.AgreementPublic) (wire.TopicKeyMessage, error) {
	plain := make([]byte, 0, 2*keys.Length)
	plain = append(plain, t.SigningPrivate.Slice()...)
	plain = append(plain, t.EncryptionPrivate.Slice()...)
	defer crypto.Wipe(plain)

	ct, err := crypto.EncryptTo(rng, peerPrekey, plain)
	if err != nil {
		return wire.TopicKeyMessage{}, err
	}
	return wire.TopicKeyMessage{
		DevicePrekey:  peerPrekey.Slice(),
		TopicKey:      t.Public,
		EncryptedKeys: ct,
	}, nil
}

// AcceptKeys unwraps a topic key delivered by another device of the same
// user. It verifies the bundle signature under the sender's user key,
// decrypts the private halves with the matching prekey, and checks that
// each private half reproduces the published public half.
func AcceptKeys(message wire.TopicKeyMessage, prekeyPriv keys.AgreementPrivate, sender keys.SigningPublic) (*TopicKeys, error) {
	sigPub, encPub, ok := message.TopicKey.Verify(sender)
	if !ok {
		return nil, rverr.New(rverr.InvalidSignature, "topic key bundle signature invalid")
	}

	plain, err := crypto.DecryptFrom(prekeyPriv, message.EncryptedKeys)
	if err != nil {
		return nil, rverr.Wrap(rverr.Unknown, "topic key message decrypt", err)
	}
	defer crypto.Wipe(plain)
	if len(plain) != 2*keys.Length {
		return nil, rverr.New(rverr.InvalidServerData, "topic key message has wrong length")
	}

	var sigPriv keys.SigningPrivate
	var encPriv keys.AgreementPrivate
	copy(sigPriv[:], plain[:keys.Length])
	copy(encPriv[:], plain[keys.Length:])

	// Both private halves must reproduce the signed public halves.
	if crypto.PublicOf(sigPriv) != sigPub {
		return nil, rverr.New(rverr.InvalidSignature, "signing key does not match bundle")
	}
	derived, err := crypto.PublicAgreementKey(encPriv)
	if err != nil || derived != encPub {
		return nil, rverr.New(rverr.InvalidSignature, "encryption key does not match bundle")
	}

	return &TopicKeys{
		SigningPrivate:    sigPriv,
		EncryptionPrivate: encPriv,
		Public:            message.TopicKey,
	}, nil
}
