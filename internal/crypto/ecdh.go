package crypto

import (
	"io"

	"golang.org/x/crypto/curve25519"

	"github.com/christophhagen/RendezvousClient/internal/keys"
)

// GenerateAgreementKey returns a fresh Curve25519 key pair.
// The private key is clamped per RFC 7748.
func GenerateAgreementKey(rng io.Reader) (priv keys.AgreementPrivate, pub keys.AgreementPublic, err error) {
	if _, err = io.ReadFull(rng, priv[:]); err != nil {
		return
	}
	clamp(&priv)
	pub, err = PublicAgreementKey(priv)
	return
}

// PublicAgreementKey derives the public half of an agreement key.
func PublicAgreementKey(priv keys.AgreementPrivate) (pub keys.AgreementPublic, err error) {
	pb, err := curve25519.X25519(priv.Slice(), curve25519.Basepoint)
	if err != nil {
		return pub, err
	}
	copy(pub[:], pb)
	return pub, nil
}

// DH computes the X25519 shared secret.
func DH(priv keys.AgreementPrivate, pub keys.AgreementPublic) (out [32]byte, err error) {
	secret, err := curve25519.X25519(priv.Slice(), pub.Slice())
	if err != nil {
		return out, err
	}
	copy(out[:], secret)
	return out, nil
}

func clamp(k *keys.AgreementPrivate) {
	kb := k[:]
	kb[0] &= 248
	kb[31] &= 127
	kb[31] |= 64
}
