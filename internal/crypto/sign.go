package crypto

import (
	"crypto/ed25519"
	"io"

	"github.com/christophhagen/RendezvousClient/internal/keys"
)

// SignatureLength is the byte length of an Ed25519 signature.
const SignatureLength = ed25519.SignatureSize

// GenerateSigningKey returns a fresh signing key pair. The private half is
// the 32-byte seed; topic-key messages carry seeds, not expanded keys.
func GenerateSigningKey(rng io.Reader) (priv keys.SigningPrivate, pub keys.SigningPublic, err error) {
	if _, err = io.ReadFull(rng, priv[:]); err != nil {
		return priv, pub, err
	}
	return priv, PublicOf(priv), nil
}

// PublicOf derives the public key of a signing seed.
func PublicOf(priv keys.SigningPrivate) (pub keys.SigningPublic) {
	pk := ed25519.NewKeyFromSeed(priv.Slice()).Public().(ed25519.PublicKey)
	copy(pub[:], pk)
	return pub
}

// Sign signs msg with priv and returns the signature.
func Sign(priv keys.SigningPrivate, msg []byte) []byte {
	return ed25519.Sign(ed25519.NewKeyFromSeed(priv.Slice()), msg)
}

// Verify verifies sig over msg with pub.
func Verify(pub keys.SigningPublic, msg, sig []byte) bool {
	if len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub.Slice()), msg, sig)
}
