package crypto

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/christophhagen/RendezvousClient/internal/keys"
)

// hkdfSalt is the fixed HKDF salt of the protocol.
var hkdfSalt = []byte("RendezvousClient")

// ErrInvalidKeySize is returned when a decrypt input is too short to carry
// the ephemeral public key.
var ErrInvalidKeySize = errors.New("invalid key size")

// EncryptTo encrypts plaintext to a recipient public key.
//
// A fresh ephemeral Curve25519 pair is generated, the X25519 shared secret
// is stretched with HKDF-SHA256 (salt "RendezvousClient",
// info = ephemeral pub ‖ recipient pub) into a 32-byte session key, and the
// plaintext is sealed with AES-GCM. The output is
// ephemeral pub ‖ nonce ‖ ciphertext ‖ tag.
func EncryptTo(rng io.Reader, recipient keys.AgreementPublic, plaintext []byte) ([]byte, error) {
	ephPriv, ephPub, err := GenerateAgreementKey(rng)
	if err != nil {
		return nil, err
	}
	defer Wipe(ephPriv[:])

	key, err := sessionKey(ephPriv, recipient, ephPub, recipient)
	if err != nil {
		return nil, err
	}
	defer Wipe(key)

	box, err := Seal(rng, key, plaintext)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, keys.Length+NonceLength+len(plaintext)+TagLength)
	out = append(out, ephPub[:]...)
	return append(out, box.Combined()...), nil
}

// DecryptFrom reverses EncryptTo. The first 32 bytes of blob are the
// ephemeral public key, the remainder is the combined GCM form.
func DecryptFrom(priv keys.AgreementPrivate, blob []byte) ([]byte, error) {
	if len(blob) < keys.Length {
		return nil, ErrInvalidKeySize
	}
	ephPub, _ := keys.AgreementPublicFromBytes(blob[:keys.Length])
	recipient, err := PublicAgreementKey(priv)
	if err != nil {
		return nil, ErrCryptoFailure
	}

	key, err := sessionKey(priv, ephPub, ephPub, recipient)
	if err != nil {
		return nil, err
	}
	defer Wipe(key)

	return OpenCombined(key, blob[keys.Length:])
}

// sessionKey derives the shared AES key. The HKDF info binds both parties:
// ephemeral public key first, recipient public key second, on both sides.
func sessionKey(priv keys.AgreementPrivate, peer keys.AgreementPublic, ephPub, recipient keys.AgreementPublic) ([]byte, error) {
	secret, err := DH(priv, peer)
	if err != nil {
		return nil, ErrCryptoFailure
	}
	defer Wipe(secret[:])

	info := make([]byte, 0, 2*keys.Length)
	info = append(info, ephPub[:]...)
	info = append(info, recipient[:]...)

	key := make([]byte, SymmetricKeyLength)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret[:], hkdfSalt, info), key); err != nil {
		return nil, ErrCryptoFailure
	}
	return key, nil
}
