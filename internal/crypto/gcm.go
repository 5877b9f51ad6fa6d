package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"io"
)

const (
	// SymmetricKeyLength is the AES-256 key length.
	SymmetricKeyLength = 32

	// NonceLength is the AES-GCM nonce length. Message and file ids share
	// this length because a file's id doubles as its nonce.
	NonceLength = 12

	// TagLength is the AES-GCM authentication tag length.
	TagLength = 16
)

// ErrCryptoFailure covers tag mismatches and key-agreement failures.
// Such failures are fatal for the message; there is nothing to retry.
var ErrCryptoFailure = errors.New("cryptographic operation failed")

// SealedBox is an AES-GCM ciphertext split into its parts.
type SealedBox struct {
	Nonce      []byte
	Ciphertext []byte
	Tag        []byte
}

// Combined returns nonce ‖ ciphertext ‖ tag, the form carried on the wire.
func (b SealedBox) Combined() []byte {
	out := make([]byte, 0, len(b.Nonce)+len(b.Ciphertext)+len(b.Tag))
	out = append(out, b.Nonce...)
	out = append(out, b.Ciphertext...)
	out = append(out, b.Tag...)
	return out
}

// Seal encrypts plaintext under key with a random nonce.
func Seal(rng io.Reader, key, plaintext []byte) (SealedBox, error) {
	nonce := make([]byte, NonceLength)
	if _, err := io.ReadFull(rng, nonce); err != nil {
		return SealedBox{}, err
	}
	return SealWithNonce(key, nonce, plaintext)
}

// SealWithNonce encrypts plaintext under key with the given nonce.
// Nonces must never repeat under the same key; file ids are random
// per file, which keeps this safe for file encryption.
func SealWithNonce(key, nonce, plaintext []byte) (SealedBox, error) {
	aead, err := newGCM(key)
	if err != nil {
		return SealedBox{}, err
	}
	sealed := aead.Seal(nil, nonce, plaintext, nil)
	split := len(sealed) - TagLength
	return SealedBox{
		Nonce:      nonce,
		Ciphertext: sealed[:split],
		Tag:        sealed[split:],
	}, nil
}

// Open decrypts a SealedBox.
func Open(key []byte, box SealedBox) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	sealed := make([]byte, 0, len(box.Ciphertext)+len(box.Tag))
	sealed = append(sealed, box.Ciphertext...)
	sealed = append(sealed, box.Tag...)
	pt, err := aead.Open(nil, box.Nonce, sealed, nil)
	if err != nil {
		return nil, ErrCryptoFailure
	}
	return pt, nil
}

// OpenCombined decrypts the combined form nonce ‖ ciphertext ‖ tag.
func OpenCombined(key, combined []byte) ([]byte, error) {
	if len(combined) < NonceLength+TagLength {
		return nil, ErrCryptoFailure
	}
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, combined[:NonceLength], combined[NonceLength:], nil)
	if err != nil {
		return nil, ErrCryptoFailure
	}
	return pt, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
