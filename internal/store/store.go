// Package store persists the serialized device state on disk, encrypted
// under a passphrase.
package store

import (
	"crypto/rand"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"github.com/christophhagen/RendezvousClient/internal/crypto"
)

const (
	deviceFile = "device.enc"
	saltLength = 16
)

// scrypt parameters (fixed here; tune as needed)
func scryptParams() (N, r, p int) { return 1 << 15, 8, 1 }

// FileStore stores the encrypted device blob in a directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// New creates a store rooted at dir.
func New(dir string) *FileStore { return &FileStore{dir: dir} }

// Save encrypts blob under the passphrase and writes it.
func (s *FileStore) Save(passphrase string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sealed, err := encrypt(passphrase, blob)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, deviceFile), sealed, 0o600)
}

// Load reads and decrypts the device blob. The second return is false
// when no state has been saved yet.
func (s *FileStore) Load(passphrase string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sealed, err := os.ReadFile(filepath.Join(s.dir, deviceFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	blob, err := decrypt(passphrase, sealed)
	if err != nil {
		return nil, false, err
	}
	return blob, true, nil
}

// encrypt derives a key from the passphrase with scrypt and seals the
// blob with ChaCha20-Poly1305. Output layout: salt ‖ nonce ‖ ciphertext.
func encrypt(passphrase string, plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, saltLength+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, salt), nil
}

func decrypt(passphrase string, sealed []byte) ([]byte, error) {
	if len(sealed) < saltLength+chacha20poly1305.NonceSize {
		return nil, errors.New("device file truncated")
	}
	salt := sealed[:saltLength]
	nonce := sealed[saltLength : saltLength+chacha20poly1305.NonceSize]
	ct := sealed[saltLength+chacha20poly1305.NonceSize:]

	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return aead.Open(nil, nonce, ct, salt)
}

func deriveKey(passphrase string, salt []byte) ([]byte, error) {
	N, r, p := scryptParams()
	return scrypt.Key([]byte(passphrase), salt, N, r, p, chacha20poly1305.KeySize)
}
