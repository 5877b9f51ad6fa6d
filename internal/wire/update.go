package wire

import (
	"github.com/christophhagen/RendezvousClient/internal/crypto"
	"github.com/christophhagen/RendezvousClient/internal/keys"
)

// File describes an encrypted file attached to a message. ID is the AES-GCM
// nonce, Tag the authentication tag, Hash the SHA-256 of the ciphertext
// stored server-side under (topic id, file id).
type File struct {
	ID   []byte `cbor:"1,keyasint"`
	Tag  []byte `cbor:"2,keyasint"`
	Hash []byte `cbor:"3,keyasint"`
}

// Message is the signed unit posted to a topic: the sender's member index,
// the encrypted metadata (combined GCM form, plaintext at most
// MaxMetadataLength bytes) and the file descriptors. Chain index and output
// are assigned by the server and are not covered by the signature.
type Message struct {
	SenderIndex uint32 `cbor:"1,keyasint"`
	Metadata    []byte `cbor:"2,keyasint"`
	Files       []File `cbor:"3,keyasint,omitempty"`
	Signature   []byte `cbor:"4,keyasint"`
}

type messageUnsigned struct {
	SenderIndex uint32 `cbor:"1,keyasint"`
	Metadata    []byte `cbor:"2,keyasint"`
	Files       []File `cbor:"3,keyasint,omitempty"`
}

func (m *Message) signedBytes() ([]byte, error) {
	return Marshal(messageUnsigned{
		SenderIndex: m.SenderIndex,
		Metadata:    m.Metadata,
		Files:       m.Files,
	})
}

// SignWith signs the message with the sender's topic signing key.
func (m *Message) SignWith(priv keys.SigningPrivate) error {
	b, err := m.signedBytes()
	if err != nil {
		return err
	}
	m.Signature = crypto.Sign(priv, b)
	return nil
}

// VerifySignature checks the message signature under the sender's topic
// signature key.
func (m *Message) VerifySignature(sender keys.SigningPublic) bool {
	b, err := m.signedBytes()
	if err != nil {
		return false
	}
	return crypto.Verify(sender, b, m.Signature)
}

// FileUpload carries a file's ciphertext to the server.
type FileUpload struct {
	ID         []byte `cbor:"1,keyasint"`
	Ciphertext []byte `cbor:"2,keyasint"`
}

// MessageUpload posts a signed message and its file ciphertexts.
type MessageUpload struct {
	TopicID []byte       `cbor:"1,keyasint"`
	Message Message      `cbor:"2,keyasint"`
	Files   []FileUpload `cbor:"3,keyasint,omitempty"`
}

// ChainState is the authoritative chain position returned by the server on
// upload: Output = SHA-256(previous verified output ‖ message signature).
type ChainState struct {
	ChainIndex uint32 `cbor:"1,keyasint"`
	Output     []byte `cbor:"2,keyasint"`
}

// TopicUpdate is a message as delivered to receiving devices, extended with
// the server-assigned chain position.
type TopicUpdate struct {
	TopicID    []byte  `cbor:"1,keyasint"`
	ChainIndex uint32  `cbor:"2,keyasint"`
	Output     []byte  `cbor:"3,keyasint"`
	Message    Message `cbor:"4,keyasint"`
}
