package device

import (
	"bytes"
	"context"

	"github.com/christophhagen/RendezvousClient/internal/crypto"
	"github.com/christophhagen/RendezvousClient/internal/topic"
	"github.com/christophhagen/RendezvousClient/internal/wire"
	"github.com/christophhagen/RendezvousClient/pkg/rverr"
)

// FileData is a plaintext file queued for upload. ID must be
// wire.MessageIDLength random bytes; it doubles as the AES-GCM nonce.
type FileData struct {
	ID   []byte
	Data []byte
}

// NewFileID returns a fresh random file id.
func (d *Device) NewFileID() ([]byte, error) {
	return crypto.Random(d.rng, wire.MessageIDLength)
}

// Upload encrypts and posts an update to a topic. The caller must be a
// member and not an observer. The returned update carries the
// authoritative chain position; the local topic state is not mutated
// here — the update is applied when it returns through the receive path,
// keeping a single reconciliation point.
func (d *Device) Upload(ctx context.Context, files []FileData, metadata []byte, t *topic.Topic) (*topic.Update, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	member, index, ok := t.MemberFor(d.userPub)
	if !ok {
		return nil, rverr.New(rverr.InvalidRequest, "not a member of this topic")
	}
	if member.Role == wire.RoleObserver {
		return nil, rverr.New(rverr.NoPermissionToWrite, "observers cannot post")
	}
	if len(metadata) > wire.MaxMetadataLength {
		return nil, rverr.Newf(rverr.InvalidRequest, "metadata exceeds %d bytes", wire.MaxMetadataLength)
	}

	descriptors := make([]wire.File, 0, len(files))
	uploads := make([]wire.FileUpload, 0, len(files))
	for _, f := range files {
		if len(f.ID) != wire.MessageIDLength {
			return nil, rverr.New(rverr.InvalidRequest, "file id has wrong length")
		}
		box, err := crypto.SealWithNonce(t.MessageKey, f.ID, f.Data)
		if err != nil {
			return nil, rverr.Wrap(rverr.Unknown, "encrypt file", err)
		}
		descriptors = append(descriptors, wire.File{
			ID:   f.ID,
			Tag:  box.Tag,
			Hash: crypto.SHA256(box.Ciphertext),
		})
		uploads = append(uploads, wire.FileUpload{ID: f.ID, Ciphertext: box.Ciphertext})
	}

	sealedMeta, err := crypto.Seal(d.rng, t.MessageKey, metadata)
	if err != nil {
		return nil, rverr.Wrap(rverr.Unknown, "encrypt metadata", err)
	}

	msg := wire.Message{
		SenderIndex: uint32(index),
		Metadata:    sealedMeta.Combined(),
		Files:       descriptors,
	}
	if err := msg.SignWith(t.SigningPrivate); err != nil {
		return nil, rverr.Wrap(rverr.SerializationFailed, "sign update", err)
	}

	upload := &wire.MessageUpload{TopicID: t.ID, Message: msg, Files: uploads}
	state, err := d.courier.UploadMessage(ctx, d.auth(), upload)
	if err != nil {
		return nil, err
	}
	d.log.Debug("posted update", "topic", crypto.Fingerprint(t.ID), "chain", state.ChainIndex)
	return topic.OutgoingUpdate(msg, *state, metadata, d.userPub), nil
}

// GetFile downloads and decrypts a file attached to an update. The
// ciphertext hash is checked before the AEAD opens with the file id as
// nonce and the descriptor tag.
func (d *Device) GetFile(ctx context.Context, file wire.File, t *topic.Topic) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Descriptors come out of a sender-signed update, so a malicious
	// member controls their contents. The id doubles as the GCM nonce
	// and must be length-checked before it reaches the AEAD.
	if len(file.ID) != wire.MessageIDLength || len(file.Tag) != crypto.TagLength {
		return nil, rverr.New(rverr.InvalidFile, "file descriptor malformed")
	}

	ciphertext, err := d.courier.DownloadFile(ctx, d.auth(), t.ID, file.ID)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(crypto.SHA256(ciphertext), file.Hash) {
		return nil, rverr.New(rverr.InvalidFile, "file hash mismatch")
	}
	plaintext, err := crypto.Open(t.MessageKey, crypto.SealedBox{
		Nonce:      file.ID,
		Ciphertext: ciphertext,
		Tag:        file.Tag,
	})
	if err != nil {
		return nil, rverr.Wrap(rverr.InvalidFile, "file decrypt", err)
	}
	return plaintext, nil
}
