package topic

import (
	"bytes"

	"github.com/christophhagen/RendezvousClient/internal/keys"
	"github.com/christophhagen/RendezvousClient/internal/wire"
)

// Topic is the local state of one topic. Mutation is restricted to the
// owning device's receive pipeline and send path, which are serialized.
type Topic struct {
	ID           []byte
	CreationTime int64
	Timestamp    int64
	Members      []wire.Member

	// MessageKey is the shared symmetric AES-GCM key of the topic.
	MessageKey []byte

	// SigningPrivate and EncryptionPrivate are the private halves of the
	// topic key this user consumed to join the topic.
	SigningPrivate    keys.SigningPrivate
	EncryptionPrivate keys.AgreementPrivate

	// ChainIndex and VerifiedOutput are the verified chain position.
	// VerifiedOutput starts as the topic id.
	ChainIndex     uint32
	VerifiedOutput []byte

	// Unverified holds updates whose chain position is ahead of the
	// verified state, sorted descending by chain index so the next
	// expected update sits at the tail.
	Unverified []*Update
}

// MemberFor returns the member entry and index for a user key.
func (t *Topic) MemberFor(user keys.SigningPublic) (wire.Member, int, bool) {
	for i, m := range t.Members {
		if bytes.Equal(m.Key.UserKey, user.Slice()) {
			return m, i, true
		}
	}
	return wire.Member{}, 0, false
}

// Role returns the role of the given user, or false if not a member.
func (t *Topic) Role(user keys.SigningPublic) (wire.Role, bool) {
	m, _, ok := t.MemberFor(user)
	if !ok {
		return 0, false
	}
	return m.Role, true
}

// Store converts the topic into its persisted form.
func (t *Topic) Store() wire.TopicStore {
	unverified := make([]wire.TopicUpdate, 0, len(t.Unverified))
	for _, u := range t.Unverified {
		unverified = append(unverified, u.wireForm(t.ID))
	}
	return wire.TopicStore{
		ID:             t.ID,
		CreationTime:   t.CreationTime,
		Timestamp:      t.Timestamp,
		Members:        t.Members,
		MessageKey:     t.MessageKey,
		SigningKey:     t.SigningPrivate.Slice(),
		EncryptionKey:  t.EncryptionPrivate.Slice(),
		ChainIndex:     t.ChainIndex,
		VerifiedOutput: t.VerifiedOutput,
		Unverified:     unverified,
	}
}

// FromStore rebuilds a topic from its persisted form, re-resolving the
// pending updates against the restored member list.
func FromStore(s wire.TopicStore) (*Topic, error) {
	t := &Topic{
		ID:             s.ID,
		CreationTime:   s.CreationTime,
		Timestamp:      s.Timestamp,
		Members:        s.Members,
		MessageKey:     s.MessageKey,
		ChainIndex:     s.ChainIndex,
		VerifiedOutput: s.VerifiedOutput,
	}
	copy(t.SigningPrivate[:], s.SigningKey)
	copy(t.EncryptionPrivate[:], s.EncryptionKey)
	for _, u := range s.Unverified {
		restored, err := t.decryptUpdate(&u)
		if err != nil {
			return nil, err
		}
		t.Unverified = append(t.Unverified, restored)
	}
	sortUnverified(t.Unverified)
	return t, nil
}
