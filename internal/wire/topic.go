package wire

import (
	"bytes"

	"github.com/christophhagen/RendezvousClient/internal/crypto"
	"github.com/christophhagen/RendezvousClient/internal/keys"
)

// Role is a member's permission level inside a topic.
type Role uint8

const (
	// RoleAdmin can post and change membership.
	RoleAdmin Role = 1
	// RoleParticipant can post.
	RoleParticipant Role = 2
	// RoleObserver can only read.
	RoleObserver Role = 3
)

// Valid reports whether the role is one of the defined levels.
func (r Role) Valid() bool { return r >= RoleAdmin && r <= RoleObserver }

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleParticipant:
		return "participant"
	case RoleObserver:
		return "observer"
	default:
		return "invalid"
	}
}

// Member is one entry of a topic's member list. Key carries the member's
// topic key bundle, EncryptedMessageKey the topic message key sealed to the
// member's topic encryption key.
type Member struct {
	Key                 TopicKeyPublic `cbor:"1,keyasint"`
	Role                Role           `cbor:"2,keyasint"`
	EncryptedMessageKey []byte         `cbor:"3,keyasint"`
}

// Topic is the signed record creating or updating a topic. The creator is
// always member 0 with role admin; the record is signed with the creator's
// topic signing key.
type Topic struct {
	ID           []byte   `cbor:"1,keyasint"`
	CreationTime int64    `cbor:"2,keyasint"`
	Timestamp    int64    `cbor:"3,keyasint"`
	Members      []Member `cbor:"4,keyasint"`
	Signature    []byte   `cbor:"5,keyasint"`
}

type topicUnsigned struct {
	ID           []byte   `cbor:"1,keyasint"`
	CreationTime int64    `cbor:"2,keyasint"`
	Timestamp    int64    `cbor:"3,keyasint"`
	Members      []Member `cbor:"4,keyasint"`
}

func (t *Topic) signedBytes() ([]byte, error) {
	return Marshal(topicUnsigned{
		ID:           t.ID,
		CreationTime: t.CreationTime,
		Timestamp:    t.Timestamp,
		Members:      t.Members,
	})
}

// SignWith signs the record with the creator's topic signing key.
func (t *Topic) SignWith(priv keys.SigningPrivate) error {
	b, err := t.signedBytes()
	if err != nil {
		return err
	}
	t.Signature = crypto.Sign(priv, b)
	return nil
}

// VerifySignature checks the record signature under the creator's topic
// signature key (member 0).
func (t *Topic) VerifySignature() bool {
	if len(t.Members) == 0 {
		return false
	}
	creator, ok := keys.SigningPublicFromBytes(t.Members[0].Key.SignatureKey)
	if !ok {
		return false
	}
	b, err := t.signedBytes()
	if err != nil {
		return false
	}
	return crypto.Verify(creator, b, t.Signature)
}

// MemberFor returns the member entry belonging to the given user.
func (t *Topic) MemberFor(user keys.SigningPublic) (Member, bool) {
	for _, m := range t.Members {
		if bytes.Equal(m.Key.UserKey, user.Slice()) {
			return m, true
		}
	}
	return Member{}, false
}
