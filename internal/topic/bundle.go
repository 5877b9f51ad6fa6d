package topic

import (
	"bytes"
	"io"

	"github.com/christophhagen/RendezvousClient/internal/crypto"
	"github.com/christophhagen/RendezvousClient/internal/keys"
	"github.com/christophhagen/RendezvousClient/internal/wire"
	"github.com/christophhagen/RendezvousClient/pkg/rverr"
)

// NewMember verifies a user's topic key bundle and seals the topic message
// key to its encryption key, producing the member record for a topic.
func NewMember(rng io.Reader, key wire.TopicKeyPublic, role wire.Role, messageKey []byte) (wire.Member, error) {
	user, ok := keys.SigningPublicFromBytes(key.UserKey)
	if !ok {
		return wire.Member{}, rverr.New(rverr.InvalidServerData, "topic key has malformed user key")
	}
	_, enc, ok := key.Verify(user)
	if !ok {
		return wire.Member{}, rverr.New(rverr.InvalidSignature, "topic key bundle signature invalid")
	}
	sealed, err := crypto.EncryptTo(rng, enc, messageKey)
	if err != nil {
		return wire.Member{}, rverr.Wrap(rverr.Unknown, "seal message key", err)
	}
	return wire.Member{
		Key:                 key,
		Role:                role,
		EncryptedMessageKey: sealed,
	}, nil
}

// ParseTopicKeys validates a bulk topic key response: every entry's bundle
// must verify under the user it is served for.
func ParseTopicKeys(response *wire.TopicKeyResponse) ([]wire.UserTopicKey, error) {
	out := make([]wire.UserTopicKey, 0, len(response.Keys))
	for _, entry := range response.Keys {
		user, ok := keys.SigningPublicFromBytes(entry.UserKey)
		if !ok {
			return nil, rverr.New(rverr.InvalidServerData, "topic key response has malformed user key")
		}
		if !bytes.Equal(entry.TopicKey.UserKey, entry.UserKey) {
			return nil, rverr.New(rverr.InvalidServerData, "topic key bound to wrong user")
		}
		if _, _, ok := entry.TopicKey.Verify(user); !ok {
			return nil, rverr.New(rverr.InvalidSignature, "topic key bundle signature invalid")
		}
		out = append(out, entry)
	}
	return out, nil
}
