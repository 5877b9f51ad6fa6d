package topic

import (
	"bytes"
	"sort"

	"github.com/christophhagen/RendezvousClient/internal/crypto"
	"github.com/christophhagen/RendezvousClient/internal/keys"
	"github.com/christophhagen/RendezvousClient/internal/wire"
	"github.com/christophhagen/RendezvousClient/pkg/rverr"
)

// Update is a decrypted, authenticated content update of a topic.
type Update struct {
	ChainIndex  uint32
	Output      []byte
	Metadata    []byte
	Files       []wire.File
	Sender      keys.SigningPublic
	SenderIndex uint32

	raw wire.Message
}

// Signature returns the sender's signature over the update.
func (u *Update) Signature() []byte { return u.raw.Signature }

// Wire returns the original signed message.
func (u *Update) Wire() wire.Message { return u.raw }

func (u *Update) wireForm(topicID []byte) wire.TopicUpdate {
	return wire.TopicUpdate{
		TopicID:    topicID,
		ChainIndex: u.ChainIndex,
		Output:     u.Output,
		Message:    u.raw,
	}
}

// ChainOutput computes the next chain output from the previous verified
// output and an update signature.
func ChainOutput(previous, signature []byte) []byte {
	buf := make([]byte, 0, len(previous)+len(signature))
	buf = append(buf, previous...)
	buf = append(buf, signature...)
	return crypto.SHA256(buf)
}

// DecryptUpdate authenticates and decrypts an incoming update against the
// topic state: the sender index is bounds-checked, the signature verified
// under the sender's topic signature key, and the metadata opened with the
// topic message key.
func (t *Topic) DecryptUpdate(w *wire.TopicUpdate) (*Update, error) {
	return t.decryptUpdate(w)
}

func (t *Topic) decryptUpdate(w *wire.TopicUpdate) (*Update, error) {
	index := int(w.Message.SenderIndex)
	if index >= len(t.Members) {
		return nil, rverr.Newf(rverr.InvalidServerData, "sender index %d out of range", index)
	}
	member := t.Members[index]
	senderSig, ok := keys.SigningPublicFromBytes(member.Key.SignatureKey)
	if !ok {
		return nil, rverr.New(rverr.InvalidServerData, "member has malformed signature key")
	}
	if !w.Message.VerifySignature(senderSig) {
		return nil, rverr.New(rverr.InvalidSignature, "update signature invalid")
	}
	metadata, err := crypto.OpenCombined(t.MessageKey, w.Message.Metadata)
	if err != nil {
		return nil, rverr.Wrap(rverr.Unknown, "metadata decrypt", err)
	}
	sender, ok := keys.SigningPublicFromBytes(member.Key.UserKey)
	if !ok {
		return nil, rverr.New(rverr.InvalidServerData, "member has malformed user key")
	}
	return &Update{
		ChainIndex:  w.ChainIndex,
		Output:      w.Output,
		Metadata:    metadata,
		Files:       w.Message.Files,
		Sender:      sender,
		SenderIndex: w.Message.SenderIndex,
		raw:         w.Message,
	}, nil
}

// OutgoingUpdate builds the local record of a sent message from the
// authoritative chain state returned on upload. The local topic state is
// not touched; the update is applied when it comes back through the
// receive path.
func OutgoingUpdate(msg wire.Message, state wire.ChainState, metadata []byte, sender keys.SigningPublic) *Update {
	return &Update{
		ChainIndex:  state.ChainIndex,
		Output:      state.Output,
		Metadata:    metadata,
		Files:       msg.Files,
		Sender:      sender,
		SenderIndex: msg.SenderIndex,
		raw:         msg,
	}
}

// Reconcile queues u and drains the pending queue as far as the chain
// allows. It returns the updates that became verified, in ascending chain
// order, and whether the drain hit a chain mismatch (invalidIndex names
// the offending position). The queue keeps updates whose index is still
// ahead of the verified state; stale duplicates are discarded.
func (t *Topic) Reconcile(u *Update) (verified []*Update, invalidIndex uint32, invalid bool) {
	t.Unverified = append(t.Unverified, u)
	sortUnverified(t.Unverified)

	for len(t.Unverified) > 0 {
		tail := t.Unverified[len(t.Unverified)-1]
		if tail.ChainIndex <= t.ChainIndex {
			// Already verified at this position; duplicate delivery.
			t.Unverified = t.Unverified[:len(t.Unverified)-1]
			continue
		}
		if tail.ChainIndex != t.ChainIndex+1 {
			break
		}
		next := ChainOutput(t.VerifiedOutput, tail.Signature())
		if !bytes.Equal(next, tail.Output) {
			t.Unverified = t.Unverified[:len(t.Unverified)-1]
			return verified, tail.ChainIndex, true
		}
		t.ChainIndex = tail.ChainIndex
		t.VerifiedOutput = next
		t.Unverified = t.Unverified[:len(t.Unverified)-1]
		verified = append(verified, tail)
	}
	return verified, 0, false
}

// sortUnverified orders pending updates descending by chain index so the
// next expected update sits at the tail.
func sortUnverified(updates []*Update) {
	sort.SliceStable(updates, func(i, j int) bool {
		return updates[i].ChainIndex > updates[j].ChainIndex
	})
}
