package device

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/christophhagen/RendezvousClient/internal/crypto"
	"github.com/christophhagen/RendezvousClient/internal/keys"
	"github.com/christophhagen/RendezvousClient/internal/topic"
	"github.com/christophhagen/RendezvousClient/internal/wire"
	"github.com/christophhagen/RendezvousClient/pkg/rverr"
)

// CreateTopic creates a topic with the given members and roles. A topic
// key is downloaded for every requested user; users without an available
// key are silently dropped. One of the caller's own topic keys is
// consumed. The creator is always member 0 with role admin.
func (d *Device) CreateTopic(ctx context.Context, members map[keys.SigningPublic]wire.Role) (*topic.Topic, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for user, role := range members {
		if !role.Valid() {
			return nil, rverr.Newf(rverr.InvalidRequest, "invalid role for %s", crypto.Fingerprint(user.Slice()))
		}
	}
	if len(d.topicKeys) == 0 {
		return nil, rverr.New(rverr.InvalidRequest, "no unused topic key available")
	}

	// Fetch and verify one topic key per member, dropping absent users.
	request := &wire.TopicKeyRequest{}
	order := make([]keys.SigningPublic, 0, len(members))
	for user := range members {
		order = append(order, user)
	}
	sort.Slice(order, func(i, j int) bool {
		return bytes.Compare(order[i].Slice(), order[j].Slice()) < 0
	})
	for _, user := range order {
		request.Users = append(request.Users, user.Slice())
	}
	response, err := d.courier.DownloadTopicKeys(ctx, d.auth(), request)
	if err != nil {
		return nil, err
	}
	served, err := topic.ParseTopicKeys(response)
	if err != nil {
		return nil, err
	}
	byUser := make(map[keys.SigningPublic]wire.TopicKeyPublic, len(served))
	for _, entry := range served {
		user, _ := keys.SigningPublicFromBytes(entry.UserKey)
		byUser[user] = entry.TopicKey
	}

	// Consume one of our own topic keys.
	own := d.topicKeys[len(d.topicKeys)-1]

	messageKey, err := crypto.Random(d.rng, wire.MessageKeyLength)
	if err != nil {
		return nil, err
	}
	topicID, err := crypto.Random(d.rng, wire.TopicIDLength)
	if err != nil {
		return nil, err
	}

	creator, err := topic.NewMember(d.rng, own.Public, wire.RoleAdmin, messageKey)
	if err != nil {
		return nil, err
	}
	record := &wire.Topic{
		ID:           topicID,
		CreationTime: time.Now().Unix(),
		Timestamp:    time.Now().Unix(),
		Members:      []wire.Member{creator},
	}
	for _, user := range order {
		key, ok := byUser[user]
		if !ok {
			continue
		}
		member, err := topic.NewMember(d.rng, key, members[user], messageKey)
		if err != nil {
			return nil, err
		}
		record.Members = append(record.Members, member)
	}
	if err := record.SignWith(own.SigningPrivate); err != nil {
		return nil, rverr.Wrap(rverr.SerializationFailed, "sign topic", err)
	}

	if err := d.courier.CreateTopic(ctx, d.auth(), record); err != nil {
		return nil, err
	}

	d.topicKeys = d.topicKeys[:len(d.topicKeys)-1]
	t := &topic.Topic{
		ID:                topicID,
		CreationTime:      record.CreationTime,
		Timestamp:         record.Timestamp,
		Members:           record.Members,
		MessageKey:        messageKey,
		SigningPrivate:    own.SigningPrivate,
		EncryptionPrivate: own.EncryptionPrivate,
		ChainIndex:        0,
		VerifiedOutput:    topicID,
	}
	d.topics[string(topicID)] = t
	d.log.Info("created topic", "id", crypto.Fingerprint(topicID), "members", len(t.Members))
	return t, nil
}

// handleTopicKeyMessage ingests one topic key fan-out message: the
// matching prekey is consumed and the accepted key joins the pool.
// Callers hold the lock.
func (d *Device) handleTopicKeyMessage(msg wire.TopicKeyMessage) error {
	pub, ok := keys.AgreementPublicFromBytes(msg.DevicePrekey)
	if !ok {
		return rverr.New(rverr.InvalidServerData, "topic key message has malformed prekey")
	}
	priv, exists := d.prekeys[pub]
	if !exists {
		return rverr.New(rverr.Unknown, "no private prekey for topic key message")
	}
	accepted, err := topic.AcceptKeys(msg, priv, d.userPub)
	if err != nil {
		return err
	}
	delete(d.prekeys, pub)
	d.topicKeys = append(d.topicKeys, accepted)
	return nil
}

// handleTopic ingests a new or updated topic record. Callers hold the lock.
func (d *Device) handleTopic(record *wire.Topic) error {
	if len(record.ID) != wire.TopicIDLength {
		return rverr.New(rverr.InvalidServerData, "topic id has wrong length")
	}
	existing, known := d.topics[string(record.ID)]
	if !known {
		return d.addTopic(record)
	}
	if record.Timestamp <= existing.Timestamp {
		return nil
	}
	return d.updateTopic(existing, record)
}

// addTopic admits this user into a new topic, consuming the matching
// topic key from the pool.
func (d *Device) addTopic(record *wire.Topic) error {
	if !d.verifyTopicRecord(record) {
		return rverr.New(rverr.InvalidSignature, "topic record signature invalid")
	}
	member, ok := record.MemberFor(d.userPub)
	if !ok {
		return rverr.New(rverr.Unknown, "topic does not list this user")
	}

	// Locate the pool entry the creator consumed for us.
	index := -1
	for i, tk := range d.topicKeys {
		if bytes.Equal(tk.Public.SignatureKey, member.Key.SignatureKey) {
			index = i
			break
		}
	}
	if index < 0 {
		return rverr.New(rverr.Unknown, "no topic key for topic admission")
	}
	own := d.topicKeys[index]

	messageKey, err := crypto.DecryptFrom(own.EncryptionPrivate, member.EncryptedMessageKey)
	if err != nil {
		return rverr.Wrap(rverr.Unknown, "message key decrypt", err)
	}
	if len(messageKey) != wire.MessageKeyLength {
		return rverr.New(rverr.InvalidServerData, "message key has wrong length")
	}

	d.topicKeys = append(d.topicKeys[:index], d.topicKeys[index+1:]...)
	t := &topic.Topic{
		ID:                record.ID,
		CreationTime:      record.CreationTime,
		Timestamp:         record.Timestamp,
		Members:           record.Members,
		MessageKey:        messageKey,
		SigningPrivate:    own.SigningPrivate,
		EncryptionPrivate: own.EncryptionPrivate,
		ChainIndex:        0,
		VerifiedOutput:    record.ID,
	}
	d.topics[string(record.ID)] = t
	d.emit(Event{Kind: TopicAdded, Topic: t})
	return nil
}

// updateTopic applies a membership or role change. The message key is not
// re-supplied to existing members and is not rotated.
func (d *Device) updateTopic(t *topic.Topic, record *wire.Topic) error {
	if !d.verifyTopicRecord(record) {
		return rverr.New(rverr.InvalidSignature, "topic update signature invalid")
	}
	if !bytes.Equal(record.ID, t.ID) || record.CreationTime != t.CreationTime {
		return rverr.New(rverr.InvalidServerData, "topic update changes immutable fields")
	}
	if _, ok := record.MemberFor(d.userPub); !ok {
		return rverr.New(rverr.InvalidServerData, "topic update drops this user")
	}
	t.Members = record.Members
	t.Timestamp = record.Timestamp
	d.emit(Event{Kind: TopicUpdated, Topic: t})
	return nil
}

// verifyTopicRecord checks the record signature and the per-member key
// bindings.
func (d *Device) verifyTopicRecord(record *wire.Topic) bool {
	if !record.VerifySignature() {
		return false
	}
	for _, m := range record.Members {
		user, ok := keys.SigningPublicFromBytes(m.Key.UserKey)
		if !ok {
			return false
		}
		if _, _, ok := m.Key.Verify(user); !ok {
			return false
		}
	}
	if len(record.Members) == 0 || record.Members[0].Role != wire.RoleAdmin {
		return false
	}
	return true
}
