package wire_test

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/christophhagen/RendezvousClient/internal/crypto"
	"github.com/christophhagen/RendezvousClient/internal/keys"
	"github.com/christophhagen/RendezvousClient/internal/wire"
)

func signingPair(t *testing.T) (keys.SigningPrivate, keys.SigningPublic) {
	t.Helper()
	priv, pub, err := crypto.GenerateSigningKey(rand.Reader)
	require.NoError(t, err)
	return priv, pub
}

func TestMarshalDeterministic(t *testing.T) {
	info := wire.UserInfo{
		PublicKey:    bytes.Repeat([]byte{1}, keys.Length),
		Name:         "alice",
		CreationTime: 100,
		Timestamp:    200,
		Devices: []wire.DeviceInfo{
			{DeviceKey: bytes.Repeat([]byte{2}, keys.Length), CreationTime: 100, IsActive: true},
		},
	}
	a, err := wire.Marshal(&info)
	require.NoError(t, err)
	b, err := wire.Marshal(&info)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestUserInfoSignVerify(t *testing.T) {
	priv, pub := signingPair(t)
	info := wire.UserInfo{
		PublicKey:    pub.Slice(),
		Name:         "alice",
		CreationTime: 100,
		Timestamp:    100,
		Devices: []wire.DeviceInfo{
			{DeviceKey: bytes.Repeat([]byte{2}, keys.Length), CreationTime: 100, IsActive: true},
		},
	}
	require.NoError(t, info.SignWith(priv))
	require.True(t, info.VerifySignature(pub))

	// The signature survives a marshal round trip.
	blob, err := wire.Marshal(&info)
	require.NoError(t, err)
	var restored wire.UserInfo
	require.NoError(t, wire.Unmarshal(blob, &restored))
	require.True(t, restored.VerifySignature(pub))

	// Any mutation of a signed field breaks verification.
	restored.Timestamp++
	require.False(t, restored.VerifySignature(pub))
}

func TestDevicesSorted(t *testing.T) {
	info := wire.UserInfo{Devices: []wire.DeviceInfo{
		{CreationTime: 1}, {CreationTime: 2}, {CreationTime: 2},
	}}
	require.True(t, info.DevicesSorted())
	info.Devices[2].CreationTime = 0
	require.False(t, info.DevicesSorted())
}

func TestPrekeyVerify(t *testing.T) {
	devPriv, devPub := signingPair(t)
	_, agreePub, err := crypto.GenerateAgreementKey(rand.Reader)
	require.NoError(t, err)

	pk := wire.NewPrekey(devPriv, agreePub)
	pub, ok := pk.Verify(devPub)
	require.True(t, ok)
	require.Equal(t, agreePub, pub)

	_, other := signingPair(t)
	_, ok = pk.Verify(other)
	require.False(t, ok)

	pk.PublicKey[0] ^= 1
	_, ok = pk.Verify(devPub)
	require.False(t, ok)
}

func TestTopicRecordSignVerify(t *testing.T) {
	userPriv, userPub := signingPair(t)
	topicPriv, topicPub := signingPair(t)
	_, encPub, err := crypto.GenerateAgreementKey(rand.Reader)
	require.NoError(t, err)

	key := wire.TopicKeyPublic{
		UserKey:       userPub.Slice(),
		SignatureKey:  topicPub.Slice(),
		EncryptionKey: encPub.Slice(),
	}
	key.Signature = crypto.Sign(userPriv, key.SignedPayload())
	_, _, ok := key.Verify(userPub)
	require.True(t, ok)

	record := wire.Topic{
		ID:           bytes.Repeat([]byte{7}, wire.TopicIDLength),
		CreationTime: 100,
		Timestamp:    100,
		Members: []wire.Member{
			{Key: key, Role: wire.RoleAdmin, EncryptedMessageKey: []byte{1, 2, 3}},
		},
	}
	require.NoError(t, record.SignWith(topicPriv))
	require.True(t, record.VerifySignature())

	record.Timestamp++
	require.False(t, record.VerifySignature())
	record.Timestamp--
	record.Members = nil
	require.False(t, record.VerifySignature())
}

func TestMessageSignVerify(t *testing.T) {
	priv, pub := signingPair(t)
	msg := wire.Message{
		SenderIndex: 1,
		Metadata:    []byte("sealed"),
		Files: []wire.File{
			{ID: bytes.Repeat([]byte{8}, 12), Tag: bytes.Repeat([]byte{9}, 16), Hash: bytes.Repeat([]byte{10}, 32)},
		},
	}
	require.NoError(t, msg.SignWith(priv))
	require.True(t, msg.VerifySignature(pub))

	msg.SenderIndex = 2
	require.False(t, msg.VerifySignature(pub))
}

func TestRoleValid(t *testing.T) {
	require.True(t, wire.RoleAdmin.Valid())
	require.True(t, wire.RoleParticipant.Valid())
	require.True(t, wire.RoleObserver.Valid())
	require.False(t, wire.Role(0).Valid())
	require.False(t, wire.Role(4).Valid())
	require.Equal(t, "observer", wire.RoleObserver.String())
}
