package topic_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/christophhagen/RendezvousClient/internal/crypto"
	"github.com/christophhagen/RendezvousClient/internal/topic"
	"github.com/christophhagen/RendezvousClient/internal/wire"
	"github.com/christophhagen/RendezvousClient/pkg/rverr"
)

func TestNewKeysBinding(t *testing.T) {
	userPriv, userPub, err := crypto.GenerateSigningKey(rand.Reader)
	require.NoError(t, err)

	tk, err := topic.NewKeys(rand.Reader, userPriv)
	require.NoError(t, err)
	require.Equal(t, userPub.Slice(), tk.Public.UserKey)

	sigPub, encPub, ok := tk.Public.Verify(userPub)
	require.True(t, ok)
	require.Equal(t, crypto.PublicOf(tk.SigningPrivate), sigPub)
	derived, err := crypto.PublicAgreementKey(tk.EncryptionPrivate)
	require.NoError(t, err)
	require.Equal(t, derived, encPub)
}

func TestWrapForAcceptKeys(t *testing.T) {
	userPriv, userPub, err := crypto.GenerateSigningKey(rand.Reader)
	require.NoError(t, err)
	tk, err := topic.NewKeys(rand.Reader, userPriv)
	require.NoError(t, err)

	prekeyPriv, prekeyPub, err := crypto.GenerateAgreementKey(rand.Reader)
	require.NoError(t, err)

	msg, err := tk.WrapFor(rand.Reader, prekeyPub)
	require.NoError(t, err)
	require.Equal(t, prekeyPub.Slice(), msg.DevicePrekey)

	got, err := topic.AcceptKeys(msg, prekeyPriv, userPub)
	require.NoError(t, err)
	require.Equal(t, tk.SigningPrivate, got.SigningPrivate)
	require.Equal(t, tk.EncryptionPrivate, got.EncryptionPrivate)
	require.Equal(t, tk.Public, got.Public)
}

func TestAcceptKeysRejectsForeignBundle(t *testing.T) {
	userPriv, _, err := crypto.GenerateSigningKey(rand.Reader)
	require.NoError(t, err)
	tk, err := topic.NewKeys(rand.Reader, userPriv)
	require.NoError(t, err)

	prekeyPriv, prekeyPub, err := crypto.GenerateAgreementKey(rand.Reader)
	require.NoError(t, err)
	msg, err := tk.WrapFor(rand.Reader, prekeyPub)
	require.NoError(t, err)

	// Bundle signed by a different user does not verify.
	_, otherUser, err := crypto.GenerateSigningKey(rand.Reader)
	require.NoError(t, err)
	_, err = topic.AcceptKeys(msg, prekeyPriv, otherUser)
	require.True(t, rverr.Is(err, rverr.InvalidSignature))
}

func TestAcceptKeysRejectsSwappedPayload(t *testing.T) {
	userPriv, userPub, err := crypto.GenerateSigningKey(rand.Reader)
	require.NoError(t, err)
	tk1, err := topic.NewKeys(rand.Reader, userPriv)
	require.NoError(t, err)
	tk2, err := topic.NewKeys(rand.Reader, userPriv)
	require.NoError(t, err)

	prekeyPriv, prekeyPub, err := crypto.GenerateAgreementKey(rand.Reader)
	require.NoError(t, err)
	msg, err := tk1.WrapFor(rand.Reader, prekeyPub)
	require.NoError(t, err)

	// The sealed private halves belong to a different bundle.
	msg.TopicKey = tk2.Public
	_, err = topic.AcceptKeys(msg, prekeyPriv, userPub)
	require.True(t, rverr.Is(err, rverr.InvalidSignature))
}

func TestAcceptKeysRejectsWrongPrekey(t *testing.T) {
	userPriv, userPub, err := crypto.GenerateSigningKey(rand.Reader)
	require.NoError(t, err)
	tk, err := topic.NewKeys(rand.Reader, userPriv)
	require.NoError(t, err)

	_, prekeyPub, err := crypto.GenerateAgreementKey(rand.Reader)
	require.NoError(t, err)
	msg, err := tk.WrapFor(rand.Reader, prekeyPub)
	require.NoError(t, err)

	otherPriv, _, err := crypto.GenerateAgreementKey(rand.Reader)
	require.NoError(t, err)
	_, err = topic.AcceptKeys(msg, otherPriv, userPub)
	require.Error(t, err)
}

func TestNewMemberSealsMessageKey(t *testing.T) {
	userPriv, _, err := crypto.GenerateSigningKey(rand.Reader)
	require.NoError(t, err)
	tk, err := topic.NewKeys(rand.Reader, userPriv)
	require.NoError(t, err)

	messageKey := make([]byte, crypto.SymmetricKeyLength)
	_, err = rand.Read(messageKey)
	require.NoError(t, err)

	m, err := topic.NewMember(rand.Reader, tk.Public, wire.RoleParticipant, messageKey)
	require.NoError(t, err)
	require.Equal(t, wire.RoleParticipant, m.Role)

	opened, err := crypto.DecryptFrom(tk.EncryptionPrivate, m.EncryptedMessageKey)
	require.NoError(t, err)
	require.Equal(t, messageKey, opened)
}

func TestNewMemberRejectsTamperedBundle(t *testing.T) {
	userPriv, _, err := crypto.GenerateSigningKey(rand.Reader)
	require.NoError(t, err)
	tk, err := topic.NewKeys(rand.Reader, userPriv)
	require.NoError(t, err)

	bad := tk.Public
	bad.Signature = append([]byte(nil), bad.Signature...)
	bad.Signature[0] ^= 1
	_, err = topic.NewMember(rand.Reader, bad, wire.RoleAdmin, make([]byte, 32))
	require.True(t, rverr.Is(err, rverr.InvalidSignature))
}

func TestParseTopicKeys(t *testing.T) {
	userPriv, userPub, err := crypto.GenerateSigningKey(rand.Reader)
	require.NoError(t, err)
	tk, err := topic.NewKeys(rand.Reader, userPriv)
	require.NoError(t, err)

	resp := &wire.TopicKeyResponse{Keys: []wire.UserTopicKey{
		{UserKey: userPub.Slice(), TopicKey: tk.Public},
	}}
	keysOut, err := topic.ParseTopicKeys(resp)
	require.NoError(t, err)
	require.Len(t, keysOut, 1)

	// A key served under a user it is not bound to is rejected.
	_, otherPub, err := crypto.GenerateSigningKey(rand.Reader)
	require.NoError(t, err)
	resp.Keys[0].UserKey = otherPub.Slice()
	_, err = topic.ParseTopicKeys(resp)
	require.True(t, rverr.Is(err, rverr.InvalidServerData))
}
