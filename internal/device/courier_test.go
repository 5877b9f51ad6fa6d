package device_test

import (
	"context"
	"crypto/rand"
	"sync"

	"github.com/christophhagen/RendezvousClient/internal/device"
	"github.com/christophhagen/RendezvousClient/internal/server"
	"github.com/christophhagen/RendezvousClient/internal/topic"
	"github.com/christophhagen/RendezvousClient/internal/wire"
	"github.com/christophhagen/RendezvousClient/pkg/rverr"
)

// fakeCourier is an in-memory stand-in for the server: it stores exactly
// what a real courier stores (opaque blobs, key pools, chain state) and
// performs no verification beyond auth tokens.
type fakeCourier struct {
	mu     sync.Mutex
	users  map[string]*fakeUser
	topics map[string]*fakeTopic
	files  map[string][]byte
}

type fakeUser struct {
	info      *wire.UserInfo
	token     []byte
	devices   map[string]*fakeDevice
	topicKeys []wire.TopicKeyPublic
}

type fakeDevice struct {
	prekeys []wire.Prekey
	inbox   wire.DeviceDownload
}

type fakeTopic struct {
	record     wire.Topic
	chainIndex uint32
	output     []byte
}

var _ device.Courier = (*fakeCourier)(nil)

func newFakeCourier() *fakeCourier {
	return &fakeCourier{
		users:  make(map[string]*fakeUser),
		topics: make(map[string]*fakeTopic),
		files:  make(map[string][]byte),
	}
}

func (f *fakeCourier) authedUser(auth server.Auth) (*fakeUser, error) {
	u, ok := f.users[string(auth.User.Slice())]
	if !ok {
		return nil, rverr.New(rverr.AuthenticationFailed, "unknown user")
	}
	if string(u.token) != string(auth.Token) {
		return nil, rverr.New(rverr.AuthenticationFailed, "bad token")
	}
	return u, nil
}

func (f *fakeCourier) authedDevice(auth server.Auth) (*fakeUser, *fakeDevice, error) {
	u, err := f.authedUser(auth)
	if err != nil {
		return nil, nil, err
	}
	d, ok := u.devices[string(auth.Device.Slice())]
	if !ok {
		return nil, nil, rverr.New(rverr.AuthenticationFailed, "unknown device")
	}
	return u, d, nil
}

func (f *fakeCourier) Register(_ context.Context, bundle *wire.RegistrationBundle) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := string(bundle.Info.PublicKey)
	if _, exists := f.users[key]; exists {
		return nil, rverr.New(rverr.ResourceAlreadyExists, "user exists")
	}
	token := make([]byte, wire.AuthTokenLength)
	if _, err := rand.Read(token); err != nil {
		return nil, err
	}
	info := bundle.Info
	u := &fakeUser{
		info:      &info,
		token:     token,
		devices:   make(map[string]*fakeDevice),
		topicKeys: append([]wire.TopicKeyPublic(nil), bundle.TopicKeys...),
	}
	u.devices[string(info.Devices[0].DeviceKey)] = &fakeDevice{
		prekeys: append([]wire.Prekey(nil), bundle.Prekeys...),
	}
	f.users[key] = u
	return token, nil
}

func (f *fakeCourier) UploadPrekeys(_ context.Context, auth server.Auth, req *wire.PrekeyUploadRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, d, err := f.authedDevice(auth)
	if err != nil {
		return err
	}
	d.prekeys = append(d.prekeys, req.Prekeys...)
	return nil
}

func (f *fakeCourier) DownloadPrekeys(_ context.Context, auth server.Auth, count int, _ string) (*wire.DevicePrekeyBundle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, _, err := f.authedDevice(auth)
	if err != nil {
		return nil, err
	}
	bundle := &wire.DevicePrekeyBundle{KeyCount: uint32(count)}
	for key, dev := range u.devices {
		if key == string(auth.Device.Slice()) {
			continue
		}
		if len(dev.prekeys) < count {
			return nil, rverr.New(rverr.InvalidRequest, "not enough prekeys")
		}
		taken := dev.prekeys[:count]
		dev.prekeys = dev.prekeys[count:]
		bundle.Devices = append(bundle.Devices, wire.DevicePrekeys{
			DeviceKey: []byte(key),
			Prekeys:   append([]wire.Prekey(nil), taken...),
		})
	}
	return bundle, nil
}

func (f *fakeCourier) UploadTopicKeys(_ context.Context, auth server.Auth, bundle *wire.TopicKeyBundle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, _, err := f.authedDevice(auth)
	if err != nil {
		return err
	}
	u.topicKeys = append(u.topicKeys, bundle.TopicKeys...)
	for _, dm := range bundle.Messages {
		dev, ok := u.devices[string(dm.DeviceKey)]
		if !ok {
			return rverr.New(rverr.InvalidRequest, "message for unknown device")
		}
		dev.inbox.TopicKeyMessages = append(dev.inbox.TopicKeyMessages, dm.Messages...)
	}
	return nil
}

func (f *fakeCourier) DownloadTopicKeys(_ context.Context, auth server.Auth, req *wire.TopicKeyRequest) (*wire.TopicKeyResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, _, err := f.authedDevice(auth); err != nil {
		return nil, err
	}
	resp := &wire.TopicKeyResponse{}
	for _, userKey := range req.Users {
		u, ok := f.users[string(userKey)]
		if !ok || len(u.topicKeys) == 0 {
			continue
		}
		key := u.topicKeys[len(u.topicKeys)-1]
		u.topicKeys = u.topicKeys[:len(u.topicKeys)-1]
		resp.Keys = append(resp.Keys, wire.UserTopicKey{UserKey: userKey, TopicKey: key})
	}
	return resp, nil
}

func (f *fakeCourier) CreateTopic(_ context.Context, auth server.Auth, t *wire.Topic) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, _, err := f.authedDevice(auth); err != nil {
		return err
	}
	if _, exists := f.topics[string(t.ID)]; exists {
		return rverr.New(rverr.ResourceAlreadyExists, "topic exists")
	}
	record := *t
	f.topics[string(t.ID)] = &fakeTopic{
		record:     record,
		chainIndex: 0,
		output:     record.ID,
	}
	// Fan the record out to every member device except the creating one.
	for _, m := range record.Members {
		u, ok := f.users[string(m.Key.UserKey)]
		if !ok {
			continue
		}
		for key, dev := range u.devices {
			if key == string(auth.Device.Slice()) {
				continue
			}
			dev.inbox.Topics = append(dev.inbox.Topics, record)
		}
	}
	return nil
}

func (f *fakeCourier) UploadMessage(_ context.Context, auth server.Auth, upload *wire.MessageUpload) (*wire.ChainState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, _, err := f.authedDevice(auth)
	if err != nil {
		return nil, err
	}
	ft, ok := f.topics[string(upload.TopicID)]
	if !ok {
		return nil, rverr.New(rverr.InvalidRequest, "unknown topic")
	}
	for _, file := range upload.Files {
		f.files[string(upload.TopicID)+string(file.ID)] = file.Ciphertext
	}

	ft.chainIndex++
	ft.output = topic.ChainOutput(ft.output, upload.Message.Signature)
	state := &wire.ChainState{ChainIndex: ft.chainIndex, Output: ft.output}

	// Deliver the update to every member device, the sender's included,
	// and queue a delivery receipt for the sender.
	update := wire.TopicUpdate{
		TopicID:    upload.TopicID,
		ChainIndex: state.ChainIndex,
		Output:     state.Output,
		Message:    upload.Message,
	}
	for _, m := range ft.record.Members {
		mu, ok := f.users[string(m.Key.UserKey)]
		if !ok {
			continue
		}
		for _, dev := range mu.devices {
			dev.inbox.Messages = append(dev.inbox.Messages, update)
		}
	}
	receipt := wire.Receipt{
		SenderKey:  u.info.PublicKey,
		TopicID:    upload.TopicID,
		ChainIndex: state.ChainIndex,
	}
	for _, dev := range u.devices {
		dev.inbox.Receipts = append(dev.inbox.Receipts, receipt)
	}
	return state, nil
}

func (f *fakeCourier) DownloadMessages(_ context.Context, auth server.Auth) (*wire.DeviceDownload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, d, err := f.authedDevice(auth)
	if err != nil {
		return nil, err
	}
	envelope := d.inbox
	d.inbox = wire.DeviceDownload{}
	return &envelope, nil
}

func (f *fakeCourier) DownloadFile(_ context.Context, auth server.Auth, topicID, fileID []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, _, err := f.authedDevice(auth); err != nil {
		return nil, err
	}
	ct, ok := f.files[string(topicID)+string(fileID)]
	if !ok {
		return nil, rverr.New(rverr.InvalidRequest, "unknown file")
	}
	return ct, nil
}

func (f *fakeCourier) UserInfo(_ context.Context, auth server.Auth) (*wire.UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.authedUser(auth)
	if err != nil {
		return nil, err
	}
	info := *u.info
	return &info, nil
}

// inbox returns a device's pending envelope for direct manipulation.
func (f *fakeCourier) inbox(d *device.Device) *wire.DeviceDownload {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[string(d.UserKey().Slice())]
	return &u.devices[string(d.DeviceKey().Slice())].inbox
}

// tamperFile flips a bit in a stored file ciphertext.
func (f *fakeCourier) tamperFile(topicID, fileID []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ct := f.files[string(topicID)+string(fileID)]
	ct[0] ^= 1
}
