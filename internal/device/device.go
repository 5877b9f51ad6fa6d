package device

import (
	"context"
	"crypto/rand"
	"io"
	"sync"

	"github.com/christophhagen/RendezvousClient/internal/crypto"
	"github.com/christophhagen/RendezvousClient/internal/keys"
	"github.com/christophhagen/RendezvousClient/internal/logger"
	"github.com/christophhagen/RendezvousClient/internal/server"
	"github.com/christophhagen/RendezvousClient/internal/topic"
	"github.com/christophhagen/RendezvousClient/internal/wire"
	"github.com/christophhagen/RendezvousClient/pkg/rverr"
)

// Courier is the request surface the device needs from the server adapter.
// *server.Client implements it; tests substitute an in-memory courier.
type Courier interface {
	Register(ctx context.Context, bundle *wire.RegistrationBundle) ([]byte, error)
	UploadPrekeys(ctx context.Context, auth server.Auth, req *wire.PrekeyUploadRequest) error
	DownloadPrekeys(ctx context.Context, auth server.Auth, count int, app string) (*wire.DevicePrekeyBundle, error)
	UploadTopicKeys(ctx context.Context, auth server.Auth, bundle *wire.TopicKeyBundle) error
	DownloadTopicKeys(ctx context.Context, auth server.Auth, req *wire.TopicKeyRequest) (*wire.TopicKeyResponse, error)
	CreateTopic(ctx context.Context, auth server.Auth, t *wire.Topic) error
	UploadMessage(ctx context.Context, auth server.Auth, upload *wire.MessageUpload) (*wire.ChainState, error)
	DownloadMessages(ctx context.Context, auth server.Auth) (*wire.DeviceDownload, error)
	DownloadFile(ctx context.Context, auth server.Auth, topicID, fileID []byte) ([]byte, error)
	UserInfo(ctx context.Context, auth server.Auth) (*wire.UserInfo, error)
}

var _ Courier = (*server.Client)(nil)

// Device is the client core. All public operations and handler
// invocations are serialized by mu.
type Device struct {
	mu      sync.Mutex
	log     *logger.Logger
	rng     io.Reader
	courier Courier
	handler Handler

	serverURL string
	appID     string

	userPriv   keys.SigningPrivate
	userPub    keys.SigningPublic
	devicePriv keys.SigningPrivate
	devicePub  keys.SigningPublic

	info      *wire.UserInfo
	authToken []byte

	// prekeys maps an unconsumed prekey's public half to its private
	// half; consuming a prekey removes the entry.
	prekeys map[keys.AgreementPublic]keys.AgreementPrivate

	// topicKeys is the pool of this user's unconsumed topic keys.
	topicKeys []*topic.TopicKeys

	// topics is keyed by the raw topic id.
	topics map[string]*topic.Topic
}

func (d *Device) auth() server.Auth {
	return server.Auth{User: d.userPub, Device: d.devicePub, Token: d.authToken}
}

// UserKey returns the public user identity key.
func (d *Device) UserKey() keys.SigningPublic { return d.userPub }

// DeviceKey returns the public device identity key.
func (d *Device) DeviceKey() keys.SigningPublic { return d.devicePub }

// Topic returns the topic with the given id.
func (d *Device) Topic(id []byte) (*topic.Topic, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.topics[string(id)]
	return t, ok
}

// Topics returns all known topics.
func (d *Device) Topics() []*topic.Topic {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*topic.Topic, 0, len(d.topics))
	for _, t := range d.topics {
		out = append(out, t)
	}
	return out
}

// PrekeyCount returns the number of unconsumed prekeys.
func (d *Device) PrekeyCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.prekeys)
}

// TopicKeyCount returns the number of unconsumed topic keys.
func (d *Device) TopicKeyCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.topicKeys)
}

// Info returns the latest UserInfo record.
func (d *Device) Info() *wire.UserInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.info
}

// Serialize packs the complete observable device state into one binary
// blob.
func (d *Device) Serialize() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	data := wire.ClientData{
		ServerURL:        d.serverURL,
		AppID:            d.appID,
		UserPrivateKey:   d.userPriv.Slice(),
		DevicePrivateKey: d.devicePriv.Slice(),
		UserPublicKey:    d.userPub.Slice(),
		Info:             d.info,
		AuthToken:        d.authToken,
	}
	for pub, priv := range d.prekeys {
		data.Prekeys = append(data.Prekeys, wire.PrekeyPair{
			PrivateKey: priv.Slice(),
			PublicKey:  pub.Slice(),
		})
	}
	for _, tk := range d.topicKeys {
		data.TopicKeys = append(data.TopicKeys, wire.TopicKeyPair{
			SigningKey:    tk.SigningPrivate.Slice(),
			EncryptionKey: tk.EncryptionPrivate.Slice(),
			Public:        tk.Public,
		})
	}
	for _, t := range d.topics {
		data.Topics = append(data.Topics, t.Store())
	}
	blob, err := wire.Marshal(&data)
	if err != nil {
		return nil, rverr.Wrap(rverr.SerializationFailed, "serialize device", err)
	}
	return blob, nil
}

// Deserialize restores a device from a Serialize blob.
func Deserialize(blob []byte, courier Courier, handler Handler, log *logger.Logger) (*Device, error) {
	var data wire.ClientData
	if err := wire.Unmarshal(blob, &data); err != nil {
		return nil, rverr.Wrap(rverr.SerializationFailed, "deserialize device", err)
	}

	d := &Device{
		log:       log,
		rng:       rand.Reader,
		courier:   courier,
		handler:   handler,
		serverURL: data.ServerURL,
		appID:     data.AppID,
		info:      data.Info,
		authToken: data.AuthToken,
		prekeys:   make(map[keys.AgreementPublic]keys.AgreementPrivate),
		topics:    make(map[string]*topic.Topic),
	}
	copy(d.userPriv[:], data.UserPrivateKey)
	copy(d.devicePriv[:], data.DevicePrivateKey)
	userPub, ok := keys.SigningPublicFromBytes(data.UserPublicKey)
	if !ok {
		return nil, rverr.New(rverr.SerializationFailed, "stored user key malformed")
	}
	d.userPub = userPub
	d.devicePub = crypto.PublicOf(d.devicePriv)

	for _, p := range data.Prekeys {
		pub, ok := keys.AgreementPublicFromBytes(p.PublicKey)
		if !ok {
			return nil, rverr.New(rverr.SerializationFailed, "stored prekey malformed")
		}
		var priv keys.AgreementPrivate
		copy(priv[:], p.PrivateKey)
		d.prekeys[pub] = priv
	}
	for _, tk := range data.TopicKeys {
		pair := &topic.TopicKeys{Public: tk.Public}
		copy(pair.SigningPrivate[:], tk.SigningKey)
		copy(pair.EncryptionPrivate[:], tk.EncryptionKey)
		d.topicKeys = append(d.topicKeys, pair)
	}
	for _, ts := range data.Topics {
		t, err := topic.FromStore(ts)
		if err != nil {
			return nil, rverr.Wrap(rverr.SerializationFailed, "restore topic", err)
		}
		d.topics[string(t.ID)] = t
	}
	return d, nil
}
