package device

import (
	"context"
	"crypto/rand"
	"io"
	"time"

	"github.com/christophhagen/RendezvousClient/internal/crypto"
	"github.com/christophhagen/RendezvousClient/internal/keys"
	"github.com/christophhagen/RendezvousClient/internal/logger"
	"github.com/christophhagen/RendezvousClient/internal/topic"
	"github.com/christophhagen/RendezvousClient/internal/wire"
	"github.com/christophhagen/RendezvousClient/pkg/rverr"
)

// Options configures registration of a new device.
type Options struct {
	ServerURL string
	AppID     string
	Name      string
	Pin       uint32

	// PrekeyCount and TopicKeyCount size the initial batches included in
	// the registration bundle.
	PrekeyCount   int
	TopicKeyCount int

	// RNG defaults to crypto/rand.Reader.
	RNG io.Reader

	Handler Handler
	Logger  *logger.Logger
}

// Register creates a fresh user and device identity, signs the initial
// UserInfo, and registers with the server using an admin-issued pin. The
// returned device holds the server-issued auth token.
func Register(ctx context.Context, courier Courier, opts Options) (*Device, error) {
	if len(opts.Name) == 0 || len(opts.Name) > wire.MaxNameLength {
		return nil, rverr.Newf(rverr.InvalidRequest, "name must be 1..%d characters", wire.MaxNameLength)
	}
	if len(opts.AppID) > wire.MaxAppIDLength {
		return nil, rverr.Newf(rverr.InvalidRequest, "app id exceeds %d bytes", wire.MaxAppIDLength)
	}
	if opts.Pin >= wire.PinMax {
		return nil, rverr.Newf(rverr.InvalidRequest, "pin %d out of range", opts.Pin)
	}
	rng := opts.RNG
	if rng == nil {
		rng = rand.Reader
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoop()
	}

	userPriv, userPub, err := crypto.GenerateSigningKey(rng)
	if err != nil {
		return nil, err
	}
	devicePriv, devicePub, err := crypto.GenerateSigningKey(rng)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	info := &wire.UserInfo{
		PublicKey:    userPub.Slice(),
		Name:         opts.Name,
		CreationTime: now,
		Timestamp:    now,
		Devices: []wire.DeviceInfo{{
			DeviceKey:    devicePub.Slice(),
			CreationTime: now,
			IsActive:     true,
			AppID:        opts.AppID,
		}},
	}
	if err := info.SignWith(userPriv); err != nil {
		return nil, rverr.Wrap(rverr.SerializationFailed, "sign user info", err)
	}

	d := &Device{
		log:        log,
		rng:        rng,
		courier:    courier,
		handler:    opts.Handler,
		serverURL:  opts.ServerURL,
		appID:      opts.AppID,
		userPriv:   userPriv,
		userPub:    userPub,
		devicePriv: devicePriv,
		devicePub:  devicePub,
		info:       info,
		prekeys:    make(map[keys.AgreementPublic]keys.AgreementPrivate),
		topics:     make(map[string]*topic.Topic),
	}

	prekeys, pairs, err := d.generatePrekeys(opts.PrekeyCount)
	if err != nil {
		return nil, err
	}
	var topicKeys []*topic.TopicKeys
	publics := make([]wire.TopicKeyPublic, 0, opts.TopicKeyCount)
	for i := 0; i < opts.TopicKeyCount; i++ {
		tk, err := topic.NewKeys(rng, userPriv)
		if err != nil {
			return nil, err
		}
		topicKeys = append(topicKeys, tk)
		publics = append(publics, tk.Public)
	}

	bundle := &wire.RegistrationBundle{
		Info:      *info,
		Pin:       opts.Pin,
		Prekeys:   prekeys,
		TopicKeys: publics,
	}
	token, err := courier.Register(ctx, bundle)
	if err != nil {
		return nil, err
	}

	d.authToken = token
	for pub, priv := range pairs {
		d.prekeys[pub] = priv
	}
	d.topicKeys = topicKeys
	log.Info("registered device",
		"user", crypto.Fingerprint(userPub.Slice()),
		"device", crypto.Fingerprint(devicePub.Slice()))
	return d, nil
}

// generatePrekeys creates n signed prekeys without touching the store.
// Callers move the pairs into the store once the server accepted them.
func (d *Device) generatePrekeys(n int) ([]wire.Prekey, map[keys.AgreementPublic]keys.AgreementPrivate, error) {
	prekeys := make([]wire.Prekey, 0, n)
	pairs := make(map[keys.AgreementPublic]keys.AgreementPrivate, n)
	for len(pairs) < n {
		priv, pub, err := crypto.GenerateAgreementKey(d.rng)
		if err != nil {
			return nil, nil, err
		}
		if _, exists := d.prekeys[pub]; exists {
			continue
		}
		if _, exists := pairs[pub]; exists {
			continue
		}
		pairs[pub] = priv
		prekeys = append(prekeys, wire.NewPrekey(d.devicePriv, pub))
	}
	return prekeys, pairs, nil
}
