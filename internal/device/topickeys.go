package device

import (
	"bytes"
	"context"

	"github.com/christophhagen/RendezvousClient/internal/keys"
	"github.com/christophhagen/RendezvousClient/internal/topic"
	"github.com/christophhagen/RendezvousClient/internal/wire"
	"github.com/christophhagen/RendezvousClient/pkg/rverr"
)

// UploadTopicKeys generates a batch of topic keys and distributes their
// private halves to all other devices of this user via their prekeys.
//
// The server's prekey bundle is verified before anything is generated:
// every returned device must be listed in the current UserInfo, every
// other device of the UserInfo must be present, each per-device list must
// hold exactly KeyCount prekeys, and every prekey signature must verify
// under its device key.
func (d *Device) UploadTopicKeys(ctx context.Context, count int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	bundle, err := d.courier.DownloadPrekeys(ctx, d.auth(), count, d.appID)
	if err != nil {
		return err
	}
	peers, err := d.verifyPrekeyBundle(bundle)
	if err != nil {
		return err
	}

	keyCount := int(bundle.KeyCount)
	fresh := make([]*topic.TopicKeys, 0, keyCount)
	publics := make([]wire.TopicKeyPublic, 0, keyCount)
	for i := 0; i < keyCount; i++ {
		tk, err := topic.NewKeys(d.rng, d.userPriv)
		if err != nil {
			return err
		}
		fresh = append(fresh, tk)
		publics = append(publics, tk.Public)
	}

	upload := &wire.TopicKeyBundle{TopicKeys: publics}
	for _, peer := range peers {
		messages := make([]wire.TopicKeyMessage, 0, keyCount)
		for i, tk := range fresh {
			msg, err := tk.WrapFor(d.rng, peer.prekeys[i])
			if err != nil {
				return err
			}
			messages = append(messages, msg)
		}
		upload.Messages = append(upload.Messages, wire.DeviceTopicKeyMessages{
			DeviceKey: peer.key.Slice(),
			Messages:  messages,
		})
	}

	if err := d.courier.UploadTopicKeys(ctx, d.auth(), upload); err != nil {
		return err
	}
	d.topicKeys = append(d.topicKeys, fresh...)
	d.log.Debug("uploaded topic keys", "count", keyCount, "pool", len(d.topicKeys))
	return nil
}

type peerDevice struct {
	key     keys.SigningPublic
	prekeys []keys.AgreementPublic
}

// verifyPrekeyBundle checks the server's prekey bundle against the current
// UserInfo. Callers hold the lock.
func (d *Device) verifyPrekeyBundle(bundle *wire.DevicePrekeyBundle) ([]peerDevice, error) {
	keyCount := int(bundle.KeyCount)
	if keyCount == 0 {
		return nil, rverr.New(rverr.InvalidTopicKeyUpload, "server offered zero prekeys")
	}

	expected := make(map[string]bool)
	for _, dev := range d.info.Devices {
		if !bytes.Equal(dev.DeviceKey, d.devicePub.Slice()) {
			expected[string(dev.DeviceKey)] = true
		}
	}

	peers := make([]peerDevice, 0, len(bundle.Devices))
	for _, dev := range bundle.Devices {
		if !expected[string(dev.DeviceKey)] {
			return nil, rverr.New(rverr.InvalidServerData, "prekey bundle names unknown device")
		}
		delete(expected, string(dev.DeviceKey))

		deviceKey, _ := keys.SigningPublicFromBytes(dev.DeviceKey)
		if len(dev.Prekeys) != keyCount {
			return nil, rverr.Newf(rverr.InvalidServerData, "device has %d prekeys, want %d", len(dev.Prekeys), keyCount)
		}
		peer := peerDevice{key: deviceKey, prekeys: make([]keys.AgreementPublic, 0, keyCount)}
		for _, pk := range dev.Prekeys {
			pub, ok := pk.Verify(deviceKey)
			if !ok {
				return nil, rverr.New(rverr.InvalidSignature, "prekey signature invalid")
			}
			peer.prekeys = append(peer.prekeys, pub)
		}
		peers = append(peers, peer)
	}
	if len(expected) > 0 {
		return nil, rverr.New(rverr.InvalidServerData, "prekey bundle misses a device")
	}
	return peers, nil
}
