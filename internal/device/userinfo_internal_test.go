package device

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/christophhagen/RendezvousClient/internal/crypto"
	"github.com/christophhagen/RendezvousClient/internal/keys"
	"github.com/christophhagen/RendezvousClient/internal/logger"
	"github.com/christophhagen/RendezvousClient/internal/topic"
	"github.com/christophhagen/RendezvousClient/internal/wire"
	"github.com/christophhagen/RendezvousClient/pkg/rverr"
)

// bareDevice builds a device with signed initial state and no courier.
func bareDevice(t *testing.T, handler Handler) *Device {
	t.Helper()
	userPriv, userPub, err := crypto.GenerateSigningKey(rand.Reader)
	require.NoError(t, err)
	devicePriv, devicePub, err := crypto.GenerateSigningKey(rand.Reader)
	require.NoError(t, err)

	now := time.Now().Unix()
	info := &wire.UserInfo{
		PublicKey:    userPub.Slice(),
		Name:         "alice",
		CreationTime: now,
		Timestamp:    now,
		Devices: []wire.DeviceInfo{{
			DeviceKey:    devicePub.Slice(),
			CreationTime: now,
			IsActive:     true,
		}},
	}
	require.NoError(t, info.SignWith(userPriv))

	return &Device{
		log:        logger.NewNoop(),
		rng:        rand.Reader,
		handler:    handler,
		userPriv:   userPriv,
		userPub:    userPub,
		devicePriv: devicePriv,
		devicePub:  devicePub,
		info:       info,
		prekeys:    make(map[keys.AgreementPublic]keys.AgreementPrivate),
		topics:     make(map[string]*topic.Topic),
	}
}

// signedCopy clones the current record, applies mutate, bumps the
// timestamp and re-signs.
func signedCopy(t *testing.T, d *Device, mutate func(*wire.UserInfo)) *wire.UserInfo {
	t.Helper()
	info := *d.info
	info.Devices = append([]wire.DeviceInfo(nil), d.info.Devices...)
	info.Timestamp = d.info.Timestamp + 1
	mutate(&info)
	require.NoError(t, info.SignWith(d.userPriv))
	return &info
}

func TestMergeUserInfoAddsDevice(t *testing.T) {
	var events []Event
	d := bareDevice(t, func(e Event) { events = append(events, e) })

	_, newDev, err := crypto.GenerateSigningKey(rand.Reader)
	require.NoError(t, err)
	added := wire.DeviceInfo{
		DeviceKey:    newDev.Slice(),
		CreationTime: d.info.Devices[0].CreationTime + 1,
		IsActive:     true,
	}
	info := signedCopy(t, d, func(i *wire.UserInfo) {
		i.Devices = append(i.Devices, added)
	})

	require.NoError(t, d.mergeUserInfo(info))
	require.Len(t, events, 1)
	require.Equal(t, UserDeviceAdded, events[0].Kind)
	require.Equal(t, newDev.Slice(), events[0].Device.DeviceKey)
	require.Len(t, d.info.Devices, 2)
}

func TestMergeUserInfoChangedAndRemoved(t *testing.T) {
	var events []Event
	d := bareDevice(t, func(e Event) { events = append(events, e) })

	// Add a second device first.
	_, second, err := crypto.GenerateSigningKey(rand.Reader)
	require.NoError(t, err)
	info := signedCopy(t, d, func(i *wire.UserInfo) {
		i.Devices = append(i.Devices, wire.DeviceInfo{
			DeviceKey:    second.Slice(),
			CreationTime: i.Devices[0].CreationTime + 1,
			IsActive:     true,
		})
	})
	require.NoError(t, d.mergeUserInfo(info))
	events = nil

	// Deactivate device 0 and drop the second one.
	info = signedCopy(t, d, func(i *wire.UserInfo) {
		i.Devices[0].IsActive = false
		i.Devices = i.Devices[:1]
	})
	require.NoError(t, d.mergeUserInfo(info))
	require.Len(t, events, 2)
	require.Equal(t, UserDeviceChanged, events[0].Kind)
	require.False(t, events[0].Device.IsActive)
	require.Equal(t, UserDeviceRemoved, events[1].Kind)
	require.Equal(t, second.Slice(), events[1].Device.DeviceKey)
}

func TestMergeUserInfoRejectsStale(t *testing.T) {
	d := bareDevice(t, nil)
	info := signedCopy(t, d, func(i *wire.UserInfo) {
		i.Timestamp = d.info.Timestamp
	})
	err := d.mergeUserInfo(info)
	require.True(t, rverr.Is(err, rverr.RequestOutdated))
}

func TestMergeUserInfoRejectsBadSignature(t *testing.T) {
	d := bareDevice(t, nil)
	info := signedCopy(t, d, func(i *wire.UserInfo) {})
	info.Signature[0] ^= 1
	err := d.mergeUserInfo(info)
	require.True(t, rverr.Is(err, rverr.InvalidSignature))
}

func TestMergeUserInfoRejectsIdentityChange(t *testing.T) {
	d := bareDevice(t, nil)

	info := signedCopy(t, d, func(i *wire.UserInfo) { i.Name = "mallory" })
	require.True(t, rverr.Is(d.mergeUserInfo(info), rverr.InvalidServerData))

	info = signedCopy(t, d, func(i *wire.UserInfo) { i.CreationTime++ })
	require.True(t, rverr.Is(d.mergeUserInfo(info), rverr.InvalidServerData))
}

func TestMergeUserInfoRejectsUnsortedDevices(t *testing.T) {
	d := bareDevice(t, nil)
	_, newDev, err := crypto.GenerateSigningKey(rand.Reader)
	require.NoError(t, err)

	info := signedCopy(t, d, func(i *wire.UserInfo) {
		i.Devices = append(i.Devices, wire.DeviceInfo{
			DeviceKey:    newDev.Slice(),
			CreationTime: i.Devices[0].CreationTime - 10,
			IsActive:     true,
		})
	})
	require.True(t, rverr.Is(d.mergeUserInfo(info), rverr.InvalidServerData))
}
