package device

import (
	"bytes"
	"context"

	"github.com/christophhagen/RendezvousClient/internal/wire"
	"github.com/christophhagen/RendezvousClient/pkg/rverr"
)

// UpdateUserInfo fetches the authoritative UserInfo and merges it.
func (d *Device) UpdateUserInfo(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	info, err := d.courier.UserInfo(ctx, d.auth())
	if err != nil {
		return err
	}
	return d.mergeUserInfo(info)
}

// mergeUserInfo validates an incoming UserInfo against the stored record,
// diffs the device lists, replaces the record and emits device events.
// Callers hold the lock.
func (d *Device) mergeUserInfo(info *wire.UserInfo) error {
	current := d.info
	if info.Timestamp <= current.Timestamp {
		return rverr.New(rverr.RequestOutdated, "user info not newer than stored record")
	}
	if !info.VerifySignature(d.userPub) {
		return rverr.New(rverr.InvalidSignature, "user info signature invalid")
	}
	// The identity fields never change across updates.
	if !bytes.Equal(info.PublicKey, current.PublicKey) ||
		info.Name != current.Name ||
		info.CreationTime != current.CreationTime {
		return rverr.New(rverr.InvalidServerData, "user info identity fields changed")
	}
	if !info.DevicesSorted() {
		return rverr.New(rverr.InvalidServerData, "user info devices not sorted")
	}

	// Diff devices by key before replacing the record.
	type diffEntry struct {
		kind   EventKind
		device wire.DeviceInfo
	}
	var diff []diffEntry
	known := make(map[string]wire.DeviceInfo, len(current.Devices))
	for _, dev := range current.Devices {
		known[string(dev.DeviceKey)] = dev
	}
	for _, dev := range info.Devices {
		old, exists := known[string(dev.DeviceKey)]
		switch {
		case !exists:
			diff = append(diff, diffEntry{UserDeviceAdded, dev})
		case !old.Equal(dev):
			diff = append(diff, diffEntry{UserDeviceChanged, dev})
		}
		delete(known, string(dev.DeviceKey))
	}
	for _, dev := range current.Devices {
		if _, removed := known[string(dev.DeviceKey)]; removed {
			diff = append(diff, diffEntry{UserDeviceRemoved, dev})
		}
	}

	d.info = info
	for _, e := range diff {
		dev := e.device
		d.emit(Event{Kind: e.kind, Device: &dev})
	}
	return nil
}
