package device

import (
	"context"

	"github.com/christophhagen/RendezvousClient/internal/wire"
)

// UploadPrekeys generates count fresh prekeys, signs their public halves
// with the device key and publishes them. The private halves enter the
// store only after the server accepted the batch, so the store never
// holds keys the server does not know.
func (d *Device) UploadPrekeys(ctx context.Context, count int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	prekeys, pairs, err := d.generatePrekeys(count)
	if err != nil {
		return err
	}
	req := &wire.PrekeyUploadRequest{Prekeys: prekeys}
	if err := d.courier.UploadPrekeys(ctx, d.auth(), req); err != nil {
		return err
	}
	for pub, priv := range pairs {
		d.prekeys[pub] = priv
	}
	d.log.Debug("uploaded prekeys", "count", count, "stored", len(d.prekeys))
	return nil
}
