package device

import (
	"context"

	"github.com/christophhagen/RendezvousClient/internal/keys"
	"github.com/christophhagen/RendezvousClient/internal/wire"
	"github.com/christophhagen/RendezvousClient/pkg/rverr"
)

// GetMessages downloads and processes the pending envelope for this
// device. Sub-phases run in a fixed order: user info, topic key messages,
// topic records, content updates, receipts. The batch fails on the first
// fatal decode error; chain and file verification failures are reported
// through the handler without poisoning the batch.
func (d *Device) GetMessages(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	download, err := d.courier.DownloadMessages(ctx, d.auth())
	if err != nil {
		return err
	}
	return d.process(download)
}

// ReceiveTopicKeyMessagePush decodes and ingests one pushed topic key
// message.
func (d *Device) ReceiveTopicKeyMessagePush(payload []byte) error {
	var msg wire.TopicKeyMessage
	if err := wire.Unmarshal(payload, &msg); err != nil {
		return rverr.Wrap(rverr.InvalidServerData, "decode pushed topic key message", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.handleTopicKeyMessage(msg)
}

// ReceiveTopicPush decodes and ingests one pushed topic record.
func (d *Device) ReceiveTopicPush(payload []byte) error {
	var record wire.Topic
	if err := wire.Unmarshal(payload, &record); err != nil {
		return rverr.Wrap(rverr.InvalidServerData, "decode pushed topic", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.handleTopic(&record)
}

// ReceiveMessagePush decodes and ingests one pushed content update.
func (d *Device) ReceiveMessagePush(payload []byte) error {
	var update wire.TopicUpdate
	if err := wire.Unmarshal(payload, &update); err != nil {
		return rverr.Wrap(rverr.InvalidServerData, "decode pushed update", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.handleUpdate(&update)
}

// process runs the receive pipeline over one envelope. Callers hold the
// lock.
func (d *Device) process(download *wire.DeviceDownload) error {
	if download.UserInfo != nil {
		// A redelivered record with a stale timestamp is skipped, not
		// fatal; anything else invalid fails the batch.
		err := d.mergeUserInfo(download.UserInfo)
		if err != nil && !rverr.Is(err, rverr.RequestOutdated) {
			return err
		}
	}
	for _, msg := range download.TopicKeyMessages {
		if err := d.handleTopicKeyMessage(msg); err != nil {
			return err
		}
	}
	for i := range download.Topics {
		if err := d.handleTopic(&download.Topics[i]); err != nil {
			return err
		}
	}
	for i := range download.Messages {
		if err := d.handleUpdate(&download.Messages[i]); err != nil {
			return err
		}
	}
	for _, receipt := range download.Receipts {
		d.handleReceipt(receipt)
	}
	return nil
}

// handleUpdate authenticates, decrypts and reconciles one content update,
// emitting exactly one UpdateReceived event for it. Queued updates that
// verify during the drain are reported as UpdateVerifiedLate.
func (d *Device) handleUpdate(w *wire.TopicUpdate) error {
	t, ok := d.topics[string(w.TopicID)]
	if !ok {
		return rverr.New(rverr.Unknown, "update for unknown topic")
	}
	incoming, err := t.DecryptUpdate(w)
	if err != nil {
		return err
	}

	verified, invalidIndex, invalid := t.Reconcile(incoming)

	incomingVerified := false
	for _, v := range verified {
		if v == incoming {
			incomingVerified = true
			continue
		}
		d.emit(Event{Kind: UpdateVerifiedLate, Topic: t, Update: v, Verified: true})
	}
	if invalid {
		d.emit(Event{Kind: InvalidChain, Topic: t, ChainIndex: invalidIndex})
	}
	switch {
	case incomingVerified:
		d.emit(Event{Kind: UpdateReceived, Topic: t, Update: incoming, Verified: true})
	case invalid && invalidIndex == incoming.ChainIndex:
		// The incoming update itself broke the chain; InvalidChain above
		// is its report.
	default:
		d.emit(Event{Kind: UpdateReceived, Topic: t, Update: incoming, Verified: false})
	}
	return nil
}

// handleReceipt reports a delivery receipt. Receipts with a malformed
// sender key are dropped silently.
func (d *Device) handleReceipt(receipt wire.Receipt) {
	sender, ok := keys.SigningPublicFromBytes(receipt.SenderKey)
	if !ok {
		d.log.Debug("dropping receipt with malformed sender key")
		return
	}
	d.emit(Event{
		Kind:       ChainStateReceived,
		TopicID:    receipt.TopicID,
		ChainIndex: receipt.ChainIndex,
		Sender:     sender,
	})
}
