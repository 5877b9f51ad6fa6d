package device

import (
	"github.com/christophhagen/RendezvousClient/internal/keys"
	"github.com/christophhagen/RendezvousClient/internal/topic"
	"github.com/christophhagen/RendezvousClient/internal/wire"
)

// EventKind enumerates everything the receive pipeline can report.
type EventKind uint8

const (
	// UserDeviceAdded reports a new device in the user's UserInfo.
	UserDeviceAdded EventKind = iota + 1
	// UserDeviceChanged reports a changed device record.
	UserDeviceChanged
	// UserDeviceRemoved reports a removed device.
	UserDeviceRemoved
	// TopicAdded reports admission into a new topic.
	TopicAdded
	// TopicUpdated reports a membership or role change of a known topic.
	TopicUpdated
	// UpdateReceived reports an incoming content update; Verified tells
	// whether it already extends the verified chain.
	UpdateReceived
	// UpdateVerifiedLate reports that a previously pending update became
	// verified.
	UpdateVerifiedLate
	// ChainStateReceived reports a delivery receipt.
	ChainStateReceived
	// InvalidChain reports a chain mismatch at ChainIndex.
	InvalidChain
)

func (k EventKind) String() string {
	switch k {
	case UserDeviceAdded:
		return "device added"
	case UserDeviceChanged:
		return "device changed"
	case UserDeviceRemoved:
		return "device removed"
	case TopicAdded:
		return "topic added"
	case TopicUpdated:
		return "topic updated"
	case UpdateReceived:
		return "update received"
	case UpdateVerifiedLate:
		return "update verified late"
	case ChainStateReceived:
		return "chain state received"
	case InvalidChain:
		return "invalid chain"
	}
	return "unknown"
}

// Event is one receive-pipeline notification. Only the fields relevant to
// Kind are set.
type Event struct {
	Kind EventKind

	// Device accompanies the UserDevice* kinds.
	Device *wire.DeviceInfo

	// Topic accompanies TopicAdded, TopicUpdated and the update kinds.
	Topic *topic.Topic

	// Update accompanies UpdateReceived and UpdateVerifiedLate.
	Update *topic.Update

	// Verified qualifies UpdateReceived.
	Verified bool

	// TopicID, ChainIndex and Sender accompany ChainStateReceived;
	// ChainIndex also accompanies InvalidChain.
	TopicID    []byte
	ChainIndex uint32
	Sender     keys.SigningPublic
}

// Handler receives pipeline events. It runs with the device lock held and
// must not call back into the Device.
type Handler func(Event)

func (d *Device) emit(e Event) {
	if d.handler != nil {
		d.handler(e)
	}
}
