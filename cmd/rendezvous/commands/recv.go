package commands

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/christophhagen/RendezvousClient/internal/device"
)

// recv: drain the device mailbox and print whatever arrived.
func recvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recv",
		Short: "Fetch and process pending data from the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, fs, err := loadDevice(printEvent)
			if err != nil {
				return err
			}
			if err := d.GetMessages(cmd.Context()); err != nil {
				return err
			}
			return saveDevice(d, fs)
		},
	}
}

func printEvent(e device.Event) {
	switch e.Kind {
	case device.UpdateReceived:
		state := "pending"
		if e.Verified {
			state = "verified"
		}
		fmt.Printf("update %d in %s (%s): %q\n",
			e.Update.ChainIndex, b64(e.Topic.ID), state, e.Update.Metadata)
		for _, f := range e.Update.Files {
			fmt.Printf("  file %s\n", descriptorString(f))
		}
	case device.UpdateVerifiedLate:
		fmt.Printf("update %d in %s verified\n", e.Update.ChainIndex, b64(e.Topic.ID))
	case device.InvalidChain:
		fmt.Printf("invalid chain in %s at index %d\n", b64(e.Topic.ID), e.ChainIndex)
	case device.ChainStateReceived:
		fmt.Printf("delivery for %s: chain now %d\n", b64(e.TopicID), e.ChainIndex)
	case device.TopicAdded:
		fmt.Printf("joined topic %s (%d members)\n", b64(e.Topic.ID), len(e.Topic.Members))
	case device.TopicUpdated:
		fmt.Printf("topic %s membership changed (%d members)\n", b64(e.Topic.ID), len(e.Topic.Members))
	default:
		fmt.Printf("%s\n", e.Kind)
	}
}

func b64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
