package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/christophhagen/RendezvousClient/internal/crypto"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the user and device key fingerprints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := loadDevice(nil)
			if err != nil {
				return err
			}
			user := d.UserKey()
			dev := d.DeviceKey()
			fmt.Printf("user    %s  (%s)\n", crypto.Fingerprint(user.Slice()), user.Base64())
			fmt.Printf("device  %s  (%s)\n", crypto.Fingerprint(dev.Slice()), dev.Base64())
			for _, t := range d.Topics() {
				fmt.Printf("topic   %s  chain %d, %d members\n",
					b64(t.ID), t.ChainIndex, len(t.Members))
			}
			return nil
		},
	}
}
