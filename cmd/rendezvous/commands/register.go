package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/christophhagen/RendezvousClient/internal/device"
	"github.com/christophhagen/RendezvousClient/internal/store"
)

func registerCmd() *cobra.Command {
	var pin uint32
	var prekeys, topicKeys int

	cmd := &cobra.Command{
		Use:   "register <name>",
		Short: "Register a new user and device with the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			d, err := device.Register(cmd.Context(), client(), device.Options{
				ServerURL:     cfg.ServerURL,
				AppID:         cfg.AppID,
				Name:          args[0],
				Pin:           pin,
				PrekeyCount:   prekeys,
				TopicKeyCount: topicKeys,
				Logger:        log,
			})
			if err != nil {
				return err
			}
			if err := saveDevice(d, store.New(home)); err != nil {
				return err
			}
			fmt.Printf("registered %s (user %s)\n", args[0], d.UserKey().Base64())
			return nil
		},
	}
	cmd.Flags().Uint32Var(&pin, "pin", 0, "admin-issued registration pin")
	cmd.Flags().IntVar(&prekeys, "prekeys", 50, "initial prekey count")
	cmd.Flags().IntVar(&topicKeys, "topic-keys", 10, "initial topic key count")
	_ = cmd.MarkFlagRequired("pin")
	return cmd
}
