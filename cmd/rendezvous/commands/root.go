package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/christophhagen/RendezvousClient/internal/config"
	"github.com/christophhagen/RendezvousClient/internal/device"
	"github.com/christophhagen/RendezvousClient/internal/logger"
	"github.com/christophhagen/RendezvousClient/internal/server"
	"github.com/christophhagen/RendezvousClient/internal/store"
)

var (
	cfg        *config.Config
	log        *logger.Logger
	home       string
	passphrase string
	serverURL  string
)

// Execute runs the CLI.
func Execute() error {
	root := &cobra.Command{
		Use:   "rendezvous",
		Short: "End-to-end encrypted group messaging client",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.New()
			if err != nil {
				return err
			}
			log = logger.New(cfg.LogLevel)
			if serverURL != "" {
				cfg.ServerURL = serverURL
			}
			if home == "" {
				home = cfg.Home
			}
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".rendezvous")
			}
			return os.MkdirAll(home, 0o700)
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "state dir (default ~/.rendezvous)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the device state")
	root.PersistentFlags().StringVar(&serverURL, "server", "", "server base URL")

	root.AddCommand(
		registerCmd(),
		prekeysCmd(),
		topicKeysCmd(),
		createTopicCmd(),
		sendCmd(),
		recvCmd(),
		fileCmd(),
		fingerprintCmd(),
		adminCmd(),
	)
	return root.Execute()
}

func client() *server.Client {
	return server.New(cfg.ServerURL, nil, log)
}

// loadDevice restores the device from the encrypted store.
func loadDevice(handler device.Handler) (*device.Device, *store.FileStore, error) {
	if passphrase == "" {
		return nil, nil, fmt.Errorf("passphrase required (-p)")
	}
	fs := store.New(home)
	blob, ok, err := fs.Load(passphrase)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("no device state in %s; run register first", home)
	}
	d, err := device.Deserialize(blob, client(), handler, log)
	if err != nil {
		return nil, nil, err
	}
	return d, fs, nil
}

// saveDevice writes the device back to the store.
func saveDevice(d *device.Device, fs *store.FileStore) error {
	blob, err := d.Serialize()
	if err != nil {
		return err
	}
	return fs.Save(passphrase, blob)
}
