package commands

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/christophhagen/RendezvousClient/internal/device"
)

// send <topic> <metadata>: post an update, optionally with files.
func sendCmd() *cobra.Command {
	var filePaths []string
	cmd := &cobra.Command{
		Use:   "send <topic> <metadata>",
		Short: "Post an update to a topic",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			topicID, err := base64.StdEncoding.DecodeString(args[0])
			if err != nil {
				return fmt.Errorf("invalid topic id: %w", err)
			}
			d, fs, err := loadDevice(nil)
			if err != nil {
				return err
			}
			t, ok := d.Topic(topicID)
			if !ok {
				return fmt.Errorf("unknown topic %s", args[0])
			}

			files := make([]device.FileData, 0, len(filePaths))
			for _, path := range filePaths {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				id, err := d.NewFileID()
				if err != nil {
					return err
				}
				files = append(files, device.FileData{ID: id, Data: data})
			}

			update, err := d.Upload(cmd.Context(), files, []byte(args[1]), t)
			if err != nil {
				return err
			}
			if err := saveDevice(d, fs); err != nil {
				return err
			}
			fmt.Printf("posted update %d to %s\n", update.ChainIndex, args[0])
			for i, f := range update.Files {
				fmt.Printf("  file %s -> %s\n",
					filepath.Base(filePaths[i]), descriptorString(f))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&filePaths, "file", nil, "file(s) to attach")
	return cmd
}
