package commands

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/christophhagen/RendezvousClient/internal/wire"
)

// descriptorString renders a file descriptor in the id:tag:hash form that
// the file command accepts back.
func descriptorString(f wire.File) string {
	return b64(f.ID) + ":" + b64(f.Tag) + ":" + b64(f.Hash)
}

func parseDescriptor(arg string) (wire.File, error) {
	parts := strings.Split(arg, ":")
	if len(parts) != 3 {
		return wire.File{}, fmt.Errorf("descriptor must be id:tag:hash, got %q", arg)
	}
	var file wire.File
	for i, dst := range []*[]byte{&file.ID, &file.Tag, &file.Hash} {
		raw, err := base64.StdEncoding.DecodeString(parts[i])
		if err != nil {
			return wire.File{}, fmt.Errorf("invalid descriptor part %q: %w", parts[i], err)
		}
		*dst = raw
	}
	return file, nil
}

// file <topic> <descriptor>: fetch and decrypt one attached file.
func fileCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "file <topic> <descriptor>",
		Short: "Download and decrypt a file attached to an update",
		Long: "The descriptor is the id:tag:hash string printed by recv for\n" +
			"each file of an update.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			topicID, err := base64.StdEncoding.DecodeString(args[0])
			if err != nil {
				return fmt.Errorf("invalid topic id: %w", err)
			}
			file, err := parseDescriptor(args[1])
			if err != nil {
				return err
			}
			d, _, err := loadDevice(nil)
			if err != nil {
				return err
			}
			t, ok := d.Topic(topicID)
			if !ok {
				return fmt.Errorf("unknown topic %s", args[0])
			}
			plain, err := d.GetFile(cmd.Context(), file, t)
			if err != nil {
				return err
			}
			if out == "" {
				_, err = os.Stdout.Write(plain)
				return err
			}
			if err := os.WriteFile(out, plain, 0o600); err != nil {
				return err
			}
			fmt.Printf("wrote %d bytes to %s\n", len(plain), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the plaintext to this path instead of stdout")
	return cmd
}
