package commands

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/christophhagen/RendezvousClient/internal/keys"
	"github.com/christophhagen/RendezvousClient/internal/wire"
)

// parseMember parses "base64key[:role]" with role admin, participant or
// observer (default participant).
func parseMember(arg string) (keys.SigningPublic, wire.Role, error) {
	var key keys.SigningPublic
	part, roleName, found := strings.Cut(arg, ":")
	raw, err := base64.StdEncoding.DecodeString(part)
	if err != nil {
		return key, 0, fmt.Errorf("invalid member key %q: %w", part, err)
	}
	key, ok := keys.SigningPublicFromBytes(raw)
	if !ok {
		return key, 0, fmt.Errorf("member key must be %d bytes", keys.Length)
	}
	role := wire.RoleParticipant
	if found {
		switch roleName {
		case "admin":
			role = wire.RoleAdmin
		case "participant":
			role = wire.RoleParticipant
		case "observer":
			role = wire.RoleObserver
		default:
			return key, 0, fmt.Errorf("unknown role %q", roleName)
		}
	}
	return key, role, nil
}

func createTopicCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-topic <member>...",
		Short: "Create a topic with the given members",
		Long: "Members are given as base64 user keys with an optional role suffix,\n" +
			"e.g. 'mFj...aQ==:admin'. Users without an available topic key are dropped.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			members := make(map[keys.SigningPublic]wire.Role, len(args))
			for _, arg := range args {
				key, role, err := parseMember(arg)
				if err != nil {
					return err
				}
				members[key] = role
			}
			d, fs, err := loadDevice(nil)
			if err != nil {
				return err
			}
			t, err := d.CreateTopic(cmd.Context(), members)
			if err != nil {
				return err
			}
			if err := saveDevice(d, fs); err != nil {
				return err
			}
			fmt.Printf("created topic %s with %d members\n",
				base64.StdEncoding.EncodeToString(t.ID), len(t.Members))
			return nil
		},
	}
	return cmd
}
