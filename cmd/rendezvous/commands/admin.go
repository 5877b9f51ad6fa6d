package commands

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/christophhagen/RendezvousClient/internal/server"
)

// admin subcommands talk to the management endpoints. The current token
// comes from RENDEZVOUS_ADMIN_TOKEN; a fresh development server accepts
// the all-zero default.
func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Server management",
	}
	cmd.AddCommand(adminRenewCmd(), adminResetCmd(), adminAllowCmd())
	return cmd
}

func admin() (*server.Admin, error) {
	var token []byte
	if cfg.AdminToken != "" {
		t, err := base64.StdEncoding.DecodeString(cfg.AdminToken)
		if err != nil {
			return nil, fmt.Errorf("invalid admin token: %w", err)
		}
		token = t
	}
	return server.NewAdmin(client(), token), nil
}

func adminRenewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "renew",
		Short: "Rotate the admin token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := admin()
			if err != nil {
				return err
			}
			if err := a.UpdateAdminToken(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("new admin token: %s\n", base64.StdEncoding.EncodeToString(a.Token()))
			return nil
		},
	}
}

func adminResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Wipe all state on a development server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := admin()
			if err != nil {
				return err
			}
			if err := a.ResetDevelopmentServer(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("server reset; admin token back to default")
			return nil
		},
	}
}

func adminAllowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "allow <name>",
		Short: "Allow a user name to register and print its pin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := admin()
			if err != nil {
				return err
			}
			pin, expiry, err := a.Allow(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("user %q allowed: pin %05d (valid until unix %d)\n", args[0], pin, expiry)
			return nil
		},
	}
}
