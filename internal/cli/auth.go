package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Gmail via OAuth",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client, err := setupClient(cfg)
			if err != nil {
				return err
			}

			fmt.Println("Starting Gmail OAuth flow...")
			if err := client.Authenticate(cmd.Context()); err != nil {
				return fmt.Errorf("failed to authenticate: %w", err)
			}

			email, err := client.GetProfile(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to verify account: %w", err)
			}

			fmt.Printf("Authenticated as %s.\n", email)
			return nil
		},
	}
}
