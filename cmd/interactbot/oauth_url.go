package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonny/interactbot/internal/config"
)

func newOAuthURLCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oauth-url",
		Short: "Print the authorization URL users open to grant access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if !cfg.OAuth.Enabled {
				return errors.New("oauth is disabled in the config")
			}

			state, _ := cmd.Flags().GetString("state")
			if state == "" {
				state = uuid.NewString()
			}
			fmt.Fprintln(cmd.OutOrStdout(), identityClient(cfg).AuthCodeURL(state))
			return nil
		},
	}
	cmd.Flags().String("state", "", "state value to embed (random when empty)")
	return cmd
}
