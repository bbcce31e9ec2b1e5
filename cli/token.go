package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"manjaword/config"
	"manjaword/middleware"
)

func newTokenCommand(cfg func() *config.Config) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a session token for MANJAWORD_SESSION_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := middleware.IssueToken(cfg().Auth.SessionSecret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime, 0 for no expiry")
	return cmd
}
