package cmd

import (
	"fmt"

	"github.com/gatherly/server/internal/auth"
	"github.com/spf13/cobra"
)

var (
	gentokenUserID int64
	gentokenEmail  string
)

// gentokenCmd mints a bearer token without going through login. Useful for
// smoke-testing protected endpoints against a known database.
var gentokenCmd = &cobra.Command{
	Use:   "gentoken",
	Short: "Generate a bearer token for a user id and email",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}

		tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.Issuer)
		token, err := tokens.Issue(gentokenUserID, gentokenEmail)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	gentokenCmd.Flags().Int64Var(&gentokenUserID, "user-id", 0, "user id for the token subject")
	gentokenCmd.Flags().StringVar(&gentokenEmail, "email", "", "email claim for the token")
	_ = gentokenCmd.MarkFlagRequired("user-id")
	_ = gentokenCmd.MarkFlagRequired("email")
}
