package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/katrohit/nutrifolio/internal/auth"
)

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Print a signed bearer token for a user",
	Long: `Print an HS256 bearer token for the given user id, signed with
JWT_SIGNING_KEY. Useful against a local server:

  $ curl -H "Authorization: Bearer $(nutrifolio token <user-id>)" localhost:8080/api/profile`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.JWTSigningKey == "" {
			return errors.New("JWT_SIGNING_KEY is not set")
		}
		userID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("user id must be a UUID: %w", err)
		}

		token, err := auth.GenerateJWTToken(userID.String(), cfg.JWTSigningKey, tokenTTL)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(), "expires in %s\n", tokenTTL)
		return nil
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
