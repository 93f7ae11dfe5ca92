package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for local testing",
	RunE:  runToken,
}

var (
	tokenUserID string
	tokenEmail  string
	tokenName   string
	tokenTTL    time.Duration
)

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "user", "", "User id to embed in the token")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "Email claim")
	tokenCmd.Flags().StringVar(&tokenName, "name", "", "Name claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.Env, tokenTTL)
	if err != nil {
		return err
	}
	token, err := issuer.Sign(auth.Identity{UserID: tokenUserID, Email: tokenEmail, Name: tokenName})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
