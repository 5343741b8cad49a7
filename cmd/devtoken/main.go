// Command devtoken mints tenant access tokens for local development using the
// same configuration the server loads.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	jwttoken "crmdir/internal/jwt_token"
	"crmdir/internal/platform/config"
	id "crmdir/pkg/domain"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		subject   string
		expiresIn time.Duration
		configDir string
	)
	cmd := &cobra.Command{
		Use:   "devtoken [tenant-id]",
		Short: "Print a signed tenant access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			tenantID, err := id.ParseTenantID(args[0])
			if err != nil {
				return fmt.Errorf("invalid tenant id: %w", err)
			}
			cfg, err := config.Load(configDir)
			if err != nil {
				return err
			}
			svc := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
			token, err := svc.GenerateAccessToken(tenantID, subject, expiresIn)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "dev@localhost", "token subject")
	cmd.Flags().DurationVar(&expiresIn, "expires-in", time.Hour, "token lifetime")
	cmd.Flags().StringVar(&configDir, "config-dir", os.Getenv("CRMDIR_CONFIG_DIR"), "directory holding config.yaml")
	return cmd
}
