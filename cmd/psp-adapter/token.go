package main

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/upb/dpa-psp-adapter/config"
	"github.com/upb/dpa-psp-adapter/uaa"
)

type mockTokenConfig struct {
	Secret  string
	PSPCode string
}

func newMockTokenCommand() *cobra.Command {
	var cfg mockTokenConfig

	cmd := &cobra.Command{
		Use:   "mock-token",
		Short: "Print a mock bearer token for non-production use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load(".env")

			mode := config.ParseRuntimeMode(firstNonEmpty(os.Getenv("ENVIRONMENT"), os.Getenv("NODE_ENV")))
			if !mode.AllowsMockTokens() {
				return errors.New("mock tokens are disabled in production: set ENVIRONMENT=development")
			}

			token, err := issueMockToken(cfg)
			if err != nil {
				return err
			}
			cmd.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.Secret, "secret", "", "Shared mock secret. Defaults to MOCK_JWT_SECRET.")
	cmd.Flags().StringVar(&cfg.PSPCode, "psp-code", "", "PSP code claim. Defaults to PSP_CODE.")

	return cmd
}

func issueMockToken(cfg mockTokenConfig) (string, error) {
	secret := firstNonEmpty(cfg.Secret, os.Getenv("MOCK_JWT_SECRET"))
	pspCode := firstNonEmpty(cfg.PSPCode, os.Getenv("PSP_CODE"))
	return uaa.NewMockTokenIssuer(secret, pspCode).Issue()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
