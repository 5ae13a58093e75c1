package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/authgate/internal/auth/app"
)

// NewRootCmd creates the authgate command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "authgate",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "authgate issues JWTs for logins delegated to a SIAM identity provider",
		Long: `authgate delegates the login to a SIAM (a-select) identity provider and
issues HMAC signed refresh and access tokens. Access tokens carry the
authorization level stored for the subject.

Configuration is read from the environment, an optional .env file and the
optional YAML file named by AUTH_CONFIG_FILE.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newSelfCheckCmd())
	root.AddCommand(newAuthzCmd())
	root.AddCommand(newSecretCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}

			application, err := app.New(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return application.Run()
		},
	}
}

func newSelfCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selfcheck",
		Short: "Verify the token configuration and IdP connectivity, then exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}

			application, err := app.New(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer application.Close()

			if err := application.SelfCheck(context.Background()); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "authgate", app.BuildVersion)
			return err
		},
	}
}
