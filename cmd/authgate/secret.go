package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/authgate/pkg/cryptox"
)

func newSecretCmd() *cobra.Command {
	var (
		algorithm string
		size      int
	)

	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Generate a random token signing secret",
		Long: `Prints a random base64url secret for AUTH_ACCESS_SECRET or
AUTH_REFRESH_SECRET. The length defaults to the hash size of the algorithm.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if size == 0 {
				size = cryptox.SecretSize(algorithm)
			}
			secret, err := cryptox.GenerateSecret(size)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), secret)
			return err
		},
	}

	cmd.Flags().StringVar(&algorithm, "algorithm", "HS256", "JWT algorithm the secret is for (HS256, HS384 or HS512)")
	cmd.Flags().IntVar(&size, "bytes", 0, "secret length in bytes, overrides the algorithm default")
	return cmd
}
