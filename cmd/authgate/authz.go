package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/authgate/internal/auth/app"
	"github.com/aussiebroadwan/authgate/internal/auth/domain"
	"github.com/aussiebroadwan/authgate/internal/auth/service"
	"github.com/aussiebroadwan/authgate/pkg/slogx"
)

func newAuthzCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authz",
		Short: "Inspect and change authorization levels",
		Long: `Inspect and change the authorization level of usernames directly in the
configured store. Levels are citizen (0), employee (1) and employee_plus (3).
A username without a grant is a citizen.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <username>",
			Short: "Print the level of a username",
			Args:  cobra.ExactArgs(1),
			RunE: withAuthz(func(ctx context.Context, out io.Writer, svc *service.AuthzService, args []string) error {
				level, err := svc.Get(ctx, args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(out, "%s\t%d\t%s\n", args[0], int(level), level)
				return err
			}),
		},
		&cobra.Command{
			Use:   "grant <username> <level>",
			Short: "Grant employee or employee_plus to a username",
			Args:  cobra.ExactArgs(2),
			RunE: withAuthz(func(ctx context.Context, out io.Writer, svc *service.AuthzService, args []string) error {
				level, err := domain.ParseLevel(args[1])
				if err != nil {
					return err
				}
				changed, err := svc.Set(ctx, args[0], level)
				if err != nil {
					return err
				}
				if !changed {
					_, err = fmt.Fprintf(out, "%s already has level %s\n", args[0], level)
					return err
				}
				_, err = fmt.Fprintf(out, "granted %s to %s\n", level, args[0])
				return err
			}),
		},
		&cobra.Command{
			Use:   "revoke <username>",
			Short: "Return a username to citizen",
			Args:  cobra.ExactArgs(1),
			RunE: withAuthz(func(ctx context.Context, out io.Writer, svc *service.AuthzService, args []string) error {
				existed, err := svc.Delete(ctx, args[0])
				if err != nil {
					return err
				}
				if !existed {
					_, err = fmt.Fprintf(out, "%s has no grant\n", args[0])
					return err
				}
				_, err = fmt.Fprintf(out, "revoked %s\n", args[0])
				return err
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List every grant",
			Args:  cobra.NoArgs,
			RunE: withAuthz(func(ctx context.Context, out io.Writer, svc *service.AuthzService, _ []string) error {
				grants, err := svc.List(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "USERNAME\tLEVEL")
				for _, g := range grants {
					fmt.Fprintf(tw, "%s\t%s\n", g.Username, g.Level)
				}
				return tw.Flush()
			}),
		},
		&cobra.Command{
			Use:   "audit <username>",
			Short: "Print the audit trail of a username",
			Args:  cobra.ExactArgs(1),
			RunE: withAuthz(func(ctx context.Context, out io.Writer, svc *service.AuthzService, args []string) error {
				entries, err := svc.History(ctx, args[0])
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "TIME\tLEVEL\tACTIVE")
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%s\t%t\n", e.CreatedAt.UTC().Format(time.RFC3339), e.Level, e.Active)
				}
				return tw.Flush()
			}),
		},
	)

	return cmd
}

type authzFunc func(ctx context.Context, out io.Writer, svc *service.AuthzService, args []string) error

// withAuthz opens only the store; the IdP and token settings are not
// needed to administer levels.
func withAuthz(fn authzFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := app.ReadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Store.Validate(); err != nil {
			return err
		}

		logger := slogx.New(slogx.Config{
			Service: "authgate",
			Version: app.BuildVersion,
			Env:     cfg.Env,
			Level:   "warn",
			Format:  "text",
			Output:  os.Stderr,
		})

		ctx := slogx.WithContext(cmd.Context(), logger)
		db, err := app.OpenStore(ctx, cfg.Store, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		return fn(ctx, cmd.OutOrStdout(), &service.AuthzService{Store: db}, args)
	}
}
