// Package ctl implements sobrerodasctl, the operator command line for the
// SobreRodas site: schema migrations, the idempotent bootstrap and account
// recovery without the web flow.
package ctl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/sobrerodas/internal/common"
	"github.com/dmitrijs2005/sobrerodas/internal/server/models"
	"github.com/dmitrijs2005/sobrerodas/internal/server/notify"
)

// Accounts is the slice of the user service the recovery commands need.
type Accounts interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	IssueResetToken(ctx context.Context, user *models.User) (string, error)
	ConsumeResetToken(ctx context.Context, token, newPassword string) error
}

// Runtime is what a command operates on once the database is open.
type Runtime struct {
	Migrate   func(ctx context.Context) error
	Bootstrap func(ctx context.Context) error
	Accounts  Accounts
	BaseURL   string
	Close     func() error
}

// Opener connects to the backing store. It is called once per command run.
type Opener func(ctx context.Context) (*Runtime, error)

// NewRootCommand builds the command tree. Output goes to out.
func NewRootCommand(open Opener, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "sobrerodasctl",
		Short:         "Operate the SobreRodas site",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	root.AddCommand(
		newMigrateCommand(open),
		newBootstrapCommand(open),
		newResetLinkCommand(open),
		newSetPasswordCommand(open),
	)
	return root
}

func withRuntime(cmd *cobra.Command, open Opener, fn func(ctx context.Context, rt *Runtime) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := open(ctx)
	if err != nil {
		return err
	}
	if rt.Close != nil {
		defer rt.Close()
	}
	return fn(ctx, rt)
}

func newMigrateCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, open, func(ctx context.Context, rt *Runtime) error {
				if err := rt.Migrate(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}
}

func newBootstrapCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the admin account and sample content if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, open, func(ctx context.Context, rt *Runtime) error {
				if err := rt.Migrate(ctx); err != nil {
					return err
				}
				if err := rt.Bootstrap(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "bootstrap complete")
				return nil
			})
		},
	}
}

func newResetLinkCommand(open Opener) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "reset-link",
		Short: "Issue a password reset link for an account and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, open, func(ctx context.Context, rt *Runtime) error {
				token, err := issueToken(ctx, rt.Accounts, email)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), notify.ResetLink(rt.BaseURL, token))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newSetPasswordCommand(open Opener) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "set-password",
		Short: "Replace an account password, prompting for the new one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := getNewPassword(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer wipe(pw)

			return withRuntime(cmd, open, func(ctx context.Context, rt *Runtime) error {
				token, err := issueToken(ctx, rt.Accounts, email)
				if err != nil {
					return err
				}
				if err := rt.Accounts.ConsumeResetToken(ctx, token, string(pw)); err != nil {
					return fmt.Errorf("error setting password: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "password updated")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func issueToken(ctx context.Context, accounts Accounts, email string) (string, error) {
	email = strings.TrimSpace(email)

	user, err := accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return "", fmt.Errorf("no account with email %q", email)
		}
		return "", err
	}

	token, err := accounts.IssueResetToken(ctx, user)
	if err != nil {
		return "", fmt.Errorf("error issuing reset token: %w", err)
	}
	return token, nil
}
