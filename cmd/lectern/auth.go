package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lectern/internal/bootstrap"
	authdto "lectern/internal/modules/auth/dto"
)

func newLoginCmd(dataDir *string) *cobra.Command {
	var email, password string
	login := &cobra.Command{
		Use:   "login --email <email>",
		Short: "Sign in and store the session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(email) == "" {
				return fmt.Errorf("--email is required")
			}
			if password == "" {
				_, _ = fmt.Fprint(cmd.ErrOrStderr(), "password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			return withApp(cmd, *dataDir, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.AuthCLI.Login(ctx, email, password)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (token expires %s)\n", email, formatExpiry(out.ExpiresAt))
				return nil
			})
		},
	}
	login.Flags().StringVar(&email, "email", "", "account email")
	login.Flags().StringVar(&password, "password", "", "account password (prompted when empty)")
	return login
}

func newLogoutCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataDir, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.AuthCLI.Logout(ctx); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "logged out")
				return nil
			})
		},
	}
}

func newWhoAmICmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataDir, func(ctx context.Context, app *bootstrap.App) error {
				u, err := app.AuthCLI.WhoAmI(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "id: %d\nname: %s\nemail: %s\nregistration: %s\nstate: %s\n", u.ID, u.Name, u.Email, u.Registration, u.State)
				return nil
			})
		},
	}
}

func newStatusCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a valid session token is stored",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataDir, func(ctx context.Context, app *bootstrap.App) error {
				st, err := app.AuthCLI.Status(ctx)
				if err != nil {
					return err
				}
				if !st.Authenticated {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "not logged in")
					return nil
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "logged in (token expires %s)\n", formatExpiry(st.ExpiresAt))
				return nil
			})
		},
	}
}

func newRegisterCmd(dataDir *string) *cobra.Command {
	input := authdto.RegisterInput{}
	register := &cobra.Command{
		Use:   "register --registration <id> --name <name> --email <email> --password <password>",
		Short: "Create a library account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *dataDir, func(ctx context.Context, app *bootstrap.App) error {
				u, err := app.AuthCLI.Register(ctx, input)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "registered %s (id %d), now run: lectern login --email %s\n", u.Name, u.ID, u.Email)
				return nil
			})
		},
	}
	register.Flags().StringVar(&input.Registration, "registration", "", "student or staff registration number")
	register.Flags().StringVar(&input.Name, "name", "", "full name")
	register.Flags().StringVar(&input.Email, "email", "", "email")
	register.Flags().StringVar(&input.Phone, "phone", "", "phone (optional)")
	register.Flags().StringVar(&input.Password, "password", "", "password, at least 6 characters")
	return register
}

func formatExpiry(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Local().Format("2006-01-02 15:04")
}
