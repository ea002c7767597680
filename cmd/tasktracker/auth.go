package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/task-tracker/internal/session"
)

// promptMissing asks for any empty credential field interactively.
func promptMissing(email, password *string) error {
	var fields []huh.Field
	if strings.TrimSpace(*email) == "" {
		fields = append(fields, huh.NewInput().Title("Email").Value(email))
	}
	if *password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(password))
	}
	if len(fields) == 0 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...)).Run()
}

func loginCmd(e *env) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := promptMissing(&email, &password); err != nil {
				return err
			}
			if err := e.open(); err != nil {
				return err
			}
			if err := e.session.Login(cmd.Context(), strings.TrimSpace(email), password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s\n", displayName(e.session.State()))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when empty)")
	return cmd
}

func registerCmd(e *env) *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := promptMissing(&email, &password); err != nil {
				return err
			}
			if err := e.open(); err != nil {
				return err
			}
			err := e.session.Register(cmd.Context(), strings.TrimSpace(email), password, strings.TrimSpace(name))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account created. Welcome, %s\n", displayName(e.session.State()))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when empty)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	return cmd
}

func logoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.open(); err != nil {
				return err
			}
			e.session.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

// whoami is the JSON shape of the whoami command.
type whoami struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func whoamiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := e.requireSession(cmd.Context())
			if err != nil {
				return err
			}

			out := whoami{}
			if snap.User != nil {
				out.ID, out.Email, out.Name = snap.User.ID, snap.User.Email, snap.User.Name
			}
			if exp, ok := session.TokenExpiry(snap.Token); ok {
				out.ExpiresAt = &exp
			}

			if e.jsonOut {
				return printJSON(cmd.OutOrStdout(), out)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s <%s>\n", displayName(snap), out.Email)
			if out.ExpiresAt != nil {
				fmt.Fprintf(w, "Session valid until %s\n", out.ExpiresAt.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
}

func displayName(snap session.Snapshot) string {
	if snap.User == nil {
		return "User"
	}
	return snap.User.DisplayName()
}
