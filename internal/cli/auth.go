package cli

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"
)

type credentials struct {
	email    string
	password string
}

func (c *credentials) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.email, "email", envOr("PULSE_EMAIL", ""), "Account email")
	cmd.Flags().StringVar(&c.password, "password", envOr("PULSE_PASSWORD", ""), "Account password (prompted when empty)")
}

// resolve prompts for whatever was not given on the command line.
func (c *credentials) resolve(cmd *cobra.Command) error {
	r := bufio.NewReader(cmd.InOrStdin())
	if strings.TrimSpace(c.email) == "" {
		s, err := readLine(cmd, r, "Email: ")
		if err != nil {
			return err
		}
		c.email = s
	}
	if c.password == "" {
		s, err := readPassword(cmd, r)
		if err != nil {
			return err
		}
		c.password = s
	}
	return nil
}

func newLoginCmd(app *App) *cobra.Command {
	var creds credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := creds.resolve(cmd); err != nil {
				return writeErr(cmd, err)
			}
			rt, err := openRuntime(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer rt.Close()

			u, err := rt.session.Login(cmd.Context(), creds.email, creds.password)
			if err != nil {
				return writeErr(cmd, authError(err))
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"user": u}})
		},
	}
	creds.bind(cmd)
	return cmd
}

func newRegisterCmd(app *App) *cobra.Command {
	var creds credentials
	var fullName string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := creds.resolve(cmd); err != nil {
				return writeErr(cmd, err)
			}
			rt, err := openRuntime(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer rt.Close()

			u, err := rt.session.Register(cmd.Context(), creds.email, creds.password, strings.TrimSpace(fullName))
			if err != nil {
				return writeErr(cmd, authError(err))
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"user": u}})
		},
	}
	creds.bind(cmd)
	cmd.Flags().StringVar(&fullName, "name", "", "Full name (optional)")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer rt.Close()

			if err := rt.session.Logout(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"signedOut": true}})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer rt.Close()

			u, ok := rt.session.User()
			if !ok {
				return writeErr(cmd, errNotSignedIn)
			}
			return writeOut(cmd, app, map[string]any{"data": u})
		},
	}
}

func newHealthCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the API is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer rt.Close()

			h, err := rt.client.Health(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": h, "meta": map[string]any{"apiUrl": rt.client.BaseURL()}})
		},
	}
}
