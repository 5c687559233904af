package cli

import (
	"fmt"
	"os"
	"strings"

	"pulse-cli/internal/config"
	"pulse-cli/internal/format"
	"pulse-cli/internal/logging"

	"github.com/spf13/cobra"
)

type App struct {
	APIURL         string
	Dir            string
	Format         string
	PrettyJSON     bool
	SessionBackend string
	RedisAddr      string
	LogLevel       string
	MetricsAddr    string

	cfg *config.Config
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "pulse",
		Short:        "Project Pulse CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive board
  pulse

  # Sign in (password is prompted when not given)
  pulse login --email you@example.com

  # Scriptable commands
  pulse projects list --status in_progress
  pulse projects create --name "Website redesign"
  pulse projects status 12 done

  # Direct lookup (shortcut for: pulse projects show 12)
  pulse 12
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd, app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := app.config(cmd)
		if err != nil {
			return writeErr(cmd, err)
		}
		app.cfg = cfg
		logging.Setup(cfg.LogLevel)
		return nil
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&app.APIURL, "api-url", envOr("PULSE_API_URL", config.DefaultAPIURL), "Project Pulse API base URL")
	pf.StringVar(&app.Dir, "dir", envOr("PULSE_DIR", ""), "State directory (default ~/.pulse)")
	pf.StringVar(&app.Format, "format", envOr("PULSE_FORMAT", "json"), "Output format (json|yaml|table)")
	pf.BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	pf.StringVar(&app.SessionBackend, "session-backend", envOr("PULSE_SESSION_BACKEND", config.BackendSQLite), "Where the session is kept (sqlite|redis)")
	pf.StringVar(&app.RedisAddr, "redis-addr", envOr("PULSE_REDIS_ADDR", "localhost:6379"), "Redis address for --session-backend=redis")
	pf.StringVar(&app.LogLevel, "log-level", envOr("PULSE_LOG_LEVEL", "info"), "Log level (debug|info|warn|error)")
	pf.StringVar(&app.MetricsAddr, "metrics-addr", envOr("PULSE_METRICS_ADDR", ""), "Serve Prometheus metrics on this address while the board runs")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newHealthCmd(app))
	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newStatsCmd(app))
	cmd.AddCommand(newBoardCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// config layers explicitly set flags over .env and the environment.
func (app *App) config(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = app.APIURL
	}
	if flags.Changed("dir") || app.Dir != "" {
		cfg.Dir = app.Dir
	}
	if flags.Changed("session-backend") {
		cfg.SessionBackend = app.SessionBackend
	}
	if flags.Changed("redis-addr") {
		cfg.RedisAddr = app.RedisAddr
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = app.LogLevel
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = app.MetricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
