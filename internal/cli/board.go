package cli

import (
	"context"

	"pulse-cli/internal/logging"
	"pulse-cli/internal/tui"

	"github.com/spf13/cobra"
)

func newBoardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Interactive board (default when no command is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd, app)
		},
	}
}

func runBoard(cmd *cobra.Command, app *App) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// The alt screen owns the terminal; logs go to <dir>/pulse.log instead.
	if _, closeLog, err := logging.SetupFile(app.cfg.Dir, app.cfg.LogLevel); err == nil {
		defer closeLog()
	}

	rt, err := openRuntime(ctx, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer rt.Close()

	if addr := rt.cfg.MetricsAddr; addr != "" {
		go func() {
			if err := rt.metrics.Serve(ctx, addr); err != nil {
				rt.log.Warn("metrics server stopped", "addr", addr, "err", err)
			}
		}()
	}

	err = tui.Run(ctx, tui.Options{
		Session:    rt.session,
		Collection: rt.coll,
		Prefs:      rt.local,
		Logger:     rt.log,
	})
	if err != nil {
		return writeErr(cmd, err)
	}
	return nil
}
