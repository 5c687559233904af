package cli

import (
	"pulse-cli/internal/views"

	"github.com/spf13/cobra"
)

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Project counts and completion rates",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadProjects(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer rt.Close()

			return writeOut(cmd, app, map[string]any{"data": statsTable(views.ComputeStats(rt.coll.Projects()))})
		},
	}
}
