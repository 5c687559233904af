package cli

import (
	"pulse-cli/internal/publish"
	"pulse-cli/internal/statusutil"
	"pulse-cli/internal/views"

	"github.com/spf13/cobra"
)

func newPublishCmd(app *App) *cobra.Command {
	var to string
	var title string
	var status string
	var search string
	var overwrite bool
	var stdout bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Write a Markdown snapshot of the board",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := statusutil.NormalizeFilter(status)
			if err != nil {
				return writeErr(cmd, err)
			}
			rt, err := loadProjects(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer rt.Close()

			projects := views.Filter(rt.coll.Projects(), filter, search)
			if stdout {
				md := publish.RenderBoardMarkdown(title, projects, false)
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"markdown": md}})
			}
			res, err := publish.WriteBoard(projects, to, publish.WriteOptions{Title: title, Overwrite: overwrite})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Output directory")
	cmd.Flags().StringVar(&title, "title", "Projects", "Board heading")
	cmd.Flags().StringVar(&status, "status", "all", "Status filter")
	cmd.Flags().StringVar(&search, "search", "", "Search filter")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Return the board Markdown instead of writing files")
	cmd.MarkFlagsOneRequired("to", "stdout")
	return cmd
}
