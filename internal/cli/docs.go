package cli

import (
	"fmt"

	"pulse-cli/internal/docs"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

type topicTable []docs.Topic

func (t topicTable) TableHeaders() []string { return []string{"TOPIC", "TITLE"} }

func (t topicTable) TableRows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, tp := range t {
		rows = append(rows, []string{tp.Name, tp.Title})
	}
	return rows
}

func newDocsCmd(app *App) *cobra.Command {
	var render bool

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show built-in documentation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOut(cmd, app, map[string]any{"data": topicTable(docs.Index())})
			}
			md, ok := docs.Get(args[0])
			if !ok {
				return writeErr(cmd, errNotFound("docs topic", args[0]))
			}
			if render {
				out, err := glamour.Render(md, "auto")
				if err != nil {
					return writeErr(cmd, err)
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), out)
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"topic": args[0], "markdown": md}})
		},
	}
	cmd.Flags().BoolVar(&render, "render", false, "Render the topic for the terminal instead of returning JSON")
	return cmd
}
