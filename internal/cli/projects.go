package cli

import (
	"errors"
	"strings"

	"pulse-cli/internal/collection"
	"pulse-cli/internal/model"
	"pulse-cli/internal/statusutil"
	"pulse-cli/internal/views"

	"github.com/spf13/cobra"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project", "p"},
		Short:   "Project commands",
	}
	cmd.AddCommand(newProjectsListCmd(app))
	cmd.AddCommand(newProjectsShowCmd(app))
	cmd.AddCommand(newProjectsCreateCmd(app))
	cmd.AddCommand(newProjectsUpdateCmd(app))
	cmd.AddCommand(newProjectsStatusCmd(app))
	cmd.AddCommand(newProjectsDeleteCmd(app))
	return cmd
}

// loadProjects opens a signed-in runtime and fetches the collection.
func loadProjects(cmd *cobra.Command, app *App) (*runtime, error) {
	rt, err := openRuntime(cmd.Context(), app)
	if err != nil {
		return nil, err
	}
	if err := rt.requireSession(); err != nil {
		_ = rt.Close()
		return nil, err
	}
	if err := rt.coll.Load(cmd.Context()); err != nil {
		err = rt.controllerError(err)
		_ = rt.Close()
		return nil, err
	}
	return rt, nil
}

func newProjectsListCmd(app *App) *cobra.Command {
	var status string
	var search string
	var group bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
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

			all := rt.coll.Projects()
			filtered := views.Filter(all, filter, search)
			meta := views.Summarize(all, filter, search)
			if group {
				return writeOut(cmd, app, map[string]any{"data": groupTable(views.GroupByStatus(filtered)), "meta": meta})
			}
			return writeOut(cmd, app, map[string]any{"data": projectTable(filtered), "meta": meta})
		},
	}

	cmd.Flags().StringVar(&status, "status", "all", "Status filter (all|not_started|in_progress|completed)")
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive match on name or description")
	cmd.Flags().BoolVar(&group, "group", false, "Group by status (board columns)")
	return cmd
}

func newProjectsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadProjects(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer rt.Close()

			p, ok := rt.coll.Project(model.ID(args[0]))
			if !ok {
				return writeErr(cmd, errNotFound("project", args[0]))
			}
			return writeOut(cmd, app, map[string]any{"data": p})
		},
	}
}

func newProjectsCreateCmd(app *App) *cobra.Command {
	var name string
	var description string
	var status string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := model.ValidateName(name); err != nil {
				return writeErr(cmd, err)
			}
			fields := model.ProjectFields{Name: model.StrPtr(strings.TrimSpace(name))}
			if d := strings.TrimSpace(description); d != "" {
				fields.Description = model.StrPtr(d)
			}
			if cmd.Flags().Changed("status") {
				st, err := statusutil.NormalizeStatus(status)
				if err != nil {
					return writeErr(cmd, err)
				}
				fields.Status = model.StatusPtr(st)
			}

			rt, err := openRuntime(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer rt.Close()
			if err := rt.requireSession(); err != nil {
				return writeErr(cmd, err)
			}

			p, err := rt.coll.Create(cmd.Context(), fields)
			if err != nil {
				return writeErr(cmd, rt.controllerError(err))
			}
			return writeOut(cmd, app, map[string]any{"data": p})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name (3-100 characters)")
	cmd.Flags().StringVar(&description, "description", "", "Project description")
	cmd.Flags().StringVar(&status, "status", string(model.StatusNotStarted), "Initial status")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newProjectsUpdateCmd(app *App) *cobra.Command {
	var name string
	var description string
	var status string

	cmd := &cobra.Command{
		Use:   "update <project-id>",
		Short: "Update a project's name, description or status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fields model.ProjectFields
			if cmd.Flags().Changed("name") {
				if err := model.ValidateName(name); err != nil {
					return writeErr(cmd, err)
				}
				fields.Name = model.StrPtr(strings.TrimSpace(name))
			}
			if cmd.Flags().Changed("description") {
				fields.Description = model.StrPtr(strings.TrimSpace(description))
			}
			if cmd.Flags().Changed("status") {
				st, err := statusutil.NormalizeStatus(status)
				if err != nil {
					return writeErr(cmd, err)
				}
				fields.Status = model.StatusPtr(st)
			}
			if fields.Empty() {
				return writeErr(cmd, errors.New("nothing to update; pass --name, --description or --status"))
			}

			rt, err := loadProjects(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer rt.Close()

			p, err := rt.coll.Update(cmd.Context(), model.ID(args[0]), fields)
			if err != nil {
				return writeErr(cmd, rt.controllerError(err))
			}
			return writeOut(cmd, app, map[string]any{"data": p})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&description, "description", "", "New description (empty clears it)")
	cmd.Flags().StringVar(&status, "status", "", "New status")
	return cmd
}

func newProjectsStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <project-id> <status>",
		Short: "Move a project to another status (todo|doing|done or the API names)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := statusutil.NormalizeStatus(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			rt, err := loadProjects(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer rt.Close()

			id := model.ID(args[0])
			if err := rt.coll.ChangeStatus(cmd.Context(), id, st); err != nil {
				if errors.Is(err, collection.ErrNotFound) {
					return writeErr(cmd, errNotFound("project", args[0]))
				}
				return writeErr(cmd, rt.controllerError(err))
			}
			p, _ := rt.coll.Project(id)
			return writeOut(cmd, app, map[string]any{"data": p})
		},
	}
}

func newProjectsDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project (asks for confirmation unless --yes)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadProjects(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer rt.Close()

			id := model.ID(args[0])
			deleted, err := rt.coll.Delete(cmd.Context(), id, func(p model.Project) bool {
				return yes || confirm(cmd, collection.ConfirmDeletePrompt(p))
			})
			if err != nil {
				if errors.Is(err, collection.ErrNotFound) {
					return writeErr(cmd, errNotFound("project", args[0]))
				}
				return writeErr(cmd, rt.controllerError(err))
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": id, "deleted": deleted}})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
