package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"pulse-cli/internal/model"
	"pulse-cli/internal/statusutil"
)

// ListProjects returns the caller's projects. Records with an unknown status or a duplicate id
// are dropped so they never reach the views.
func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var raw []model.Project
	if err := c.do(ctx, "projects.list", http.MethodGet, "/projects/", nil, &raw); err != nil {
		return nil, err
	}
	out := make([]model.Project, 0, len(raw))
	seen := make(map[model.ID]bool, len(raw))
	for _, p := range raw {
		np, err := normalizeProject(p)
		if err != nil {
			c.log.Warn("dropping project from list", "id", p.ID, "err", err)
			continue
		}
		if seen[np.ID] {
			c.log.Warn("dropping duplicate project id", "id", np.ID)
			continue
		}
		seen[np.ID] = true
		out = append(out, np)
	}
	return out, nil
}

func (c *Client) CreateProject(ctx context.Context, fields model.ProjectFields) (model.Project, error) {
	var p model.Project
	if err := c.do(ctx, "projects.create", http.MethodPost, "/projects/", fields, &p); err != nil {
		return model.Project{}, err
	}
	return normalizeOne("projects.create", p)
}

// UpdateProject sends a PATCH with only the non-nil fields.
func (c *Client) UpdateProject(ctx context.Context, id model.ID, fields model.ProjectFields) (model.Project, error) {
	var p model.Project
	if err := c.do(ctx, "projects.update", http.MethodPatch, projectPath(id), fields, &p); err != nil {
		return model.Project{}, err
	}
	return normalizeOne("projects.update", p)
}

func (c *Client) DeleteProject(ctx context.Context, id model.ID) error {
	return c.do(ctx, "projects.delete", http.MethodDelete, projectPath(id), nil, nil)
}

func projectPath(id model.ID) string {
	return "/projects/" + url.PathEscape(strings.TrimSpace(string(id)))
}

func normalizeOne(op string, p model.Project) (model.Project, error) {
	np, err := normalizeProject(p)
	if err != nil {
		return model.Project{}, fmt.Errorf("%s: %w: %v", op, ErrInvalidResponse, err)
	}
	return np, nil
}

func normalizeProject(p model.Project) (model.Project, error) {
	if strings.TrimSpace(string(p.ID)) == "" {
		return model.Project{}, fmt.Errorf("missing id")
	}
	st, err := statusutil.NormalizeStatus(string(p.Status))
	if err != nil {
		return model.Project{}, err
	}
	p.Status = st
	return p, nil
}
