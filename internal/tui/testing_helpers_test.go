package tui

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"pulse-cli/internal/collection"
	"pulse-cli/internal/model"
	"pulse-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// memRepo is an in-memory project API.
type memRepo struct {
	mu    sync.Mutex
	items []model.Project
	next  int
}

func (r *memRepo) ListProjects(context.Context) ([]model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Project(nil), r.items...), nil
}

func (r *memRepo) CreateProject(_ context.Context, f model.ProjectFields) (model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	p := model.Project{ID: model.ID(fmt.Sprintf("new-%d", r.next)), Name: *f.Name, Description: f.Description, Status: model.StatusNotStarted}
	if f.Status != nil {
		p.Status = *f.Status
	}
	r.items = append(r.items, p)
	return p, nil
}

func (r *memRepo) UpdateProject(_ context.Context, id model.ID, f model.ProjectFields) (model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID != id {
			continue
		}
		if f.Name != nil {
			r.items[i].Name = *f.Name
		}
		if f.Description != nil {
			r.items[i].Description = f.Description
		}
		if f.Status != nil {
			r.items[i].Status = *f.Status
		}
		return r.items[i], nil
	}
	return model.Project{}, fmt.Errorf("no project %s", id)
}

func (r *memRepo) DeleteProject(_ context.Context, id model.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no project %s", id)
}

func (r *memRepo) get(id model.ID) (model.Project, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.ID == id {
			return p, true
		}
	}
	return model.Project{}, false
}

type memPrefs struct {
	p     *store.UIPrefs
	saved []*store.UIPrefs
}

func (s *memPrefs) LoadUIPrefs(context.Context) (*store.UIPrefs, error) { return s.p, nil }

func (s *memPrefs) SaveUIPrefs(_ context.Context, p *store.UIPrefs) error {
	s.saved = append(s.saved, p)
	return nil
}

func newTestApp(t *testing.T, projects ...model.Project) (appModel, *memRepo) {
	t.Helper()
	repo := &memRepo{items: projects}
	c := collection.New(collection.Options{Repo: repo})
	ctx := context.Background()
	if err := c.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	m := newAppModel(ctx, Options{Collection: c})
	m.width = 100
	m.height = 30
	return m, repo
}

func step(t *testing.T, m appModel, msg tea.Msg) (appModel, tea.Cmd) {
	t.Helper()
	nm, cmd := m.Update(msg)
	out, ok := nm.(appModel)
	if !ok {
		t.Fatalf("unexpected model type %T", nm)
	}
	return out, cmd
}

// run executes cmd and feeds its message back, the way the program loop would.
func run(t *testing.T, m appModel, cmd tea.Cmd) appModel {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	m, _ = step(t, m, cmd())
	return m
}

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func keySpace() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}} }

func proj(id, name string, st model.Status) model.Project {
	return model.Project{ID: model.ID(id), Name: name, Status: st}
}
