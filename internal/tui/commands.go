package tui

import (
	"time"

	"pulse-cli/internal/api"
	"pulse-cli/internal/model"
	"pulse-cli/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

type projectsLoadedMsg struct{ err error }

// opDoneMsg reports a finished controller mutation.
type opDoneMsg struct {
	op  string
	id  model.ID
	err error
}

type authDoneMsg struct{ err error }

type expireTickMsg struct{ seq int }

// sessionChangedMsg is delivered for every sign-in/sign-out transition of the session.
type sessionChangedMsg struct{ authenticated bool }

// watchSession forwards session transitions to send (the running program's Send). The
// returned func unsubscribes.
func watchSession(s *session.Manager, send func(tea.Msg)) func() {
	return s.OnChange(func(st session.State) {
		send(sessionChangedMsg{authenticated: st.Authenticated})
	})
}

func (m appModel) loadCmd() tea.Cmd {
	c, ctx := m.coll, m.ctx
	return func() tea.Msg {
		return projectsLoadedMsg{err: c.Load(ctx)}
	}
}

func (m appModel) createCmd(fields model.ProjectFields) tea.Cmd {
	c, ctx := m.coll, m.ctx
	return func() tea.Msg {
		p, err := c.Create(ctx, fields)
		return opDoneMsg{op: "create", id: p.ID, err: err}
	}
}

func (m appModel) updateCmd(id model.ID, fields model.ProjectFields) tea.Cmd {
	c, ctx := m.coll, m.ctx
	return func() tea.Msg {
		_, err := c.Update(ctx, id, fields)
		return opDoneMsg{op: "update", id: id, err: err}
	}
}

func (m appModel) changeStatusCmd(id model.ID, status model.Status) tea.Cmd {
	c, ctx := m.coll, m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: "status", id: id, err: c.ChangeStatus(ctx, id, status)}
	}
}

// deleteCmd runs after the confirm modal was accepted.
func (m appModel) deleteCmd(id model.ID) tea.Cmd {
	c, ctx := m.coll, m.ctx
	return func() tea.Msg {
		_, err := c.Delete(ctx, id, func(model.Project) bool { return true })
		return opDoneMsg{op: "delete", id: id, err: err}
	}
}

func (m appModel) authCmd(register bool, email, password, name string) tea.Cmd {
	s, ctx := m.sess, m.ctx
	return func() tea.Msg {
		var err error
		if register {
			_, err = s.Register(ctx, email, password, name)
		} else {
			_, err = s.Login(ctx, email, password)
		}
		return authDoneMsg{err: err}
	}
}

func (m appModel) logoutCmd() tea.Cmd {
	s, ctx := m.sess, m.ctx
	return func() tea.Msg {
		_ = s.Logout(ctx)
		return authDoneMsg{}
	}
}

// savePrefsCmd persists the restorable UI state; failures are only logged.
func (m appModel) savePrefsCmd() tea.Cmd {
	if m.prefs == nil {
		return nil
	}
	p, prefs, ctx, log := m.currentPrefs(), m.prefs, m.ctx, m.log
	return func() tea.Msg {
		if err := prefs.SaveUIPrefs(ctx, p); err != nil {
			log.Debug("save ui prefs failed", "err", err)
		}
		return nil
	}
}

// scheduleExpiry arms one tick for the oldest notification. Older ticks are ignored by seq.
func (m *appModel) scheduleExpiry() tea.Cmd {
	if m.coll == nil {
		return nil
	}
	m.expirySeq++
	at, ok := m.coll.Notifications().NextExpiry()
	if !ok {
		return nil
	}
	d := time.Until(at)
	if d < 10*time.Millisecond {
		d = 10 * time.Millisecond
	}
	seq := m.expirySeq
	return tea.Tick(d, func(time.Time) tea.Msg { return expireTickMsg{seq: seq} })
}

// authErrorText is the message shown on the sign-in screen.
func authErrorText(err error) string {
	if msg, ok := api.ServerMessage(err); ok {
		return msg
	}
	switch {
	case api.IsNetwork(err):
		return "Network error. Please check your connection and try again."
	case api.IsServer(err):
		return "Server error. Please try again later."
	}
	return err.Error()
}
