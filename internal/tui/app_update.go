package tui

import (
	"strings"

	"pulse-cli/internal/model"
	"pulse-cli/internal/statusutil"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const msgSessionEnded = "Your session has ended. Please sign in again."

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.search.Width = max(10, msg.Width/3)
		if m.modal == modalForm {
			m.form.setWidth(modalBodyWidth(m.width))
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case projectsLoadedMsg:
		m.inflight = max(0, m.inflight-1)
		m.refresh()
		return m, m.afterRemote()

	case opDoneMsg:
		m.inflight = max(0, m.inflight-1)
		if m.modal == modalForm && m.form.submitting && (msg.op == "create" || msg.op == "update") {
			m.form.submitting = false
			if msg.err == nil {
				m.modal = modalNone
				if msg.op == "create" {
					m.sel = boardSelection{ID: msg.id}
					m.listSel = msg.id
				}
			} else {
				m.form.err = authErrorText(msg.err)
			}
		}
		m.refresh()
		return m, m.afterRemote()

	case authDoneMsg:
		m.login.busy = false
		if msg.err != nil {
			m.login.err = authErrorText(msg.err)
			return m, nil
		}
		if m.sess != nil && m.sess.Authenticated() {
			m.screen = screenMain
			m.login = newLoginForm()
			m.inflight++
			return m, m.loadCmd()
		}
		m.loggingOut = false
		if m.screen != screenLogin {
			m.toLoginScreen("")
		}
		return m, textinput.Blink

	case sessionChangedMsg:
		if msg.authenticated || m.screen != screenMain {
			return m, nil
		}
		reason := msgSessionEnded
		if m.loggingOut {
			reason = ""
		}
		m.toLoginScreen(reason)
		return m, textinput.Blink

	case expireTickMsg:
		if msg.seq != m.expirySeq || m.coll == nil {
			return m, nil
		}
		m.coll.Notifications().Expire()
		return m, m.scheduleExpiry()

	case tea.MouseMsg:
		if m.screen != screenMain || m.modal != modalNone || m.mode != modeBoard {
			return m, nil
		}
		return m.updateMouse(msg)

	case tea.KeyMsg:
		if m.screen == screenLogin {
			return m.updateLogin(msg)
		}
		if m.modal != modalNone {
			return m.updateModal(msg)
		}
		return m.updateMain(msg)
	}

	return m.passThrough(msg)
}

// afterRemote runs after every controller round trip. A 401 has already torn the session
// down; when the sign-out was not delivered as a sessionChangedMsg (no running program),
// the board is replaced by the sign-in screen here.
func (m *appModel) afterRemote() tea.Cmd {
	if m.sess != nil && m.screen == screenMain && !m.sess.Authenticated() {
		m.toLoginScreen(msgSessionEnded)
		return textinput.Blink
	}
	return m.scheduleExpiry()
}

func (m *appModel) toLoginScreen(reason string) {
	m.screen = screenLogin
	m.modal = modalNone
	m.searching = false
	m.drag.DragCancel()
	m.dragCol = -1
	m.mouseDrag = false
	if m.coll != nil {
		m.coll.Reset()
	}
	m.refresh()
	m.login = newLoginForm()
	m.login.err = reason
}

func (m appModel) passThrough(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.screen == screenLogin:
		m.login, cmd = m.login.update(msg)
	case m.modal == modalForm:
		m.form, cmd = m.form.update(msg)
	case m.searching:
		m.search, cmd = m.search.Update(msg)
	}
	return m, cmd
}

func (m appModel) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "ctrl+r":
		return m, m.login.toggleRegister()
	case "tab", "down":
		return m, m.login.setFocus(m.login.focus + 1)
	case "shift+tab", "up":
		return m, m.login.setFocus(m.login.focus - 1)
	case "enter":
		if m.login.busy || m.sess == nil {
			return m, nil
		}
		email := strings.TrimSpace(m.login.email.Value())
		pw := m.login.password.Value()
		if email == "" || pw == "" {
			m.login.err = "Email and password are required."
			return m, nil
		}
		m.login.busy = true
		m.login.err = ""
		return m, m.authCmd(m.login.register, email, pw, m.login.name.Value())
	}
	var cmd tea.Cmd
	m.login, cmd = m.login.update(msg)
	return m, cmd
}

func (m appModel) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.updateSearch(msg)
	}
	if m.drag.Active() && !m.mouseDrag {
		return m.updateKeyboardDrag(msg)
	}

	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, k.Mode):
		m.mode = m.mode.next()
		return m, m.savePrefsCmd()
	case key.Matches(msg, k.Board):
		m.mode = modeBoard
		return m, m.savePrefsCmd()
	case key.Matches(msg, k.List):
		m.mode = modeList
		return m, m.savePrefsCmd()
	case key.Matches(msg, k.Stats):
		m.mode = modeStats
		return m, m.savePrefsCmd()
	case key.Matches(msg, k.Search):
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(msg, k.Filter):
		m.filter = m.filter.Next()
		m.refresh()
		return m, m.savePrefsCmd()
	case key.Matches(msg, k.Clear):
		m.filter = statusutil.FilterAll
		m.search.SetValue("")
		m.refresh()
		return m, m.savePrefsCmd()
	case key.Matches(msg, k.Reload):
		if m.coll.Loading() {
			return m, nil
		}
		m.inflight++
		return m, m.loadCmd()
	case key.Matches(msg, k.Dismiss):
		m.coll.Notifications().DismissOldest()
		return m, m.scheduleExpiry()
	case key.Matches(msg, k.Logout):
		if m.sess == nil {
			return m, nil
		}
		m.loggingOut = true
		return m, m.logoutCmd()
	case key.Matches(msg, k.New):
		st := model.StatusNotStarted
		if m.mode == modeBoard && len(m.board.cols) > 0 {
			st = m.board.cols[m.board.clamp(m.sel).Col].status
		}
		m.form = newProjectForm(nil, st)
		m.form.setWidth(modalBodyWidth(m.width))
		m.modal = modalForm
		return m, textinput.Blink
	}

	if m.mode == modeStats {
		return m, nil
	}

	p, hasSel := m.selectedProject()
	switch {
	case key.Matches(msg, k.Edit):
		if !hasSel || m.coll.RecordBusy(p.ID) {
			return m, nil
		}
		m.form = newProjectForm(&p, p.Status)
		m.form.setWidth(modalBodyWidth(m.width))
		m.modal = modalForm
		return m, textinput.Blink
	case key.Matches(msg, k.Delete):
		if !hasSel || m.coll.RecordBusy(p.ID) {
			return m, nil
		}
		m.pendingDelete = p
		m.confirmFocus = confirmFocusCancel
		m.modal = modalConfirmDelete
		return m, nil
	case key.Matches(msg, k.Preview):
		if hasSel {
			m.modal = modalPreview
		}
		return m, nil
	case key.Matches(msg, k.Advance), key.Matches(msg, k.Previous):
		if !hasSel || m.coll.RecordBusy(p.ID) {
			return m, nil
		}
		delta := 1
		if key.Matches(msg, k.Previous) {
			delta = -1
		}
		i := statusutil.Index(p.Status) + delta
		if i < 0 || i >= len(model.Statuses) {
			return m, nil
		}
		m.inflight++
		return m, m.changeStatusCmd(p.ID, model.Statuses[i])
	case key.Matches(msg, k.Grab):
		if m.mode != modeBoard || !hasSel {
			return m, nil
		}
		m.sel = m.board.clamp(m.sel)
		m.drag.DragStart(p)
		m.dragCol = m.sel.Col
		m.drag.DragEnter(p.Status)
		return m, nil
	}

	m.navigate(msg)
	return m, nil
}

func (m *appModel) navigate(msg tea.KeyMsg) {
	k := m.keys
	if m.mode == modeList {
		i := m.listIndex()
		switch {
		case key.Matches(msg, k.Up):
			i--
		case key.Matches(msg, k.Down):
			i++
		default:
			return
		}
		if i >= 0 && i < len(m.filtered) {
			m.listSel = m.filtered[i].ID
		}
		return
	}

	sel := m.board.clamp(m.sel)
	switch {
	case key.Matches(msg, k.Up):
		sel.Row--
	case key.Matches(msg, k.Down):
		sel.Row++
	case key.Matches(msg, k.Left):
		sel.Col--
	case key.Matches(msg, k.Right):
		sel.Col++
	default:
		return
	}
	if sel.Row < 0 {
		sel.Row = 0
	}
	sel.ID = ""
	m.sel = m.board.clamp(sel)
}

func (m appModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.searching = false
		m.search.Blur()
		return m, m.savePrefsCmd()
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.refresh()
	return m, cmd
}

func (m appModel) updateKeyboardDrag(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Cancel):
		m.drag.DragCancel()
		m.dragCol = -1
	case key.Matches(msg, k.Left), key.Matches(msg, k.Right):
		col := m.dragCol
		if key.Matches(msg, k.Left) {
			col--
		} else {
			col++
		}
		m.retarget(col)
	case key.Matches(msg, k.Grab), key.Matches(msg, k.Drop):
		if m.dragCol < 0 {
			m.drag.DragCancel()
			return m, nil
		}
		return m, m.finishDrag(m.board.cols[m.dragCol].status)
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// retarget moves the drop target to col, emitting leave/enter like a pointer would.
// col outside the board means "no target".
func (m *appModel) retarget(col int) {
	if col >= len(m.board.cols) || col < -1 {
		return
	}
	if col == m.dragCol {
		return
	}
	if m.dragCol >= 0 {
		m.drag.DragLeave()
	}
	if col >= 0 {
		m.drag.DragEnter(m.board.cols[col].status)
	}
	m.dragCol = col
}

// finishDrag resolves the drop synchronously and applies it as a command, off the event loop.
func (m *appModel) finishDrag(status model.Status) tea.Cmd {
	ch, ok := m.drag.Release(status)
	m.dragCol = -1
	m.mouseDrag = false
	if !ok {
		return nil
	}
	m.sel = boardSelection{ID: ch.ID}
	m.inflight++
	return m.changeStatusCmd(ch.ID, ch.To)
}

func (m appModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	x, y := msg.X, msg.Y-chromeTop
	h := m.contentHeight()

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		ci, ri, ok := m.board.cardAt(x, y, m.width, h, m.sel)
		if !ok {
			return m, nil
		}
		p := m.board.cols[ci].items[ri]
		m.sel = boardSelection{Col: ci, Row: ri, ID: p.ID}
		if m.coll.RecordBusy(p.ID) {
			return m, nil
		}
		m.drag.DragStart(p)
		m.drag.DragEnter(p.Status)
		m.dragCol = ci
		m.mouseDrag = true

	case tea.MouseActionMotion:
		if !m.mouseDrag {
			return m, nil
		}
		col := -1
		if y >= 0 && y < h {
			col = m.board.columnAt(x, m.width)
		}
		m.retarget(col)

	case tea.MouseActionRelease:
		if !m.mouseDrag {
			return m, nil
		}
		m.mouseDrag = false
		if m.dragCol < 0 {
			m.drag.DragCancel()
			return m, nil
		}
		return m, m.finishDrag(m.board.cols[m.dragCol].status)
	}
	return m, nil
}

func (m appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalPreview:
		switch msg.String() {
		case "esc", "p", "q", "enter":
			m.modal = modalNone
		}
		return m, nil

	case modalConfirmDelete:
		switch msg.String() {
		case "tab", "shift+tab", "left", "right", "h", "l":
			m.confirmFocus = m.confirmFocus.toggle()
			return m, nil
		case "esc", "n", "ctrl+g":
			m.modal = modalNone
			return m, nil
		case "y":
			m.confirmFocus = confirmFocusConfirm
		case "enter":
		default:
			return m, nil
		}
		m.modal = modalNone
		if m.confirmFocus != confirmFocusConfirm {
			return m, nil
		}
		m.inflight++
		return m, m.deleteCmd(m.pendingDelete.ID)

	case modalForm:
		return m.updateForm(msg)
	}
	return m, nil
}

func (m appModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form.submitting {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.modal = modalNone
		return m, nil
	case "tab":
		return m, m.form.setFocus(m.form.focus + 1)
	case "shift+tab":
		return m, m.form.setFocus(m.form.focus - 1)
	case "left", "right":
		if m.form.focus == fieldStatus {
			if msg.String() == "left" {
				m.form.cycleStatus(-1)
			} else {
				m.form.cycleStatus(1)
			}
			return m, nil
		}
	case "ctrl+s":
		return m.submitForm()
	case "enter":
		if m.form.focus != fieldDescription {
			return m.submitForm()
		}
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m appModel) submitForm() (tea.Model, tea.Cmd) {
	fields, err := m.form.fields()
	if err != nil {
		m.form.err = err.Error()
		return m, nil
	}
	m.form.err = ""
	if !m.form.editing {
		m.form.submitting = true
		m.inflight++
		return m, m.createCmd(fields)
	}
	if fields.Empty() {
		m.modal = modalNone
		return m, nil
	}
	m.form.submitting = true
	m.inflight++
	return m, m.updateCmd(m.form.original.ID, fields)
}
