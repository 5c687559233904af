package tui

import (
	"strings"

	"pulse-cli/internal/model"
	"pulse-cli/internal/statusutil"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type formField int

const (
	fieldName formField = iota
	fieldDescription
	fieldStatus
	formFieldCount
)

// projectForm is the create/edit modal.
type projectForm struct {
	editing  bool
	original model.Project

	name   textinput.Model
	desc   textarea.Model
	status model.Status
	focus  formField
	err    string
	// submitting is set while the request is in flight; the form closes on success.
	submitting bool
}

func newProjectForm(p *model.Project, status model.Status) projectForm {
	name := textinput.New()
	name.Placeholder = "Project name"
	name.CharLimit = model.NameMaxLen + 20
	name.Width = 40

	desc := textarea.New()
	desc.Placeholder = "Description (markdown)"
	desc.ShowLineNumbers = false
	desc.SetHeight(4)
	desc.SetWidth(40)

	f := projectForm{name: name, desc: desc, status: status}
	if !status.Valid() {
		f.status = model.StatusNotStarted
	}
	if p != nil {
		f.editing = true
		f.original = *p
		f.name.SetValue(p.Name)
		f.desc.SetValue(p.DescriptionText())
		f.status = p.Status
	}
	f.setFocus(fieldName)
	return f
}

func (f *projectForm) setFocus(ff formField) tea.Cmd {
	f.focus = (ff + formFieldCount) % formFieldCount
	f.name.Blur()
	f.desc.Blur()
	switch f.focus {
	case fieldName:
		return f.name.Focus()
	case fieldDescription:
		return f.desc.Focus()
	}
	return nil
}

func (f *projectForm) setWidth(bodyW int) {
	f.name.Width = bodyW - 4
	f.desc.SetWidth(bodyW - 2)
}

func (f *projectForm) cycleStatus(delta int) {
	i := statusutil.Index(f.status)
	n := len(model.Statuses)
	f.status = model.Statuses[((i+delta)%n+n)%n]
}

// fields validates the form. When editing, only changed fields are returned.
func (f projectForm) fields() (model.ProjectFields, error) {
	name := f.name.Value()
	if err := model.ValidateName(name); err != nil {
		return model.ProjectFields{}, err
	}
	name = strings.TrimSpace(name)
	desc := strings.TrimSpace(f.desc.Value())

	if !f.editing {
		out := model.ProjectFields{Name: model.StrPtr(name), Status: model.StatusPtr(f.status)}
		if desc != "" {
			out.Description = model.StrPtr(desc)
		}
		return out, nil
	}

	var out model.ProjectFields
	if name != f.original.Name {
		out.Name = model.StrPtr(name)
	}
	if desc != f.original.DescriptionText() {
		out.Description = model.StrPtr(desc)
	}
	if f.status != f.original.Status {
		out.Status = model.StatusPtr(f.status)
	}
	return out, nil
}

func (f projectForm) update(msg tea.Msg) (projectForm, tea.Cmd) {
	var cmd tea.Cmd
	switch f.focus {
	case fieldName:
		f.name, cmd = f.name.Update(msg)
	case fieldDescription:
		f.desc, cmd = f.desc.Update(msg)
	}
	return f, cmd
}

func (f projectForm) view(width int) string {
	bodyW := modalBodyWidth(width)
	title := "New project"
	if f.editing {
		title = "Edit project"
	}

	statusLine := ""
	for _, s := range model.Statuses {
		lbl := " " + statusutil.Label(s) + " "
		if s == f.status {
			lbl = styleStatus(s).Reverse(true).Render(lbl)
		} else {
			lbl = styleMuted().Render(lbl)
		}
		statusLine += lbl + " "
	}
	if f.focus == fieldStatus {
		statusLine = lipgloss.NewStyle().Background(colorSelectedBg).Render("‹") + " " + statusLine + lipgloss.NewStyle().Background(colorSelectedBg).Render("›")
	}

	parts := []string{
		renderField(bodyW, "Name", f.name.View(), f.focus == fieldName),
		"",
		styleMuted().Render("Description"),
		f.desc.View(),
		"",
		styleMuted().Render("Status"),
		statusLine,
	}
	if f.err != "" {
		parts = append(parts, "", lipgloss.NewStyle().Foreground(colorErrorFg).Render(f.err))
	}
	hint := "tab: next field   ←/→: status   ctrl+s: save   esc: cancel"
	if f.submitting {
		hint = "saving…"
	}
	parts = append(parts, "", styleMuted().Width(bodyW).Render(hint))
	return renderModalBox(width, title, strings.Join(parts, "\n"))
}

// loginForm is the unauthenticated screen.
type loginForm struct {
	register bool
	email    textinput.Model
	password textinput.Model
	name     textinput.Model
	focus    int
	err      string
	busy     bool
}

func newLoginForm() loginForm {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Width = 36

	pw := textinput.New()
	pw.Placeholder = "password"
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'
	pw.Width = 36

	name := textinput.New()
	name.Placeholder = "Full name (optional)"
	name.CharLimit = 100
	name.Width = 36

	f := loginForm{email: email, password: pw, name: name}
	f.setFocus(0)
	return f
}

func (f *loginForm) inputs() []*textinput.Model {
	if f.register {
		return []*textinput.Model{&f.email, &f.password, &f.name}
	}
	return []*textinput.Model{&f.email, &f.password}
}

func (f *loginForm) setFocus(i int) tea.Cmd {
	in := f.inputs()
	f.focus = (i + len(in)) % len(in)
	var cmd tea.Cmd
	for j, ti := range in {
		if j == f.focus {
			cmd = ti.Focus()
		} else {
			ti.Blur()
		}
	}
	if !f.register {
		f.name.Blur()
	}
	return cmd
}

func (f *loginForm) toggleRegister() tea.Cmd {
	f.register = !f.register
	f.err = ""
	return f.setFocus(f.focus)
}

func (f loginForm) update(msg tea.Msg) (loginForm, tea.Cmd) {
	in := f.inputs()
	var cmd tea.Cmd
	*in[f.focus], cmd = in[f.focus].Update(msg)
	return f, cmd
}

func (f loginForm) view(width, height int) string {
	bodyW := modalBodyWidth(width)
	title := "Sign in to Project Pulse"
	if f.register {
		title = "Create your account"
	}
	parts := []string{
		renderField(bodyW, "Email", f.email.View(), f.focus == 0),
		"",
		renderField(bodyW, "Password", f.password.View(), f.focus == 1),
	}
	if f.register {
		parts = append(parts, "", renderField(bodyW, "Full name", f.name.View(), f.focus == 2))
	}
	if f.err != "" {
		parts = append(parts, "", lipgloss.NewStyle().Foreground(colorErrorFg).Width(bodyW).Render(f.err))
	}
	hint := "enter: sign in   tab: next   ctrl+r: create account   esc: quit"
	if f.register {
		hint = "enter: register   tab: next   ctrl+r: back to sign in   esc: quit"
	}
	if f.busy {
		hint = "working…"
	}
	parts = append(parts, "", styleMuted().Width(bodyW).Render(hint))
	return overlayCenter(width, height, renderModalBox(width, title, strings.Join(parts, "\n")))
}
