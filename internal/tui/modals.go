package tui

import (
	"strings"

	"pulse-cli/internal/collection"
	"pulse-cli/internal/model"
	"pulse-cli/internal/statusutil"

	"github.com/charmbracelet/lipgloss"
)

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

func (f confirmModalFocus) toggle() confirmModalFocus {
	return 1 - f
}

func (m appModel) modalView() (string, bool) {
	switch m.modal {
	case modalForm:
		return m.form.view(m.width), true
	case modalConfirmDelete:
		return renderDeleteConfirm(m.width, m.pendingDelete, m.confirmFocus), true
	case modalPreview:
		p, ok := m.selectedProject()
		if !ok {
			return "", false
		}
		return renderPreview(p, m.width, m.height), true
	}
	return "", false
}

// renderDeleteConfirm asks before a project is deleted. Cancel is focused first.
func renderDeleteConfirm(width int, p model.Project, focus confirmModalFocus) string {
	bodyW := modalBodyWidth(width)
	button := func(label string, on bool, danger bool) string {
		st := lipgloss.NewStyle().Padding(0, 2).Foreground(colorSurfaceFg).Background(colorControlBg)
		if on {
			st = st.Bold(true).Foreground(colorSelectedFg).Background(colorSelectedBg)
			if danger {
				st = st.Foreground(colorErrorFg)
			}
		}
		return st.Render(label)
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		button("Delete", focus == confirmFocusConfirm, true),
		"  ",
		button("Cancel", focus == confirmFocusCancel, false),
	)
	body := strings.Join([]string{
		lipgloss.NewStyle().Width(bodyW).Render(collection.ConfirmDeletePrompt(p)),
		"",
		buttons,
		"",
		styleMuted().Width(bodyW).Render("y: delete   n/esc: keep   tab: switch   enter: choose"),
	}, "\n")
	return renderModalBox(width, "Delete project", body)
}

func renderPreview(p model.Project, width, height int) string {
	bodyW := modalBodyWidth(width)
	desc := renderMarkdown(p.DescriptionText(), bodyW)
	if desc == "" {
		desc = styleMuted().Render("No description")
	}
	body := styleStatus(p.Status).Render("● "+statusutil.Label(p.Status)) + "\n\n" + desc
	if maxH := height - 8; maxH > 3 && lipgloss.Height(body) > maxH {
		body = normalizePane(body, bodyW, maxH)
	}
	body += "\n\n" + styleMuted().Render("esc: close")
	return renderModalBox(width, p.Name, body)
}

// renderField draws a labelled single-line input. Input views are flattened to one line and
// clipped to the body width so typing never wraps the modal.
func renderField(bodyW int, label, inputView string, focused bool) string {
	bodyW = max(bodyW, 10)
	flat := strings.NewReplacer("\n", " ", "\r", " ").Replace(inputView)

	bg := colorInputBg
	if focused {
		bg = colorSelectedBg
	}
	line := lipgloss.NewStyle().Background(bg).Render(fitWidth(" "+flat, bodyW))
	return styleMuted().Render(label) + "\n" + line
}
