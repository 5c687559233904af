package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane forces s to exactly width columns (ANSI-aware) and height lines, so panes
// joined with lipgloss.JoinHorizontal line up.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}
	for i, ln := range lines {
		lines[i] = fitWidth(ln, width)
	}
	return strings.Join(lines, "\n")
}

// fitWidth truncates (with an ellipsis) or pads one line to width.
func fitWidth(ln string, width int) string {
	if width <= 0 {
		return ""
	}
	w := xansi.StringWidth(ln)
	if w > width {
		if width == 1 {
			ln = xansi.Cut(ln, 0, 1)
		} else {
			ln = xansi.Truncate(ln, width-1, "") + "…"
		}
		w = xansi.StringWidth(ln)
	}
	if w < width {
		ln += strings.Repeat(" ", width-w)
	}
	return ln
}

func modalBodyWidth(width int) int {
	w := width - 12
	if w > 64 {
		w = 64
	}
	if w < 20 {
		w = 20
	}
	return w
}

// renderModalBox draws a titled box. Borders are kept off the inner content: some
// terminals show background artifacts when bordered components nest inside a colored box.
func renderModalBox(width int, title, content string) string {
	bodyW := modalBodyWidth(width)
	header := lipgloss.NewStyle().
		Bold(true).
		Width(bodyW).
		Foreground(colorSurfaceFg).
		Background(colorControlBg).
		Padding(0, 1).
		Render(title)
	body := lipgloss.NewStyle().
		Width(bodyW).
		Padding(1, 1, 0, 1).
		Render(content)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, body))
}

// overlayCenter places box in the middle of a width x height screen.
func overlayCenter(width, height int, box string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "))
}
