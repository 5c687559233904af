package tui

import (
	"fmt"
	"strings"

	"pulse-cli/internal/model"
	"pulse-cli/internal/statusutil"

	"github.com/charmbracelet/lipgloss"
)

// renderList draws the filtered projects as one row each, scrolled to keep sel visible.
func renderList(items []model.Project, sel model.ID, width, height int) string {
	if len(items) == 0 {
		return normalizePane(styleMuted().Render(" No projects match the current filters."), width, height)
	}

	selIdx := 0
	for i, p := range items {
		if p.ID == sel {
			selIdx = i
			break
		}
	}
	off := 0
	if selIdx >= height {
		off = selIdx - height + 1
	}

	statusW := 14
	nameW := width / 3
	if nameW < 16 {
		nameW = 16
	}
	descW := width - nameW - statusW - 6

	selStyle := lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
	lines := make([]string, 0, height)
	for i := off; i < len(items) && len(lines) < height; i++ {
		p := items[i]
		marker := "  "
		if i == selIdx {
			marker = "› "
		}
		row := fmt.Sprintf("%s%s  %s  %s",
			marker,
			fitWidth(p.Name, nameW),
			styleStatus(p.Status).Render(fitWidth(statusutil.Label(p.Status), statusW)),
			styleMuted().Render(fitWidth(firstLine(p.DescriptionText()), max(0, descW))),
		)
		if i == selIdx {
			row = selStyle.Render(fitWidth(row, width))
		}
		lines = append(lines, row)
	}
	return normalizePane(strings.Join(lines, "\n"), width, height)
}
