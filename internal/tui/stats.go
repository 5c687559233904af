package tui

import (
	"fmt"
	"strings"

	"pulse-cli/internal/model"
	"pulse-cli/internal/statusutil"
	"pulse-cli/internal/views"

	"github.com/charmbracelet/lipgloss"
)

// renderStats shows the whole collection's status breakdown, independent of filters.
func renderStats(all []model.Project, width, height int) string {
	s := views.ComputeStats(all)

	barW := width - 36
	if barW > 40 {
		barW = 40
	}
	if barW < 5 {
		barW = 5
	}

	lines := []string{
		lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf(" Total projects: %d", s.Total)),
		"",
	}
	for _, st := range model.Statuses {
		rate := s.Rate(st)
		filled := rate * barW / 100
		bar := styleStatus(st).Render(strings.Repeat("█", filled)) + styleMuted().Render(strings.Repeat("░", barW-filled))
		lines = append(lines, fmt.Sprintf(" %-12s %4d  %s %3d%%", statusutil.Label(st), s.Count(st), bar, rate))
	}
	return normalizePane(strings.Join(lines, "\n"), width, height)
}
