package tui

import (
	"fmt"
	"strings"

	"pulse-cli/internal/model"
	"pulse-cli/internal/statusutil"
	"pulse-cli/internal/views"

	"github.com/charmbracelet/lipgloss"
)

const (
	// Column header line plus a spacer line.
	boardHeaderRows = 2
	// Title, description snippet, spacer.
	cardHeight = 3
	columnGap  = 2
)

type boardSelection struct {
	Col int
	Row int
	// ID is the stable selected project id, preferred over Row so focus follows a project
	// across status changes and reloads.
	ID model.ID
}

type boardCol struct {
	status model.Status
	label  string
	items  []model.Project
}

type board struct {
	cols []boardCol
}

// dragView is what the renderer needs to know about an in-progress drag.
type dragView struct {
	active   bool
	id       model.ID
	hovered  model.Status
	hasHover bool
}

func buildBoard(g views.Groups) board {
	cols := make([]boardCol, 0, len(model.Statuses))
	for _, s := range model.Statuses {
		cols = append(cols, boardCol{status: s, label: statusutil.Label(s), items: g.Bucket(s)})
	}
	return board{cols: cols}
}

func (b board) indexOf(id model.ID) (int, int, bool) {
	if id == "" {
		return 0, 0, false
	}
	for ci := range b.cols {
		for ri := range b.cols[ci].items {
			if b.cols[ci].items[ri].ID == id {
				return ci, ri, true
			}
		}
	}
	return 0, 0, false
}

func (b board) clamp(sel boardSelection) boardSelection {
	if len(b.cols) == 0 {
		return boardSelection{Row: -1}
	}
	if ci, ri, ok := b.indexOf(sel.ID); ok {
		sel.Col, sel.Row = ci, ri
	} else {
		sel.ID = ""
	}
	if sel.Col < 0 {
		sel.Col = 0
	}
	if sel.Col >= len(b.cols) {
		sel.Col = len(b.cols) - 1
	}
	n := len(b.cols[sel.Col].items)
	if n == 0 {
		sel.Row = -1
		return sel
	}
	if sel.Row < 0 {
		sel.Row = 0
	}
	if sel.Row >= n {
		sel.Row = n - 1
	}
	sel.ID = b.cols[sel.Col].items[sel.Row].ID
	return sel
}

func (b board) selected(sel boardSelection) (model.Project, bool) {
	sel = b.clamp(sel)
	if sel.Row < 0 {
		return model.Project{}, false
	}
	return b.cols[sel.Col].items[sel.Row], true
}

func boardColumnWidth(width, n int) int {
	if n <= 0 {
		return 0
	}
	avail := width - columnGap*(n-1)
	colW := avail / n
	if colW < 12 {
		colW = 12
	}
	return colW
}

// visibleCards is how many cards fit under the column header.
func visibleCards(height int) int {
	n := (height - boardHeaderRows) / cardHeight
	if n < 1 {
		n = 1
	}
	return n
}

// columnOffset scrolls only the selected column, far enough to keep the selection visible.
func columnOffset(col int, sel boardSelection, height int) int {
	if col != sel.Col || sel.Row < 0 {
		return 0
	}
	if v := visibleCards(height); sel.Row >= v {
		return sel.Row - v + 1
	}
	return 0
}

// columnAt maps an x coordinate to a column index, or -1 for a gap or out of range.
func (b board) columnAt(x, width int) int {
	n := len(b.cols)
	colW := boardColumnWidth(width, n)
	if x < 0 || colW <= 0 {
		return -1
	}
	stride := colW + columnGap
	ci := x / stride
	if ci >= n || x%stride >= colW {
		return -1
	}
	return ci
}

// cardAt maps a point relative to the board's top-left corner to a card.
func (b board) cardAt(x, y, width, height int, sel boardSelection) (int, int, bool) {
	ci := b.columnAt(x, width)
	if ci < 0 || y < boardHeaderRows {
		return ci, -1, false
	}
	ri := (y-boardHeaderRows)/cardHeight + columnOffset(ci, sel, height)
	if ri >= len(b.cols[ci].items) {
		return ci, -1, false
	}
	return ci, ri, true
}

func renderBoard(b board, sel boardSelection, drag dragView, width, height int) string {
	n := len(b.cols)
	if n == 0 {
		return normalizePane("", width, height)
	}
	sel = b.clamp(sel)
	colW := boardColumnWidth(width, n)

	rendered := make([]string, 0, n*2)
	for ci, col := range b.cols {
		if ci > 0 {
			rendered = append(rendered, normalizePane("", columnGap, height))
		}
		rendered = append(rendered, renderBoardColumn(col, ci, sel, drag, colW, height))
	}
	return normalizePane(lipgloss.JoinHorizontal(lipgloss.Top, rendered...), width, height)
}

func renderBoardColumn(col boardCol, ci int, sel boardSelection, drag dragView, colW, height int) string {
	target := drag.active && drag.hasHover && drag.hovered == col.status

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg).Background(colorControlBg)
	if target {
		headerStyle = headerStyle.Background(colorDropBg)
	}
	head := styleStatus(col.status).Render("●") + headerStyle.Render(fmt.Sprintf(" %s (%d)", col.label, len(col.items)))
	if target {
		head += headerStyle.Render("  drop here")
	}

	lines := []string{fitWidth(head, colW), ""}

	cardStyle := lipgloss.NewStyle().Width(colW).Padding(0, 1)
	selStyle := cardStyle.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
	dropStyle := cardStyle.Background(colorDropBg)
	innerW := colW - 2

	if len(col.items) == 0 {
		empty := "No projects"
		if target {
			empty = "Release to move here"
		}
		lines = append(lines, styleMuted().Render(fitWidth(" "+empty, colW)))
		return normalizePane(strings.Join(lines, "\n"), colW, height)
	}

	off := columnOffset(ci, sel, height)
	for ri := off; ri < len(col.items) && ri < off+visibleCards(height); ri++ {
		p := col.items[ri]
		title := p.Name
		if drag.active && drag.id == p.ID {
			title = "⠿ " + title
		}
		desc := firstLine(p.DescriptionText())
		if desc == "" {
			desc = "No description"
		}

		st := cardStyle
		switch {
		case ci == sel.Col && ri == sel.Row:
			st = selStyle
		case target:
			st = dropStyle
		}
		lines = append(lines,
			st.Render(fitWidth(title, innerW)),
			st.Render(styleMuted().Render(fitWidth(desc, innerW))),
			"",
		)
	}
	if hidden := len(col.items) - off - visibleCards(height); hidden > 0 {
		lines[len(lines)-1] = styleMuted().Render(fmt.Sprintf(" +%d more", hidden))
	}
	return normalizePane(strings.Join(lines, "\n"), colW, height)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
