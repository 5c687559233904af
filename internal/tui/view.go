package tui

import (
	"fmt"
	"strings"

	"pulse-cli/internal/model"
	"pulse-cli/internal/statusutil"

	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	if m.screen == screenLogin {
		return overlayCenter(m.width, m.height, m.login.view(m.width, m.height))
	}

	if box, ok := m.modalView(); ok {
		return overlayCenter(m.width, m.height, box)
	}

	h := m.contentHeight()
	var content string
	switch m.mode {
	case modeList:
		content = renderList(m.filtered, m.listSel, m.width, h)
	case modeStats:
		content = renderStats(m.projects, m.width, h)
	default:
		content = renderBoard(m.board, m.sel, m.dragView(), m.width, h)
	}

	parts := []string{
		m.viewHeader(),
		m.viewTabs(),
		m.viewFilterBar(),
		"",
		content,
	}
	parts = append(parts, m.viewNotifications()...)
	parts = append(parts, m.help.View(m.keys))
	return strings.Join(parts, "\n")
}

func (m appModel) dragView() dragView {
	p, ok := m.drag.Dragged()
	if !ok {
		return dragView{}
	}
	st, hover := m.drag.Hovered()
	return dragView{active: true, id: p.ID, hovered: st, hasHover: hover}
}

func (m appModel) viewHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorAccentFg).Background(colorAccent).Padding(0, 1).Render("Project Pulse")

	right := ""
	if m.sess != nil {
		if u, ok := m.sess.User(); ok {
			right = u.DisplayName()
		}
	}

	status := m.summaryText()
	if m.inflight > 0 || (m.coll != nil && m.coll.Loading()) {
		status = m.spinner.View() + " " + status
	}
	if p, ok := m.drag.Dragged(); ok {
		target := "no target"
		if st, ok := m.drag.Hovered(); ok {
			target = statusutil.Label(st)
		}
		status = fmt.Sprintf("moving %q → %s", p.Name, target)
	}

	left := title + " " + styleMuted().Render(status)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return fitWidth(left+strings.Repeat(" ", gap)+right, m.width)
}

func (m appModel) summaryText() string {
	if m.coll != nil && !m.coll.Loaded() {
		return "Loading projects…"
	}
	s := m.summary()
	if s.IsFiltering {
		return fmt.Sprintf("Showing %d of %d projects", s.Filtered, s.Total)
	}
	if s.Total == 1 {
		return "1 project"
	}
	return fmt.Sprintf("%d projects", s.Total)
}

func (m appModel) viewTabs() string {
	active := lipgloss.NewStyle().Bold(true).Foreground(colorSelectedFg).Background(colorSelectedBg).Padding(0, 1)
	idle := styleMuted().Padding(0, 1)
	tabs := make([]string, 0, len(viewModes))
	for i, v := range viewModes {
		lbl := fmt.Sprintf("%d %s", i+1, strings.ToUpper(string(v[:1]))+string(v[1:]))
		if v == m.mode {
			tabs = append(tabs, active.Render(lbl))
		} else {
			tabs = append(tabs, idle.Render(lbl))
		}
	}
	return fitWidth(strings.Join(tabs, " "), m.width)
}

func (m appModel) viewFilterBar() string {
	filter := "Status: " + statusutil.FilterLabel(m.filter)
	if m.filter != statusutil.FilterAll {
		filter = styleStatus(model.Status(m.filter)).Render(filter)
	} else {
		filter = styleMuted().Render(filter)
	}
	search := styleMuted().Render("/ to search")
	if m.searching || m.search.Value() != "" {
		search = m.search.View()
	}
	return fitWidth(filter+"   "+search, m.width)
}

func (m appModel) viewNotifications() []string {
	if m.coll == nil {
		return nil
	}
	active := m.coll.Notifications().Active()
	out := make([]string, 0, len(active))
	for _, n := range active {
		st := lipgloss.NewStyle().Foreground(colorSuccessFg)
		icon := "✓"
		if n.Kind == model.NotificationError {
			st = lipgloss.NewStyle().Foreground(colorErrorFg)
			icon = "✗"
		}
		out = append(out, fitWidth(st.Render(icon+" "+n.Text), m.width))
	}
	return out
}
