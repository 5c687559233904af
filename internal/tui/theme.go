package tui

import (
	"os"
	"strconv"
	"strings"

	"pulse-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Colors are light/dark pairs so the board reads on either terminal background.
var (
	colorMuted      lipgloss.TerminalColor = lipgloss.AdaptiveColor{Light: "240", Dark: "243"}
	colorSelectedBg lipgloss.TerminalColor = lipgloss.AdaptiveColor{Light: "#e9e9e9", Dark: "#262626"}
	colorSelectedFg lipgloss.TerminalColor = lipgloss.AdaptiveColor{Light: "235", Dark: "255"}
	colorSurfaceFg  lipgloss.TerminalColor = lipgloss.AdaptiveColor{Light: "235", Dark: "252"}
	colorControlBg  lipgloss.TerminalColor = lipgloss.AdaptiveColor{Light: "252", Dark: "235"}
	colorInputBg    lipgloss.TerminalColor = lipgloss.AdaptiveColor{Light: "254", Dark: "234"}
	colorAccent     lipgloss.TerminalColor = lipgloss.AdaptiveColor{Light: "27", Dark: "62"}
	colorAccentFg   lipgloss.TerminalColor = lipgloss.AdaptiveColor{Light: "255", Dark: "235"}
	colorSuccessFg  lipgloss.TerminalColor = lipgloss.AdaptiveColor{Light: "28", Dark: "114"}
	colorErrorFg    lipgloss.TerminalColor = lipgloss.AdaptiveColor{Light: "160", Dark: "203"}
	colorDropBg     lipgloss.TerminalColor = lipgloss.AdaptiveColor{Light: "#dbeafe", Dark: "#1e3a5f"}

	statusColors = map[model.Status]lipgloss.TerminalColor{
		model.StatusNotStarted: lipgloss.AdaptiveColor{Light: "244", Dark: "248"},
		model.StatusInProgress: lipgloss.AdaptiveColor{Light: "27", Dark: "75"},
		model.StatusCompleted:  lipgloss.AdaptiveColor{Light: "28", Dark: "114"},
	}
)

// styleMuted is faint only on dark backgrounds; faint grey on white is unreadable.
func styleMuted() lipgloss.Style {
	st := lipgloss.NewStyle().Foreground(colorMuted)
	if lipgloss.HasDarkBackground() {
		st = st.Faint(true)
	}
	return st
}

func styleStatus(s model.Status) lipgloss.Style {
	c, ok := statusColors[s]
	if !ok {
		c = colorMuted
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

// applyTerminalPreferences picks the background and color profile before the program
// starts.
//
// PULSE_TUI_THEME=light|dark overrides background detection; otherwise COLORFGBG ("fg;bg")
// is consulted. NO_COLOR forces plain output. CLICOLOR is deliberately ignored because
// termenv.EnvColorProfile would let it switch colors off inside the alt screen.
func applyTerminalPreferences() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("PULSE_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	default:
		if bg, ok := colorFGBGBackground(os.Getenv("COLORFGBG")); ok {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}

	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(upgradeProfile(termenv.ColorProfile(), os.Getenv("TERM"), os.Getenv("COLORTERM")))
}

func colorFGBGBackground(v string) (int, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	parts := strings.Split(v, ";")
	bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1]))
	return bg, err == nil
}

// upgradeProfile trusts TERM/COLORTERM when they claim more colors than were detected.
func upgradeProfile(p termenv.Profile, term, colorterm string) termenv.Profile {
	term, colorterm = strings.ToLower(term), strings.ToLower(colorterm)
	switch {
	case p == termenv.Ascii:
		return p
	case strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit"):
		return termenv.TrueColor
	case strings.Contains(term, "256color") && p == termenv.ANSI:
		return termenv.ANSI256
	}
	return p
}
