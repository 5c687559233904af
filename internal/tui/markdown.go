package tui

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

type mdKey struct {
	dark  bool
	width int
}

// mdCache holds one renderer per palette and wrap width. Renderers are built from a fixed
// style config; glamour's auto style queries the terminal, which can block under bubbletea.
type mdCache struct {
	mu        sync.Mutex
	renderers map[mdKey]*glamour.TermRenderer
}

var previewRenderers = &mdCache{renderers: map[mdKey]*glamour.TermRenderer{}}

func (c *mdCache) get(k mdKey) (*glamour.TermRenderer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.renderers[k]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(previewStyle(k.dark)),
		glamour.WithWordWrap(k.width),
	)
	if err != nil {
		return nil, err
	}
	c.renderers[k] = r
	return r, nil
}

func previewStyle(dark bool) ansi.StyleConfig {
	cfg := styles.LightStyleConfig
	accent := colorAccent.(lipgloss.AdaptiveColor).Light
	if dark {
		cfg = styles.DarkStyleConfig
		accent = colorAccent.(lipgloss.AdaptiveColor).Dark
	}
	zero := uint(0)
	cfg.Document.Margin = &zero
	cfg.Link.Color = &accent
	cfg.LinkText.Color = &accent
	return cfg
}

// renderMarkdown renders a project description for the preview modal. The raw text is
// returned when rendering fails.
func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	r, err := previewRenderers.get(mdKey{dark: markdownDark(), width: max(width, 10)})
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

// markdownDark follows PULSE_TUI_THEME and falls back to Lip Gloss's background detection.
func markdownDark() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("PULSE_TUI_THEME"))) {
	case "light":
		return false
	case "dark":
		return true
	}
	return lipgloss.HasDarkBackground()
}
