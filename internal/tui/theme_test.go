package tui

import (
	"testing"

	"github.com/muesli/termenv"
)

func TestUpgradeProfile(t *testing.T) {
	cases := []struct {
		name            string
		in              termenv.Profile
		term, colorterm string
		want            termenv.Profile
	}{
		{"ascii stays ascii", termenv.Ascii, "xterm-256color", "truecolor", termenv.Ascii},
		{"colorterm truecolor", termenv.ANSI, "xterm", "truecolor", termenv.TrueColor},
		{"colorterm 24bit", termenv.ANSI256, "", "24BIT", termenv.TrueColor},
		{"256color term", termenv.ANSI, "screen-256color", "", termenv.ANSI256},
		{"nothing to upgrade", termenv.ANSI256, "xterm", "", termenv.ANSI256},
	}
	for _, tc := range cases {
		if got := upgradeProfile(tc.in, tc.term, tc.colorterm); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestColorFGBGBackground(t *testing.T) {
	if bg, ok := colorFGBGBackground("15;0"); !ok || bg != 0 {
		t.Fatalf("expected bg 0, got %d ok=%v", bg, ok)
	}
	if bg, ok := colorFGBGBackground("0;default;15"); !ok || bg != 15 {
		t.Fatalf("expected bg 15, got %d ok=%v", bg, ok)
	}
	if _, ok := colorFGBGBackground(""); ok {
		t.Fatalf("expected empty value to be ignored")
	}
	if _, ok := colorFGBGBackground("15;default"); ok {
		t.Fatalf("expected non-numeric background to be ignored")
	}
}
