package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"pulse-cli/internal/cli"
)

// Persistent flags that take a separate value (`--dir x`, not `--dir=x`).
var valueFlags = map[string]bool{
	"--api-url":         true,
	"--dir":             true,
	"--format":          true,
	"--session-backend": true,
	"--redis-addr":      true,
	"--log-level":       true,
	"--metrics-addr":    true,
}

func isProjectID(s string) bool {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return err == nil && n > 0
}

// firstPositional returns the index of the first non-flag token, or -1.
func firstPositional(argv []string) int {
	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		switch {
		case a == "":
			continue
		case a == "--":
			// Everything after "--" is an argument, never a command.
			return -1
		case strings.HasPrefix(a, "-"):
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		return i
	}
	return -1
}

// rewriteDirectLookupArgs turns `pulse <id>` into `pulse projects show <id>`. Cobra treats
// the first positional token as a subcommand, so this happens before parsing.
func rewriteDirectLookupArgs(argv []string) []string {
	i := firstPositional(argv)
	if i < 0 || !isProjectID(argv[i]) {
		return argv
	}
	out := make([]string, 0, len(argv)+2)
	out = append(out, argv[:i]...)
	out = append(out, "projects", "show")
	return append(out, argv[i:]...)
}

func main() {
	os.Args = rewriteDirectLookupArgs(os.Args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCmd()
	cmd.SetArgs(os.Args[1:])
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
