package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readLine prints prompt to stderr and reads one line from the command's stdin.
func readLine(cmd *cobra.Command, r *bufio.Reader, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	s, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || s == "") {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// readPassword reads without echo when stdin is a terminal, else one plain line.
func readPassword(cmd *cobra.Command, r *bufio.Reader) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	s, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || s == "") {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// confirm asks a [y/N] question; anything but y/yes is a no.
func confirm(cmd *cobra.Command, question string) bool {
	ans, err := readLine(cmd, bufio.NewReader(cmd.InOrStdin()), question+" [y/N] ")
	if err != nil {
		return false
	}
	switch strings.ToLower(ans) {
	case "y", "yes":
		return true
	}
	return false
}
