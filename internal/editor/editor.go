// Package editor opens the user's editor to write task descriptions.
package editor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"
)

// DefaultEditor runs when neither $VISUAL nor $EDITOR is set.
const DefaultEditor = "vi"

// IsInteractive returns true if stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Command returns the argv that edits path. $VISUAL wins over $EDITOR, and
// either may carry arguments ("code --wait"), which precede path.
func Command(path string) []string {
	for _, name := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(os.Getenv(name)); len(fields) > 0 {
			return append(fields, path)
		}
	}
	return []string{DefaultEditor, path}
}

// Edit opens path in the editor attached to the current terminal and waits
// for it to exit.
func Edit(path string) error {
	argv := Command(path)

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("editor %s exited with status %d", argv[0], exitErr.ExitCode())
		}
		return fmt.Errorf("run editor %s: %w", argv[0], err)
	}
	return nil
}
