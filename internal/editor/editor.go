// Package editor hands a file to the user's text editor and waits for it to
// exit.
package editor

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// Editor runs an interactive editor attached to the terminal.
type Editor struct {
	command []string
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// New returns an Editor for command. An empty command falls back to
// $VISUAL, then $EDITOR, then vi.
func New(command string) *Editor {
	if strings.TrimSpace(command) == "" {
		command = FromEnv()
	}
	return &Editor{
		command: strings.Fields(command),
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

// FromEnv returns the editor command configured in the environment.
func FromEnv() string {
	for _, key := range []string{"VISUAL", "EDITOR"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return "vi"
}

// Edit opens path and blocks until the editor exits.
func (e *Editor) Edit(ctx context.Context, path string) error {
	if len(e.command) == 0 {
		return errors.New("no editor configured")
	}
	args := append(append([]string(nil), e.command[1:]...), path)
	cmd := exec.CommandContext(ctx, e.command[0], args...)
	cmd.Stdin = e.stdin
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "editor %s exited with error", e.command[0])
	}
	return nil
}
