// Package build runs build-tool tasks such as `./gradlew test`.
package build

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// Tool invokes named tasks of a build tool in the project directory.
type Tool struct {
	dir     string
	command []string
	stdout  io.Writer
	stderr  io.Writer
}

// New returns a Tool running command (split on whitespace) in dir. Task
// output goes to the process stdout and stderr.
func New(dir, command string) *Tool {
	return &Tool{
		dir:     dir,
		command: strings.Fields(command),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

// WithOutput redirects task output.
func (t *Tool) WithOutput(stdout, stderr io.Writer) *Tool {
	t.stdout, t.stderr = stdout, stderr
	return t
}

// Run executes one task and reports whether it succeeded.
func (t *Tool) Run(ctx context.Context, task string) error {
	if len(t.command) == 0 {
		return errors.New("build command is not set")
	}
	args := append(append([]string(nil), t.command[1:]...), task)
	cmd := exec.CommandContext(ctx, t.command[0], args...)
	cmd.Dir = t.dir
	cmd.Stdout = t.stdout
	cmd.Stderr = t.stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "%s %s failed", strings.Join(t.command, " "), task)
	}
	return nil
}
