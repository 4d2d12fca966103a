// Package git drives the git command line for the release: tag lookup and
// creation, pushing, and reading the commit log between two revisions.
package git

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tsuyoshiwada/go-gitlog"
)

// Tag is a release tag and the time it was created.
type Tag struct {
	Name    string
	Created time.Time
}

// Commit is one log entry.
type Commit struct {
	Subject string
	Body    string
}

// Message returns the full commit message.
func (c Commit) Message() string {
	if c.Body == "" {
		return c.Subject
	}
	return c.Subject + "\n\n" + c.Body
}

// Repo runs git inside one working tree.
type Repo struct {
	dir string
	bin string
}

// New returns a Repo for the working tree at dir.
func New(dir string) *Repo {
	return &Repo{dir: dir, bin: "git"}
}

// Dir returns the working tree path.
func (r *Repo) Dir() string { return r.dir }

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.bin, args...)
	cmd.Dir = r.dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &CommandError{Args: args, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return strings.TrimSpace(stdout.String()), nil
}

// CommandError is a failed git invocation.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := "git " + strings.Join(e.Args, " ") + ": " + e.Err.Error()
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// ExitCode returns the process exit status, or -1 when git did not run.
func (e *CommandError) ExitCode() int {
	var exitErr *exec.ExitError
	if errors.As(e.Err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// LatestTag returns the most recent tag reachable from HEAD, or nil when the
// history has no tags yet.
func (r *Repo) LatestTag(ctx context.Context) (*Tag, error) {
	name, err := r.run(ctx, "describe", "--tags", "--abbrev=0")
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && noTags(cmdErr.Stderr) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "unable to find latest tag")
	}
	created, err := r.TagCreated(ctx, name)
	if err != nil {
		return nil, err
	}
	return &Tag{Name: name, Created: created}, nil
}

func noTags(stderr string) bool {
	return strings.Contains(stderr, "No names found") ||
		strings.Contains(stderr, "No tags can describe") ||
		strings.Contains(stderr, "cannot describe")
}

// TagCreated returns the creation time of a tag: the tagger date for
// annotated tags, the commit date for lightweight ones.
func (r *Repo) TagCreated(ctx context.Context, name string) (time.Time, error) {
	out, err := r.run(ctx, "for-each-ref", "--format=%(creatordate:iso-strict)", "refs/tags/"+name)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "unable to read date of tag %q", name)
	}
	if out == "" {
		return time.Time{}, errors.Errorf("tag %q not found", name)
	}
	t, err := time.Parse(time.RFC3339, out)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "unable to parse date of tag %q", name)
	}
	return t, nil
}

// TagExists reports whether a tag with the given name exists locally.
func (r *Repo) TagExists(ctx context.Context, name string) (bool, error) {
	_, err := r.run(ctx, "rev-parse", "-q", "--verify", "refs/tags/"+name)
	if err == nil {
		return true, nil
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode() == 1 {
		return false, nil
	}
	return false, errors.Wrapf(err, "unable to check tag %q", name)
}

// CreateTag tags HEAD.
func (r *Repo) CreateTag(ctx context.Context, name string) error {
	if _, err := r.run(ctx, "tag", name); err != nil {
		return errors.Wrapf(err, "unable to create tag %q", name)
	}
	return nil
}

// PushTag pushes one tag to remote.
func (r *Repo) PushTag(ctx context.Context, remote, name string) error {
	if _, err := r.run(ctx, "push", remote, "refs/tags/"+name); err != nil {
		return errors.Wrapf(err, "unable to push tag %q to %s", name, remote)
	}
	return nil
}

// Log returns the commits in from..to, newest first.
func (r *Repo) Log(ctx context.Context, from, to string) ([]Commit, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	gl := gitlog.New(&gitlog.Config{
		Bin:  r.bin,
		Path: r.dir,
	})
	rev := &gitlog.RevRange{
		Old: from,
		New: to,
	}
	commits, err := gl.Log(rev, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to get commits for %s..%s", from, to)
	}
	result := make([]Commit, 0, len(commits))
	for _, c := range commits {
		result = append(result, Commit{
			Subject: c.Subject,
			Body:    strings.TrimSpace(c.Body),
		})
	}
	return result, nil
}
