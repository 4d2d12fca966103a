// Package release drives one release from version discovery to cleanup.
//
// Steps run strictly in order and each is gated by a verify combinator.
// The first failing step aborts the release: Run returns a *verify.Abort
// and no later step runs. There are no retries.
package release

import (
	"context"
	"os"
	"regexp"
	"time"

	"github.com/pkg/errors"

	"github.com/menghanl/release-runner/ghclient"
	"github.com/menghanl/release-runner/internal/logging"
)

// Repository is the version-control side of a release.
type Repository interface {
	TagExists(ctx context.Context, name string) (bool, error)
	CreateTag(ctx context.Context, name string) error
	PushTag(ctx context.Context, remote, name string) error
}

// Builder runs build-tool tasks.
type Builder interface {
	Run(ctx context.Context, task string) error
}

// Publisher creates the hosted release and attaches the artifact.
type Publisher interface {
	CreateRelease(ctx context.Context, tag, body string) (*ghclient.Release, error)
	UploadAsset(ctx context.Context, rel *ghclient.Release, path, contentType string) error
}

// NotesSource synthesizes the default release notes.
type NotesSource interface {
	BuildDefault(ctx context.Context) (string, error)
}

// NotesFile is the leftover notes file kept between runs.
type NotesFile interface {
	Path() string
	Contents() (string, error)
	Write(content string) error
	Delete() error
}

// Editor lets a human amend the notes file.
type Editor interface {
	Edit(ctx context.Context, path string) error
}

// FormulaUpdater points the downstream formula at the new artifact.
type FormulaUpdater interface {
	Update(ctx context.Context, version, artifact string) error
}

// Options are the project-specific inputs of a release.
type Options struct {
	// BuildFile holds the version string.
	BuildFile string
	// VersionPattern extracts the version from BuildFile with its first
	// capture group.
	VersionPattern string
	// TagPrefix is prepended to the version to name the tag.
	TagPrefix string
	// ArtifactPath returns the path of the built artifact for a version.
	ArtifactPath func(version string) string

	TestTask    string
	PackageTask string
	Remote      string
	ContentType string

	// DryRun stops after the artifact check, before anything is published.
	DryRun bool
}

// Runner executes the release steps.
type Runner struct {
	opts Options

	repo      Repository
	builder   Builder
	publisher Publisher
	notes     NotesSource
	notesFile NotesFile
	editor    Editor
	formula   FormulaUpdater
	log       *logging.Logger

	readFile func(string) ([]byte, error)
	stat     func(string) (os.FileInfo, error)
}

// Deps are the collaborators of a Runner. Formula may be nil to skip the
// downstream update.
type Deps struct {
	Repo      Repository
	Builder   Builder
	Publisher Publisher
	Notes     NotesSource
	NotesFile NotesFile
	Editor    Editor
	Formula   FormulaUpdater
	Log       *logging.Logger
}

// New returns a Runner.
func New(opts Options, deps Deps) *Runner {
	if opts.Remote == "" {
		opts.Remote = "origin"
	}
	if opts.ContentType == "" {
		opts.ContentType = "application/octet-stream"
	}
	if opts.TestTask == "" {
		opts.TestTask = "test"
	}
	if opts.PackageTask == "" {
		opts.PackageTask = "jar"
	}
	return &Runner{
		opts:      opts,
		repo:      deps.Repo,
		builder:   deps.Builder,
		publisher: deps.Publisher,
		notes:     deps.Notes,
		notesFile: deps.NotesFile,
		editor:    deps.Editor,
		formula:   deps.Formula,
		log:       deps.Log,
		readFile:  os.ReadFile,
		stat:      os.Stat,
	}
}

// State is threaded through the steps; each step reads what earlier steps
// produced and records its own output.
type State struct {
	Version  string
	Tag      string
	Notes    string
	Artifact string
	Release  *ghclient.Release

	// Completed names the steps that finished, in order.
	Completed []string
	Started   time.Time
}

type step struct {
	name string
	run  func(ctx context.Context, st *State) error
	// publishes marks steps with side effects outside the working tree.
	publishes bool
}

func (r *Runner) steps() []step {
	return []step{
		{name: "Resolve version", run: r.resolveVersion},
		{name: "Check version is new", run: r.checkVersionIsNew},
		{name: "Run tests", run: r.runTests},
		{name: "Prepare release notes", run: r.prepareNotes},
		{name: "Review release notes", run: r.reviewNotes},
		{name: "Build", run: r.build},
		{name: "Check artifact", run: r.checkArtifact},
		{name: "Tag and push", run: r.tagAndPush, publishes: true},
		{name: "Publish release", run: r.publishRelease, publishes: true},
		{name: "Upload artifact", run: r.uploadArtifact, publishes: true},
		{name: "Update formula", run: r.updateFormula, publishes: true},
		{name: "Clean up", run: r.cleanup, publishes: true},
	}
}

// Run executes every step in order. It returns the state reached and, on
// failure, the error of the step that aborted the release.
func (r *Runner) Run(ctx context.Context) (*State, error) {
	st := &State{Started: time.Now()}
	for i, s := range r.steps() {
		if s.publishes && r.opts.DryRun {
			r.log.Banner("Dry run: stopping before %q", s.name)
			r.log.Infof("Would tag %s, publish the release and upload %s", st.Tag, st.Artifact)
			r.log.Infof("Release notes are kept in %s", r.notesFile.Path())
			return st, nil
		}
		r.log.Step(i+1, s.name)
		if err := s.run(ctx, st); err != nil {
			return st, errors.WithMessagef(err, "step %d (%s)", i+1, s.name)
		}
		st.Completed = append(st.Completed, s.name)
	}
	return st, nil
}

// ExtractVersion returns the first capture group of pattern in content.
func ExtractVersion(content []byte, pattern string) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", errors.Wrapf(err, "invalid version pattern %q", pattern)
	}
	m := re.FindSubmatch(content)
	if len(m) < 2 || len(m[1]) == 0 {
		return "", errors.Errorf("no match for %q", pattern)
	}
	return string(m[1]), nil
}
