package notes

import (
	"context"
	"regexp"
	"time"

	"github.com/pkg/errors"

	"github.com/menghanl/release-runner/internal/git"
	"github.com/menghanl/release-runner/internal/logging"
)

// DefaultCommitExcludes drops commits already represented by a closed issue.
var DefaultCommitExcludes = []string{"Fix #", "Fixes #", "Closes #"}

// History is the version-control view the synthesizer needs.
type History interface {
	LatestTag(ctx context.Context) (*git.Tag, error)
	Log(ctx context.Context, from, to string) ([]git.Commit, error)
}

// Tracker lists closed issues from the issue tracker.
type Tracker interface {
	ClosedIssuesSince(ctx context.Context, since time.Time) ([]*Issue, error)
}

// Synthesizer builds the default release notes from the commits and the
// issues closed since the previous release tag.
type Synthesizer struct {
	Org        string
	Repo       string
	History    History
	Tracker    Tracker
	Categories []Category
	// Excludes are regular expressions; a commit whose message matches any
	// of them is left out of the notes.
	Excludes []string
	Filters  Filters
	Log      *logging.Logger
}

// Build returns the structured notes, or nil when there is no previous
// release tag.
func (s *Synthesizer) Build(ctx context.Context) (*Notes, error) {
	latest, err := s.History.LatestTag(ctx)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		s.Log.Infof("No previous release tag; nothing to synthesize")
		return nil, nil
	}

	commits, err := s.History.Log(ctx, latest.Name, "HEAD")
	if err != nil {
		return nil, err
	}
	excludes := s.Excludes
	if excludes == nil {
		excludes = DefaultCommitExcludes
	}
	kept, err := ExcludeCommits(commits, excludes)
	if err != nil {
		return nil, err
	}
	s.Log.Debugf("git log %s..HEAD. commits: %d, kept: %d", latest.Name, len(commits), len(kept))

	since := NaiveUTC(latest.Created)
	issues, err := s.Tracker.ClosedIssuesSince(ctx, since)
	if err != nil {
		return nil, err
	}
	s.Log.Debugf("closed issues since %s: %d", since.Format(time.RFC3339), len(issues))

	categories := s.Categories
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	n := &Notes{
		Org:      s.Org,
		Repo:     s.Repo,
		Since:    latest.Name,
		Sections: Classify(issues, categories, s.Filters),
	}
	for _, c := range kept {
		n.Commits = append(n.Commits, c.Subject)
	}
	return n, nil
}

// BuildDefault returns the rendered default notes. It is empty when there
// is no previous release tag.
func (s *Synthesizer) BuildDefault(ctx context.Context) (string, error) {
	n, err := s.Build(ctx)
	if err != nil {
		return "", err
	}
	return n.Markdown(), nil
}

// ExcludeCommits drops every commit whose message matches one of patterns,
// like git log --invert-grep with several --grep flags.
func ExcludeCommits(commits []git.Commit, patterns []string) ([]git.Commit, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid commit exclude pattern %q", p)
		}
		res = append(res, re)
	}
	var kept []git.Commit
	for _, c := range commits {
		msg := c.Message()
		matched := false
		for _, re := range res {
			if re.MatchString(msg) {
				matched = true
				break
			}
		}
		if !matched {
			kept = append(kept, c)
		}
	}
	return kept, nil
}

// NaiveUTC converts t to the same instant expressed in UTC, so the tracker
// query does not depend on it honoring zone offsets.
func NaiveUTC(t time.Time) time.Time {
	return t.UTC().Round(0)
}
