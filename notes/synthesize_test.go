package notes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menghanl/release-runner/internal/git"
)

type fakeHistory struct {
	tag     *git.Tag
	tagErr  error
	commits []git.Commit
	logged  []string
}

func (f *fakeHistory) LatestTag(context.Context) (*git.Tag, error) {
	return f.tag, f.tagErr
}

func (f *fakeHistory) Log(_ context.Context, from, to string) ([]git.Commit, error) {
	f.logged = append(f.logged, from+".."+to)
	return f.commits, nil
}

type fakeTracker struct {
	issues []*Issue
	since  time.Time
	calls  int
}

func (f *fakeTracker) ClosedIssuesSince(_ context.Context, since time.Time) ([]*Issue, error) {
	f.calls++
	f.since = since
	return f.issues, nil
}

func TestBuildDefaultWithoutTag(t *testing.T) {
	tracker := &fakeTracker{issues: []*Issue{issue(1, "a", "bug")}}
	s := &Synthesizer{History: &fakeHistory{}, Tracker: tracker}

	got, err := s.BuildDefault(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", got)
	assert.Zero(t, tracker.calls)
}

func TestBuildDefaultScenario(t *testing.T) {
	history := &fakeHistory{
		tag: &git.Tag{Name: "v1.2.0", Created: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		commits: []git.Commit{
			{Subject: "Improve startup time"},
			{Subject: "Fix #123 crash"},
		},
	}
	tracker := &fakeTracker{issues: []*Issue{
		issue(10, "Crash on connect", "bug"),
		issue(11, "Lua scripting", "feature"),
	}}
	s := &Synthesizer{History: history, Tracker: tracker}

	got, err := s.BuildDefault(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "**New Features**:\n- Lua scripting (#11)\n\n"+
		"**Bug Fixes**:\n- Crash on connect (#10)\n\n"+
		"**Notes**:\n- Improve startup time", got)
	assert.NotContains(t, got, "Enhancements")
	assert.NotContains(t, got, "Fix #123")
	assert.Equal(t, []string{"v1.2.0..HEAD"}, history.logged)
}

func TestBuildDefaultNothingNew(t *testing.T) {
	history := &fakeHistory{
		tag:     &git.Tag{Name: "1.0"},
		commits: []git.Commit{{Subject: "Closes #4"}},
	}
	s := &Synthesizer{History: history, Tracker: &fakeTracker{}}
	got, err := s.BuildDefault(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestBuildDefaultNormalizesTagDate(t *testing.T) {
	zone := time.FixedZone("CEST", 2*60*60)
	history := &fakeHistory{tag: &git.Tag{Name: "1.0", Created: time.Date(2026, 6, 1, 14, 30, 0, 0, zone)}}
	tracker := &fakeTracker{}
	s := &Synthesizer{History: history, Tracker: tracker}

	_, err := s.BuildDefault(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.UTC, tracker.since.Location())
	assert.Equal(t, time.Date(2026, 6, 1, 12, 30, 0, 0, time.UTC), tracker.since)
}

func TestBuildDefaultTagError(t *testing.T) {
	s := &Synthesizer{History: &fakeHistory{tagErr: errors.New("boom")}, Tracker: &fakeTracker{}}
	_, err := s.BuildDefault(context.Background())
	assert.EqualError(t, err, "boom")
}

func TestExcludeCommits(t *testing.T) {
	commits := []git.Commit{
		{Subject: "Fix #123"},
		{Subject: "Fixes #9: wrap long lines"},
		{Subject: "Refactor input", Body: "Closes #77"},
		{Subject: "Improve startup time"},
		{Subject: "fix #5 lowercase is kept"},
	}
	kept, err := ExcludeCommits(commits, DefaultCommitExcludes)
	require.NoError(t, err)
	var subjects []string
	for _, c := range kept {
		subjects = append(subjects, c.Subject)
	}
	assert.Equal(t, []string{"Improve startup time", "fix #5 lowercase is kept"}, subjects)
}

func TestExcludeCommitsBadPattern(t *testing.T) {
	_, err := ExcludeCommits([]git.Commit{{Subject: "x"}}, []string{"("})
	assert.Error(t, err)
}
