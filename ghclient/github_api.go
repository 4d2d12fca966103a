package ghclient

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/go-github/github"
	"github.com/pkg/errors"

	"github.com/menghanl/release-runner/notes"
)

// Release is a published GitHub release.
type Release struct {
	TagName   string
	HTMLURL   string
	UploadURL string
}

// ClosedIssuesSince returns every issue closed and updated since the given
// time, across all pages.
func (c *Client) ClosedIssuesSince(ctx context.Context, since time.Time) ([]*notes.Issue, error) {
	opt := &github.IssueListByRepoOptions{
		State:       "closed",
		Since:       since,
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var ret []*notes.Issue
	for {
		issues, resp, err := c.c.Issues.ListByRepo(ctx, c.owner, c.repo, opt)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to list closed issues of %s/%s", c.owner, c.repo)
		}
		for _, ii := range issues {
			c.log.Debugf("%s\n - %s", issueToString(ii), labelsToString(ii))
			ret = append(ret, toIssue(ii))
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	c.log.Debugf("count issues %d", len(ret))
	return ret, nil
}

func toIssue(ii *github.Issue) *notes.Issue {
	issue := &notes.Issue{
		Number:      ii.GetNumber(),
		Title:       ii.GetTitle(),
		HTMLURL:     ii.GetHTMLURL(),
		PullRequest: ii.PullRequestLinks != nil,
	}
	for i := range ii.Labels {
		issue.Labels = append(issue.Labels, ii.Labels[i].GetName())
	}
	if ii.User != nil {
		issue.User = &notes.User{
			Login:   ii.User.GetLogin(),
			HTMLURL: ii.User.GetHTMLURL(),
		}
	}
	return issue
}

func issueToString(ii *github.Issue) string {
	return color.BlueString("#%d", ii.GetNumber()) + " " + ii.GetTitle()
}

func labelsToString(ii *github.Issue) string {
	names := make([]string, 0, len(ii.Labels))
	for i := range ii.Labels {
		names = append(names, color.GreenString("%q", ii.Labels[i].GetName()))
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// CreateRelease publishes a release for an existing tag with body as notes.
func (c *Client) CreateRelease(ctx context.Context, tag, body string) (*Release, error) {
	rel, _, err := c.c.Repositories.CreateRelease(ctx, c.owner, c.repo, &github.RepositoryRelease{
		TagName: github.String(tag),
		Name:    github.String(tag),
		Body:    github.String(body),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create release %q", tag)
	}
	return &Release{
		TagName:   rel.GetTagName(),
		HTMLURL:   rel.GetHTMLURL(),
		UploadURL: rel.GetUploadURL(),
	}, nil
}

// UploadAsset attaches the file at path to the release, sent with the given
// content type.
func (c *Client) UploadAsset(ctx context.Context, rel *Release, path, contentType string) error {
	if rel == nil || rel.UploadURL == "" {
		return errors.New("release has no upload url")
	}
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "unable to open %s", path)
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return errors.Wrapf(err, "unable to stat %s", path)
	}
	if stat.IsDir() {
		return errors.Errorf("%s is a directory", path)
	}

	// The upload url is a URI template: ".../assets{?name,label}".
	u := strings.SplitN(rel.UploadURL, "{", 2)[0] + "?name=" + url.QueryEscape(filepath.Base(path))
	req, err := c.c.NewUploadRequest(u, f, stat.Size(), contentType)
	if err != nil {
		return errors.WithStack(err)
	}
	asset := new(github.ReleaseAsset)
	if _, err := c.c.Do(ctx, req, asset); err != nil {
		return errors.Wrapf(err, "unable to upload %s", path)
	}
	c.log.Debugf("uploaded asset %s (%d bytes)", asset.GetName(), stat.Size())
	return nil
}

// GetFile returns the decoded content and blob sha of a repository file.
// An empty ref means the default branch.
func (c *Client) GetFile(ctx context.Context, path, ref string) (string, string, error) {
	var opt *github.RepositoryContentGetOptions
	if ref != "" {
		opt = &github.RepositoryContentGetOptions{Ref: ref}
	}
	file, _, _, err := c.c.Repositories.GetContents(ctx, c.owner, c.repo, path, opt)
	if err != nil {
		return "", "", errors.Wrapf(err, "unable to read %s from %s/%s", path, c.owner, c.repo)
	}
	if file == nil {
		return "", "", errors.Errorf("%s in %s/%s is not a file", path, c.owner, c.repo)
	}
	content, err := file.GetContent()
	if err != nil {
		return "", "", errors.Wrapf(err, "unable to decode %s", path)
	}
	return content, file.GetSHA(), nil
}

// UpdateFile replaces a repository file in one commit. sha is the blob sha
// returned by GetFile.
func (c *Client) UpdateFile(ctx context.Context, path, branch, content, sha, message string) error {
	opt := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: []byte(content),
		SHA:     github.String(sha),
	}
	if branch != "" {
		opt.Branch = github.String(branch)
	}
	if _, _, err := c.c.Repositories.UpdateFile(ctx, c.owner, c.repo, path, opt); err != nil {
		return errors.Wrapf(err, "unable to update %s in %s/%s", path, c.owner, c.repo)
	}
	return nil
}
