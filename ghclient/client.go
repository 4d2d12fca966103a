// Package ghclient talks to the GitHub API: closed issues, releases, release
// assets and repository file contents.
package ghclient

import (
	"context"
	"net/http"

	"github.com/google/go-github/github"
	"golang.org/x/oauth2"

	"github.com/menghanl/release-runner/internal/logging"
)

// Client is a github client scoped to one repository.
type Client struct {
	owner string
	repo  string

	c   *github.Client
	log *logging.Logger
}

// New returns a client for owner/repo. A nil tc means unauthenticated access.
func New(tc *http.Client, owner, repo string) *Client {
	return &Client{
		owner: owner,
		repo:  repo,
		c:     github.NewClient(tc),
	}
}

// NewWithClient wraps an existing go-github client.
func NewWithClient(c *github.Client, owner, repo string) *Client {
	return &Client{owner: owner, repo: repo, c: c}
}

// NewHTTPClient returns an http client sending token, or nil without one.
func NewHTTPClient(ctx context.Context, token string) *http.Client {
	if token == "" {
		return nil
	}
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	return oauth2.NewClient(ctx, ts)
}

// WithLogger sets the logger used for progress output.
func (c *Client) WithLogger(l *logging.Logger) *Client {
	c.log = l
	return c
}

// ForRepo returns a client for another repository sharing the same
// connection.
func (c *Client) ForRepo(owner, repo string) *Client {
	return &Client{owner: owner, repo: repo, c: c.c, log: c.log}
}

// Owner returns the repository owner.
func (c *Client) Owner() string { return c.owner }

// Repo returns the repository name.
func (c *Client) Repo() string { return c.repo }
