// Package notes defines the structs for release notes and the functions that
// classify closed issues into sections and synthesize the default notes.
package notes

import (
	"fmt"
	"strings"
)

// Notes contains all the note entries for a given release.
type Notes struct {
	Org      string     `json:"org"`
	Repo     string     `json:"repo"`
	Since    string     `json:"since,omitempty"`
	Sections []*Section `json:"sections"`
	// Commits are the subjects of the commits since the previous release
	// that do not reference an issue.
	Commits []string `json:"commits,omitempty"`
}

// Section contains one release note section, for example "Bug Fixes".
type Section struct {
	Label   string   `json:"label"`
	Name    string   `json:"name"`
	Entries []*Entry `json:"entries"`
}

// Entry contains the info for one entry in the release notes.
type Entry struct {
	IssueNumber int    `json:"number"`
	Title       string `json:"title"`
	HTMLURL     string `json:"html_url,omitempty"`
	User        *User  `json:"user,omitempty"`
}

// User represents a github user.
type User struct {
	Login   string `json:"login"`
	HTMLURL string `json:"html_url,omitempty"`
}

// Issue is a closed ticket as reported by the issue tracker.
type Issue struct {
	Number      int
	Title       string
	HTMLURL     string
	Labels      []string
	User        *User
	PullRequest bool
}

// HasLabel reports whether the issue carries label.
func (i *Issue) HasLabel(label string) bool {
	for _, l := range i.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// String formats the entry as one markdown list line.
func (e *Entry) String() string {
	return fmt.Sprintf("- %s (#%d)\n", e.Title, e.IssueNumber)
}

// Content returns the concatenated entry lines of the section.
func (s *Section) Content() string {
	var b strings.Builder
	for _, e := range s.Entries {
		b.WriteString(e.String())
	}
	return b.String()
}

// Markdown renders the notes: one block per non-empty section in section
// order, then the commit notes. The result is trimmed.
func (n *Notes) Markdown() string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	for _, s := range n.Sections {
		if len(s.Entries) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n**%s**:\n%s", s.Name, s.Content())
	}
	if len(n.Commits) > 0 {
		b.WriteString("\n**Notes**:\n")
		lines := make([]string, len(n.Commits))
		for i, c := range n.Commits {
			lines[i] = "- " + c
		}
		b.WriteString(strings.Join(lines, "\n"))
	}
	return strings.TrimSpace(b.String())
}
