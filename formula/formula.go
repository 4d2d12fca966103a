// Package formula rewrites the download url and sha256 of a package-manager
// formula stored in a remote repository after a release is published.
package formula

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/menghanl/release-runner/internal/logging"
)

// blockSize is the read size used when hashing artifacts.
const blockSize = 64 * 1024

var (
	urlField    = regexp.MustCompile(`url "[^"]*"`)
	sha256Field = regexp.MustCompile(`sha256 "[^"]*"`)
)

// Files reads and writes one file of the formula repository.
type Files interface {
	GetFile(ctx context.Context, path, ref string) (content, sha string, err error)
	UpdateFile(ctx context.Context, path, branch, content, sha, message string) error
}

// Updater points the formula at a new release artifact.
type Updater struct {
	Files  Files
	Path   string
	Branch string
	// URL returns the download url of the artifact for a version.
	URL func(version string) string
	// Strict fails the update when a field is missing instead of leaving
	// it untouched.
	Strict bool
	Log    *logging.Logger
}

// Misses lists the fields a rewrite could not find.
type Misses []string

// Rewrite replaces the first url "..." and the first sha256 "..." in text.
// Everything else is returned byte for byte. Missing fields are reported in
// Misses and left as they are.
func Rewrite(text, url, sum string) (string, Misses) {
	var misses Misses
	text, ok := replaceFirst(text, urlField, `url `+strconv.Quote(url))
	if !ok {
		misses = append(misses, "url")
	}
	text, ok = replaceFirst(text, sha256Field, `sha256 `+strconv.Quote(sum))
	if !ok {
		misses = append(misses, "sha256")
	}
	return text, misses
}

func replaceFirst(text string, re *regexp.Regexp, repl string) (string, bool) {
	loc := re.FindStringIndex(text)
	if loc == nil {
		return text, false
	}
	return text[:loc[0]] + repl + text[loc[1]:], true
}

// SHA256File hashes the file at path, reading it in fixed-size blocks.
func SHA256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "unable to open %s", path)
	}
	defer f.Close()
	h := sha256.New()
	buf := make([]byte, blockSize)
	if _, err := io.CopyBuffer(h, struct{ io.Reader }{f}, buf); err != nil {
		return "", errors.Wrapf(err, "unable to hash %s", path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// CommitMessage is the message of the formula update commit.
func CommitMessage(version string) string {
	return "Update for v" + strings.TrimPrefix(version, "v")
}

// Update hashes artifact, rewrites the formula for version and commits the
// result in a single commit.
func (u *Updater) Update(ctx context.Context, version, artifact string) error {
	if u.URL == nil {
		return errors.New("formula url template is not set")
	}
	sum, err := SHA256File(artifact)
	if err != nil {
		return err
	}
	url := u.URL(version)
	u.Log.Infof("Formula %s: url %s sha256 %s", u.Path, url, sum)

	text, sha, err := u.Files.GetFile(ctx, u.Path, u.Branch)
	if err != nil {
		return err
	}
	updated, misses := Rewrite(text, url, sum)
	if len(misses) > 0 {
		if u.Strict {
			return errors.Errorf("formula %s has no %s field", u.Path, strings.Join(misses, " or "))
		}
		u.Log.Warnf("Formula %s has no %s field; left unchanged", u.Path, strings.Join(misses, " or "))
	}
	return u.Files.UpdateFile(ctx, u.Path, u.Branch, updated, sha, CommitMessage(version))
}
