// Package notesfile manages the leftover release notes file. The file
// survives an aborted release so the next run starts from the notes the
// user already wrote.
package notesfile

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ErrEmpty is returned by Contents when the file is missing or blank.
var ErrEmpty = errors.New("no release notes")

// File is the notes file at one path.
type File struct {
	path string
}

// New returns the notes file at path.
func New(path string) *File {
	return &File{path: path}
}

// Path returns the file location.
func (f *File) Path() string { return f.path }

// Contents returns the trimmed file content, or ErrEmpty when the file does
// not exist or holds only whitespace.
func (f *File) Contents() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrEmpty
		}
		return "", errors.Wrapf(err, "unable to read %s", f.path)
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return "", ErrEmpty
	}
	return s, nil
}

// Write replaces the file content.
func (f *File) Write(content string) error {
	if err := os.WriteFile(f.path, []byte(content), 0o644); err != nil {
		return errors.Wrapf(err, "unable to write %s", f.path)
	}
	return nil
}

// Delete removes the file. A missing file is not an error.
func (f *File) Delete() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "unable to delete %s", f.path)
	}
	return nil
}
