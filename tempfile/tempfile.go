// Package tempfile manages request-scoped files handed to external tools.
// Every File must be released with Remove, normally via defer right after
// Create succeeds.
package tempfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// File is a temporary file plus any sibling outputs a tool wrote next to it.
type File struct {
	Path     string
	siblings []string
}

// Create writes src to a new file in dir (os.TempDir when empty) whose name
// ends in suffix. A nil src yields an empty file.
func Create(dir, prefix, suffix string, src io.Reader) (*File, error) {
	f, err := os.CreateTemp(dir, prefix+"*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tf := &File{Path: f.Name()}

	if src != nil {
		if _, err := io.Copy(f, src); err != nil {
			f.Close()
			tf.Remove()
			return nil, fmt.Errorf("failed to write temp file: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		tf.Remove()
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}
	return tf, nil
}

// Dir is the directory holding the file.
func (f *File) Dir() string {
	return filepath.Dir(f.Path)
}

// Sibling returns the path with the extension swapped for ext and registers
// it for removal alongside the file.
func (f *File) Sibling(ext string) string {
	p := strings.TrimSuffix(f.Path, filepath.Ext(f.Path)) + ext
	f.siblings = append(f.siblings, p)
	return p
}

// Remove deletes the file and its registered siblings. Files that are already
// gone are not an error.
func (f *File) Remove() error {
	var errs []error
	for _, p := range append([]string{f.Path}, f.siblings...) {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SafeFilename reduces an uploaded filename to a plain base name made of
// ASCII letters, digits, dot, dash and underscore.
func SafeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")
	return name
}

// Ext is the extension of an uploaded filename after SafeFilename.
func Ext(name string) string {
	return filepath.Ext(SafeFilename(name))
}
