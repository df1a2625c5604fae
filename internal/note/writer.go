package note

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidFilename is returned for filenames that would escape the vault.
var ErrInvalidFilename = errors.New("invalid note filename")

// Writer writes notes into a vault directory.
type Writer struct {
	Dir string
}

// NewWriter creates a writer for dir.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir}
}

// Write stores markdown under filename in the vault and returns the path.
// The vault directory is created if missing; an existing note is replaced.
func (w *Writer) Write(markdown, filename string) (string, error) {
	if filename == "" || filename == "." || filename == ".." || strings.ContainsAny(filename, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return "", fmt.Errorf("creating vault directory: %w", err)
	}

	path := filepath.Join(w.Dir, filename)
	if err := os.WriteFile(path, []byte(markdown), 0644); err != nil {
		return "", fmt.Errorf("writing note: %w", err)
	}
	return path, nil
}
