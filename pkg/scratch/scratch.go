package scratch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Scratch manages short-lived local files used while processing a job.
// Files are written under a configured temp directory and must be removed
// by the caller once processing finishes.
type Scratch struct {
	dir string
}

// New creates a scratch store rooted at dir ("/tmp" when empty)
func New(dir string) *Scratch {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Scratch{dir: dir}
}

// Write stores data in a unique temp file and returns its path.
// The hint's extension is preserved so downstream tools can sniff the format.
func (s *Scratch) Write(hint string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("creating scratch directory: %w", err)
	}

	ext := filepath.Ext(hint)
	if ext == "" {
		ext = ".bin"
	}

	f, err := os.CreateTemp(s.dir, "scratch-*"+ext)
	if err != nil {
		return "", fmt.Errorf("creating scratch file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("writing scratch file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("closing scratch file: %w", err)
	}

	return f.Name(), nil
}

// Cleanup removes a scratch file. Removing a file that is already gone
// is not an error.
func (s *Scratch) Cleanup(path string) error {
	if path == "" {
		return nil
	}

	// Refuse to remove anything that doesn't look like one of ours
	if !strings.Contains(filepath.Base(path), "scratch-") {
		return fmt.Errorf("refusing to remove non-scratch file: %s", path)
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing scratch file: %w", err)
	}

	return nil
}
