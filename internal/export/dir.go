package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DirSink writes artifacts into a local directory.
type DirSink struct {
	dir string
}

// NewDirSink returns a sink writing into dir ("" = current directory).
func NewDirSink(dir string) *DirSink {
	if dir == "" {
		dir = "."
	}
	return &DirSink{dir: dir}
}

// Deliver writes a.Data to dir/a.Name, replacing an existing file of the
// same name. The write goes through a temporary file so a failed export
// never leaves a truncated spreadsheet behind.
func (s *DirSink) Deliver(ctx context.Context, a Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if a.Name == "" || filepath.Base(a.Name) != a.Name {
		return "", fmt.Errorf("invalid artifact name %q", a.Name)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, a.Name)
	tmp, err := os.CreateTemp(s.dir, "."+a.Name+".*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	_, werr := tmp.Write(a.Data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("renaming to %s: %w", path, err)
	}
	return path, nil
}
