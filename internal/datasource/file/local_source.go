package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local is a file on the local disk that can be read and atomically
// replaced.
type Local struct{ path string }

// NewLocal returns a Local bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Open opens the file for reading. A canceled context short-circuits before
// touching the filesystem. Filesystem errors are wrapped with the path and
// still match errors.Is(err, os.ErrNotExist).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}

// Replace writes new content through write into a temporary file in the same
// directory and renames it over the original. Readers see either the old or
// the new content. The original file mode is kept when the file exists.
func (l *Local) Replace(ctx context.Context, write func(w io.Writer) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	mode := os.FileMode(0o644)
	if st, statErr := os.Stat(l.path); statErr == nil {
		mode = st.Mode().Perm()
	}

	dir, base := filepath.Split(l.path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("replace %s: create temp: %w", l.path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err = write(tmp); err != nil {
		return fmt.Errorf("replace %s: write: %w", l.path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("replace %s: sync: %w", l.path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("replace %s: close: %w", l.path, err)
	}
	if err = os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("replace %s: chmod: %w", l.path, err)
	}
	if err = os.Rename(tmpName, l.path); err != nil {
		return fmt.Errorf("replace %s: rename: %w", l.path, err)
	}
	return nil
}
