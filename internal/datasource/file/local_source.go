// Package file implements local filesystem-backed data sources.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local is a filesystem data source that opens one file from the local disk.
type Local struct{ path string }

// NewLocal returns a Local data source bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Name returns the path the source reads.
func (l *Local) Name() string { return l.path }

// Open opens the table file. A done ctx is reported before the filesystem is
// touched; open failures name the path and still match os.ErrNotExist.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}

// Dir resolves table files relative to a base directory.
type Dir struct{ root string }

// NewDir returns a Dir rooted at root.
func NewDir(root string) Dir { return Dir{root: root} }

// Root returns the base directory.
func (d Dir) Root() string { return d.root }

// File returns a Local source for name inside the directory.
func (d Dir) File(name string) *Local {
	return NewLocal(filepath.Join(d.root, name))
}

// Missing returns the names that do not exist as regular files in the
// directory, preserving the order of names.
func (d Dir) Missing(names ...string) []string {
	var out []string
	for _, n := range names {
		fi, err := os.Stat(filepath.Join(d.root, n))
		if err != nil || !fi.Mode().IsRegular() {
			out = append(out, n)
		}
	}
	return out
}
