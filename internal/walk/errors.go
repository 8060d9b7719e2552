// internal/walk/errors.go
package walk

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
)

// Error kinds recorded against individual paths.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrIO               = errors.New("io failure")
	ErrSymlinkCycle     = errors.New("symlink cycle")
)

// PathError attaches an error kind to the path it happened on.
type PathError struct {
	Path string // Relative to the walk root, "." for the root itself
	Kind error
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *PathError) Unwrap() []error { return []error{e.Kind, e.Err} }

// Classify maps an arbitrary filesystem error onto one of the error kinds.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrSymlinkCycle):
		return ErrSymlinkCycle
	case errors.Is(err, fs.ErrPermission):
		return ErrPermissionDenied
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	default:
		return ErrIO
	}
}

// NewPathError classifies err and wraps it for relPath. An existing
// *PathError is returned unchanged.
func NewPathError(relPath string, err error) *PathError {
	var pe *PathError
	if errors.As(err, &pe) {
		return pe
	}
	return &PathError{Path: relPath, Kind: Classify(err), Err: err}
}

// Errors maps a relative path to the error recorded against it.
type Errors map[string]error

func (e Errors) record(relPath string, err error) {
	pe := NewPathError(relPath, err)
	slog.Warn("Walk error, continuing with siblings.", "path", relPath, "kind", pe.Kind, "error", pe.Err)
	e[relPath] = pe
}

// Paths returns the failed paths in sorted order.
func (e Errors) Paths() []string {
	paths := make([]string, 0, len(e))
	for p := range e {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
