// internal/ignore/ignore.go
package ignore

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	gocodewalker "github.com/boyter/gocodewalker"
)

// Set is the list of paths that survive .gitignore and .ignore rules under
// a root. Directories are kept only when they lead to a surviving file.
type Set struct {
	root  string
	files map[string]struct{}
	dirs  map[string]struct{}
}

// Load walks root once with gocodewalker, which applies every .gitignore and
// .ignore file it meets, and records what survives. The walker's goroutines
// are fully drained before Load returns.
func Load(root string, includeHidden bool) (*Set, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid root '%s': %w", root, err)
	}
	if info, err := os.Stat(absRoot); err != nil {
		return nil, fmt.Errorf("cannot scan ignore files under '%s': %w", absRoot, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("cannot scan ignore files under '%s': not a directory", absRoot)
	}
	s := &Set{
		root:  absRoot,
		files: make(map[string]struct{}),
		dirs:  make(map[string]struct{}),
	}

	fileListQueue := make(chan *gocodewalker.File, 100)
	fileWalker := gocodewalker.NewFileWalker(absRoot, fileListQueue)
	fileWalker.IgnoreGitIgnore = false
	fileWalker.IgnoreIgnoreFile = false
	fileWalker.IncludeHidden = includeHidden

	var (
		walkErr        error
		errMu          sync.Mutex
		firstWalkError error
	)
	processingDone := make(chan struct{})

	go func() {
		defer close(processingDone)
		fileWalker.SetErrorHandler(func(e error) bool {
			slog.Warn("Error reported by file walker.", "root", absRoot, "error", e)
			// Called from the walker's own goroutines.
			errMu.Lock()
			if firstWalkError == nil {
				firstWalkError = e
			}
			errMu.Unlock()
			return true
		})
		walkErr = fileWalker.Start()
	}()

	for f := range fileListQueue {
		rel, errRel := filepath.Rel(absRoot, f.Location)
		if errRel != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		s.add(filepath.ToSlash(rel))
	}
	<-processingDone

	if walkErr != nil {
		return nil, fmt.Errorf("ignore-file scan of '%s' failed: %w", absRoot, walkErr)
	}
	errMu.Lock()
	defer errMu.Unlock()
	if firstWalkError != nil {
		slog.Debug("Ignore-file scan finished with errors.", "first_error", firstWalkError)
	}
	slog.Debug("Loaded ignore-file allow list.", "root", absRoot, "files", len(s.files), "dirs", len(s.dirs))
	return s, nil
}

func (s *Set) add(rel string) {
	s.files[rel] = struct{}{}
	for dir := path.Dir(rel); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if _, seen := s.dirs[dir]; seen {
			return
		}
		s.dirs[dir] = struct{}{}
	}
}

// Ignored reports whether relPath (slash separated, relative to the root
// Load was given) is hidden by an ignore file.
func (s *Set) Ignored(relPath string, isDir bool) bool {
	if isDir {
		_, ok := s.dirs[relPath]
		return !ok
	}
	_, ok := s.files[relPath]
	return !ok
}

// Len returns the number of surviving files.
func (s *Set) Len() int { return len(s.files) }
