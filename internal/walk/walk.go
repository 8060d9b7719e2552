// internal/walk/walk.go
package walk

import (
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gagin/fstree/internal/filter"
)

// Ignorer reports paths that an ignore file (.gitignore and friends) hides.
type Ignorer interface {
	Ignored(relPath string, isDir bool) bool
}

// Config is the immutable configuration for one traversal.
type Config struct {
	Root           string
	MaxDepth       int // 0 means unbounded
	ShowEmpty      bool
	IncludeHidden  bool
	FollowSymlinks bool
	Rule           *filter.Rule
	Ignore         Ignorer  // Optional
	SkipPaths      []string // Absolute paths that are never walked
}

// Result is the fully collected output of a walk. Partial results and
// partial failures coexist.
type Result struct {
	Entries []Entry
	Errors  Errors
}

// Counts returns the number of directories and non-directories yielded.
func (r *Result) Counts() (dirs, files int) {
	for _, e := range r.Entries {
		if e.IsDir() {
			dirs++
		} else {
			files++
		}
	}
	return dirs, files
}

// Walk performs a fresh traversal and collects every yielded entry.
func Walk(cfg Config) *Result {
	seq, errs := Seq(cfg)
	res := &Result{Entries: make([]Entry, 0), Errors: errs}
	for e := range seq {
		res.Entries = append(res.Entries, e)
	}
	return res
}

// Seq returns the lazy form of the walk. Every iteration performs a fresh
// traversal and resets the returned Errors map before filling it.
//
// Entries come depth-first, pre-order, children sorted by name. Excluded
// directories are pruned. Unless cfg.ShowEmpty is set, a directory is held
// back until its first surviving descendant is yielded, so directories with
// nothing left after filtering never appear.
func Seq(cfg Config) (iter.Seq[Entry], Errors) {
	errs := make(Errors)
	seq := func(yield func(Entry) bool) {
		clear(errs)
		w := &walker{cfg: cfg, errs: errs, yield: yield, skip: make(map[string]struct{})}
		w.run()
	}
	return seq, errs
}

type walker struct {
	cfg     Config
	errs    Errors
	yield   func(Entry) bool
	pending []Entry
	skip    map[string]struct{}
}

func (w *walker) run() {
	root, err := filepath.Abs(w.cfg.Root)
	if err != nil {
		w.errs.record(".", err)
		return
	}
	for _, p := range w.cfg.SkipPaths {
		if abs, err := filepath.Abs(p); err == nil {
			w.skip[abs] = struct{}{}
		}
	}

	info, err := os.Stat(root)
	if err != nil {
		w.errs.record(".", err)
		return
	}
	if !info.IsDir() {
		// A leaf root has nothing below it; the tree is the root alone.
		slog.Debug("Root is not a directory, nothing to walk.", "root", root, "mode", info.Mode().String())
		return
	}

	slog.Debug("Starting walk.", "root", root, "maxDepth", w.cfg.MaxDepth, "showEmpty", w.cfg.ShowEmpty,
		"followSymlinks", w.cfg.FollowSymlinks)
	w.walkDir(root, ".", 1, []fs.FileInfo{info})
}

// emit flushes held-back ancestor directories, then yields e.
func (w *walker) emit(e Entry) bool {
	for _, p := range w.pending {
		if !w.yield(p) {
			return false
		}
	}
	w.pending = w.pending[:0]
	return w.yield(e)
}

// walkDir visits the children of absDir, which sit at depth. chain holds the
// identities of absDir and its ancestors for cycle detection. It returns
// false once the consumer stops iterating.
func (w *walker) walkDir(absDir, relDir string, depth int, chain []fs.FileInfo) bool {
	dirents, err := os.ReadDir(absDir)
	if err != nil {
		// ReadDir returns what it managed to read before failing.
		w.errs.record(relDir, err)
	}

	for _, de := range dirents {
		name := de.Name()
		if !w.cfg.IncludeHidden && strings.HasPrefix(name, ".") {
			continue
		}
		absPath := filepath.Join(absDir, name)
		relPath := joinRel(relDir, name)
		if _, skip := w.skip[absPath]; skip {
			slog.Debug("Skipping path excluded from the walk.", "path", relPath)
			continue
		}

		info, err := os.Lstat(absPath)
		if err != nil {
			w.errs.record(relPath, err)
			continue
		}
		kind := KindFromMode(info.Mode())
		linkTarget := ""
		if kind == KindSymlink {
			linkTarget, _ = os.Readlink(absPath)
			if w.cfg.FollowSymlinks {
				targetInfo, err := os.Stat(absPath)
				if err != nil {
					w.errs.record(relPath, err)
					continue
				}
				info = targetInfo
				kind = KindFromMode(info.Mode())
			}
		}
		if kind == kindOther {
			slog.Debug("Skipping special file.", "path", relPath, "mode", info.Mode().String())
			continue
		}

		isDir := kind == KindDir
		if verdict, reason, pattern := w.cfg.Rule.Evaluate(relPath, isDir); verdict == filter.Excluded {
			logMsg := "Excluding file."
			if isDir {
				logMsg = "Excluding directory and its contents."
			}
			slog.Debug(logMsg, "path", relPath, "reason", reason, "pattern", pattern)
			continue
		}
		if w.cfg.Ignore != nil && w.cfg.Ignore.Ignored(relPath, isDir) {
			slog.Debug("Excluding ignored path.", "path", relPath, "reason", "ignore file")
			continue
		}

		entry := newEntry(absPath, relPath, depth, kind, info, linkTarget)
		if !isDir {
			if !w.emit(entry) {
				return false
			}
			continue
		}

		if onChain(chain, info) {
			w.errs.record(relPath, &PathError{
				Path: relPath,
				Kind: ErrSymlinkCycle,
				Err:  fmt.Errorf("%s resolves to an ancestor directory", linkTarget),
			})
			continue
		}

		if w.cfg.MaxDepth > 0 && depth >= w.cfg.MaxDepth {
			entry.Truncated = true
			if !w.emit(entry) {
				return false
			}
			continue
		}

		held := len(w.pending)
		if w.cfg.ShowEmpty {
			if !w.emit(entry) {
				return false
			}
		} else {
			w.pending = append(w.pending, entry)
		}
		if !w.walkDir(absPath, relPath, depth+1, append(chain, info)) {
			return false
		}
		if !w.cfg.ShowEmpty && len(w.pending) > held {
			slog.Debug("Suppressing empty directory.", "path", relPath)
			w.pending = w.pending[:held]
		}
	}
	return true
}

func onChain(chain []fs.FileInfo, info fs.FileInfo) bool {
	for _, ancestor := range chain {
		if os.SameFile(ancestor, info) {
			return true
		}
	}
	return false
}

func joinRel(dir, name string) string {
	if dir == "." {
		return name
	}
	return path.Join(dir, name)
}
