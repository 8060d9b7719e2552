// internal/ignore/file.go
package ignore

import (
	"fmt"
	"log/slog"

	gitignorelib "github.com/sabhiram/go-gitignore"

	"github.com/gagin/fstree/internal/walk"
)

// FileMatcher applies one gitignore-syntax pattern file to paths relative
// to the walk root, wherever the file itself lives.
type FileMatcher struct {
	path    string
	matcher gitignorelib.IgnoreParser
}

// CompileFile reads and compiles the pattern file at p.
func CompileFile(p string) (*FileMatcher, error) {
	matcher, err := gitignorelib.CompileIgnoreFile(p)
	if err != nil {
		return nil, fmt.Errorf("error compiling ignore file %s: %w", p, err)
	}
	slog.Debug("Successfully compiled ignore file.", "path", p)
	return &FileMatcher{path: p, matcher: matcher}, nil
}

// CompileLines compiles patterns given inline, one per element.
func CompileLines(lines ...string) *FileMatcher {
	return &FileMatcher{path: "<inline>", matcher: gitignorelib.CompileIgnoreLines(lines...)}
}

// Ignored reports whether relPath matches. Directory-only patterns ("build/")
// need the trailing slash to match, so directories are tried both ways.
func (m *FileMatcher) Ignored(relPath string, isDir bool) bool {
	if m.matcher.MatchesPath(relPath) {
		return true
	}
	return isDir && m.matcher.MatchesPath(relPath+"/")
}

// Chain ignores a path when any of its members does.
type Chain []walk.Ignorer

func (c Chain) Ignored(relPath string, isDir bool) bool {
	for _, ig := range c {
		if ig.Ignored(relPath, isDir) {
			return true
		}
	}
	return false
}
