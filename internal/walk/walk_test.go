// internal/walk/walk_test.go
package walk

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"

	"github.com/gagin/fstree/internal/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Test Helper Functions ---

// setupTestDir builds a tree from structure: keys ending in "/" are
// directories, everything else is a file with the given content.
func setupTestDir(t *testing.T, structure map[string]string) string {
	t.Helper()
	tempDir := t.TempDir()
	paths := make([]string, 0, len(structure))
	for p := range structure {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, relPath := range paths {
		absPath := filepath.Join(tempDir, filepath.FromSlash(relPath))
		if strings.HasSuffix(relPath, "/") {
			require.NoError(t, os.MkdirAll(absPath, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(absPath), 0755))
		err := os.WriteFile(absPath, []byte(structure[relPath]), 0644)
		require.NoError(t, err, "Failed to write file: %s", absPath)
	}
	return tempDir
}

func mustRule(t *testing.T, include, exclude []string) *filter.Rule {
	t.Helper()
	rule, err := filter.NewRule(include, exclude)
	require.NoError(t, err)
	return rule
}

func relPaths(entries []Entry) []string {
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.RelPath
	}
	return paths
}

func skipWithoutSymlinks(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated privileges on windows")
	}
}

// --- Tests ---

func TestWalk_ExcludeAndEmptyFolderScenario(t *testing.T) {
	root := setupTestDir(t, map[string]string{
		"a/x.rs":  "fn main() {}",
		"a/y.log": "noise",
		"b/":      "",
	})

	res := Walk(Config{Root: root, Rule: mustRule(t, nil, []string{`\.log$`})})

	assert.Empty(t, res.Errors)
	assert.Equal(t, []string{"a", "a/x.rs"}, relPaths(res.Entries))
	assert.Equal(t, KindDir, res.Entries[0].Kind)
	assert.Equal(t, 1, res.Entries[0].Depth)
	assert.Equal(t, KindFile, res.Entries[1].Kind)
	assert.Equal(t, 2, res.Entries[1].Depth)
	assert.Equal(t, int64(len("fn main() {}")), res.Entries[1].Size)
	assert.Equal(t, filepath.Join(root, "a", "x.rs"), res.Entries[1].Path)
	assert.Equal(t, filter.Included, res.Entries[1].Verdict)
}

func TestWalk_ShowEmptyKeepsEmptyDirectories(t *testing.T) {
	root := setupTestDir(t, map[string]string{
		"a/x.rs":     "x",
		"b/":         "",
		"c/d/":       "",
		"c/only.log": "noise",
	})

	res := Walk(Config{Root: root, ShowEmpty: true, Rule: mustRule(t, nil, []string{`\.log$`})})
	assert.Equal(t, []string{"a", "a/x.rs", "b", "c", "c/d"}, relPaths(res.Entries))

	res = Walk(Config{Root: root, Rule: mustRule(t, nil, []string{`\.log$`})})
	assert.Equal(t, []string{"a", "a/x.rs"}, relPaths(res.Entries))
}

func TestWalk_PreOrderLexicographic(t *testing.T) {
	root := setupTestDir(t, map[string]string{
		"b.txt":       "b",
		"a/z.txt":     "z",
		"a/b/c.txt":   "c",
		"A.txt":       "upper",
		"c/":          "",
		"c/d/e/f.txt": "f",
	})

	res := Walk(Config{Root: root})
	assert.Equal(t, []string{
		"A.txt",
		"a", "a/b", "a/b/c.txt", "a/z.txt",
		"b.txt",
		"c", "c/d", "c/d/e", "c/d/e/f.txt",
	}, relPaths(res.Entries))
}

func TestWalk_ExclusionPrecedence(t *testing.T) {
	root := setupTestDir(t, map[string]string{
		"src/main.rs":       "main",
		"src/gen/auto.rs":   "generated",
		"src/lib.rs":        "lib",
		"vendor/dep/dep.rs": "dep",
	})

	rule := mustRule(t, []string{`\.rs$`}, []string{`(^|/)gen(/|$)`, `^vendor`})
	res := Walk(Config{Root: root, Rule: rule})

	assert.Equal(t, []string{"src", "src/lib.rs", "src/main.rs"}, relPaths(res.Entries))
	for _, e := range res.Entries {
		for _, re := range rule.Exclude {
			assert.False(t, re.MatchString(e.RelPath), "excluded path %s was yielded", e.RelPath)
		}
	}
}

func TestWalk_IncludePatternPrunesDirectoriesWithoutMatches(t *testing.T) {
	root := setupTestDir(t, map[string]string{
		"a/x.rs":    "x",
		"a/y.log":   "y",
		"docs/r.md": "readme",
		"top.rs":    "top",
	})

	res := Walk(Config{Root: root, Rule: mustRule(t, []string{`\.rs$`}, nil)})
	assert.Equal(t, []string{"a", "a/x.rs", "top.rs"}, relPaths(res.Entries))
}

func TestWalk_MaxDepth(t *testing.T) {
	root := setupTestDir(t, map[string]string{
		"a/b/c/deep.txt": "deep",
		"a/b/mid.txt":    "mid",
		"a/top.txt":      "top",
		"root.txt":       "root",
		"e/":             "",
	})

	res := Walk(Config{Root: root, MaxDepth: 2})
	assert.Equal(t, []string{"a", "a/b", "a/top.txt", "root.txt"}, relPaths(res.Entries))
	for _, e := range res.Entries {
		assert.LessOrEqual(t, e.Depth, 2)
	}
	assert.True(t, res.Entries[1].Truncated, "directory at the depth limit is marked truncated")
	assert.False(t, res.Entries[0].Truncated)

	res = Walk(Config{Root: root, MaxDepth: 1})
	assert.Equal(t, []string{"a", "e", "root.txt"}, relPaths(res.Entries))
	for _, e := range res.Entries {
		assert.Equal(t, 1, e.Depth)
	}
}

func TestWalk_HiddenEntries(t *testing.T) {
	root := setupTestDir(t, map[string]string{
		".git/config": "[core]",
		".env":        "SECRET=1",
		"visible.txt": "hi",
	})

	res := Walk(Config{Root: root})
	assert.Equal(t, []string{"visible.txt"}, relPaths(res.Entries))

	res = Walk(Config{Root: root, IncludeHidden: true})
	assert.Equal(t, []string{".env", ".git", ".git/config", "visible.txt"}, relPaths(res.Entries))
}

func TestWalk_SkipPaths(t *testing.T) {
	root := setupTestDir(t, map[string]string{
		"src/a.txt": "a",
		"out/a.txt": "copied",
	})

	res := Walk(Config{Root: root, SkipPaths: []string{filepath.Join(root, "out")}})
	assert.Equal(t, []string{"src", "src/a.txt"}, relPaths(res.Entries))
}

type stubIgnorer map[string]bool

func (s stubIgnorer) Ignored(relPath string, isDir bool) bool { return s[relPath] }

func TestWalk_Ignorer(t *testing.T) {
	root := setupTestDir(t, map[string]string{
		"build/out.bin": "bin",
		"main.go":       "package main",
		"notes.txt":     "notes",
	})

	res := Walk(Config{Root: root, Ignore: stubIgnorer{"build": true, "notes.txt": true}})
	assert.Equal(t, []string{"main.go"}, relPaths(res.Entries))
}

func TestWalk_RootErrors(t *testing.T) {
	res := Walk(Config{Root: filepath.Join(t.TempDir(), "missing")})
	assert.Empty(t, res.Entries)
	require.Contains(t, res.Errors, ".")
	assert.True(t, errors.Is(res.Errors["."], ErrNotFound))
}

func TestWalk_FileRootIsALeaf(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	res := Walk(Config{Root: file})
	assert.Empty(t, res.Entries)
	assert.Empty(t, res.Errors)
}

func TestWalk_PermissionDeniedContinuesWithSiblings(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	root := setupTestDir(t, map[string]string{
		"a/ok.txt":     "ok",
		"locked/x.txt": "secret",
		"z/ok.txt":     "ok",
	})
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	res := Walk(Config{Root: root, ShowEmpty: true})

	assert.Equal(t, []string{"a", "a/ok.txt", "locked", "z", "z/ok.txt"}, relPaths(res.Entries))
	require.Contains(t, res.Errors, "locked")
	assert.True(t, errors.Is(res.Errors["locked"], ErrPermissionDenied))
	var pe *PathError
	require.True(t, errors.As(res.Errors["locked"], &pe))
	assert.Equal(t, "locked", pe.Path)
}

func TestWalk_SymlinksNotFollowed(t *testing.T) {
	skipWithoutSymlinks(t)
	root := setupTestDir(t, map[string]string{"a/x.txt": "x"})
	require.NoError(t, os.Symlink("a", filepath.Join(root, "link")))
	require.NoError(t, os.Symlink("nowhere", filepath.Join(root, "broken")))

	res := Walk(Config{Root: root})

	assert.Empty(t, res.Errors)
	assert.Equal(t, []string{"a", "a/x.txt", "broken", "link"}, relPaths(res.Entries))
	assert.Equal(t, KindSymlink, res.Entries[2].Kind)
	assert.Equal(t, "nowhere", res.Entries[2].LinkTarget)
	assert.Equal(t, KindSymlink, res.Entries[3].Kind)
	assert.Equal(t, "a", res.Entries[3].LinkTarget)
}

func TestWalk_FollowedSymlinks(t *testing.T) {
	skipWithoutSymlinks(t)
	root := setupTestDir(t, map[string]string{"a/x.txt": "x"})
	require.NoError(t, os.Symlink("a", filepath.Join(root, "link")))
	require.NoError(t, os.Symlink("nowhere", filepath.Join(root, "broken")))

	res := Walk(Config{Root: root, FollowSymlinks: true})

	assert.Equal(t, []string{"a", "a/x.txt", "link", "link/x.txt"}, relPaths(res.Entries))
	assert.Equal(t, KindDir, res.Entries[2].Kind)
	require.Contains(t, res.Errors, "broken")
	assert.True(t, errors.Is(res.Errors["broken"], ErrNotFound))
}

func TestWalk_SymlinkCycleIsReported(t *testing.T) {
	skipWithoutSymlinks(t)
	root := setupTestDir(t, map[string]string{"a/b/x.txt": "x"})
	require.NoError(t, os.Symlink("..", filepath.Join(root, "a", "b", "up")))
	require.NoError(t, os.Symlink(root, filepath.Join(root, "a", "self")))

	res := Walk(Config{Root: root, FollowSymlinks: true})

	assert.Equal(t, []string{"a", "a/b", "a/b/x.txt"}, relPaths(res.Entries))
	require.Contains(t, res.Errors, "a/b/up")
	require.Contains(t, res.Errors, "a/self")
	assert.True(t, errors.Is(res.Errors["a/b/up"], ErrSymlinkCycle))
	assert.True(t, errors.Is(res.Errors["a/self"], ErrSymlinkCycle))
}

func TestWalk_SymlinkCycleAtDepthLimit(t *testing.T) {
	skipWithoutSymlinks(t)
	root := setupTestDir(t, map[string]string{"a/x.txt": "x"})
	require.NoError(t, os.Symlink("..", filepath.Join(root, "a", "up")))

	res := Walk(Config{Root: root, FollowSymlinks: true, MaxDepth: 2})

	assert.Equal(t, []string{"a", "a/x.txt"}, relPaths(res.Entries))
	require.Contains(t, res.Errors, "a/up")
	assert.True(t, errors.Is(res.Errors["a/up"], ErrSymlinkCycle))
}

func TestSeq_LazyAndRestartable(t *testing.T) {
	root := setupTestDir(t, map[string]string{
		"a/1.txt": "1",
		"a/2.txt": "2",
		"b/3.txt": "3",
	})

	seq, errs := Seq(Config{Root: root})
	var first []string
	for e := range seq {
		first = append(first, e.RelPath)
		if len(first) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "a/1.txt"}, first)
	assert.Empty(t, errs)

	var all []string
	for e := range seq {
		all = append(all, e.RelPath)
	}
	assert.Equal(t, []string{"a", "a/1.txt", "a/2.txt", "b", "b/3.txt"}, all)
}

func TestResult_Counts(t *testing.T) {
	root := setupTestDir(t, map[string]string{
		"a/1.txt": "1",
		"a/2.txt": "2",
		"b/3.txt": "3",
	})
	dirs, files := Walk(Config{Root: root}).Counts()
	assert.Equal(t, 2, dirs)
	assert.Equal(t, 3, files)
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(nil))
	assert.Equal(t, ErrPermissionDenied, Classify(os.ErrPermission))
	assert.Equal(t, ErrNotFound, Classify(&os.PathError{Op: "open", Path: "x", Err: os.ErrNotExist}))
	assert.Equal(t, ErrIO, Classify(errors.New("disk on fire")))
	assert.Equal(t, ErrSymlinkCycle, Classify(&PathError{Kind: ErrSymlinkCycle, Err: errors.New("loop")}))
}
