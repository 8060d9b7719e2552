// internal/render/render_test.go
package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gagin/fstree/internal/filter"
	"github.com/gagin/fstree/internal/walk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dir(rel, name string, depth int) walk.Entry {
	return walk.Entry{RelPath: rel, Name: name, Kind: walk.KindDir, Depth: depth}
}

func file(rel, name string, depth int, size int64) walk.Entry {
	return walk.Entry{RelPath: rel, Name: name, Kind: walk.KindFile, Depth: depth, Size: size}
}

func TestRender_NestedConnectors(t *testing.T) {
	entries := []walk.Entry{
		dir("a", "a", 1),
		dir("a/b", "b", 2),
		file("a/b/c.txt", "c.txt", 3, 1),
		file("a/z.txt", "z.txt", 2, 1),
		file("b.txt", "b.txt", 1, 1),
	}

	expected := "project\n" +
		"├── a/\n" +
		"│   ├── b/\n" +
		"│   │   └── c.txt\n" +
		"│   └── z.txt\n" +
		"└── b.txt\n"
	assert.Equal(t, expected, String("project", entries, Options{}))
}

func TestRender_LastDirectoryUsesBlankIndent(t *testing.T) {
	entries := []walk.Entry{
		file("1.txt", "1.txt", 1, 1),
		dir("d", "d", 1),
		dir("d/e", "e", 2),
		file("d/e/f.txt", "f.txt", 3, 1),
		file("d/g.txt", "g.txt", 2, 1),
	}

	expected := "root\n" +
		"├── 1.txt\n" +
		"└── d/\n" +
		"    ├── e/\n" +
		"    │   └── f.txt\n" +
		"    └── g.txt\n"
	assert.Equal(t, expected, String("root", entries, Options{}))
}

func TestRender_ZeroEntriesIsRootOnly(t *testing.T) {
	assert.Equal(t, "/tmp/empty\n", String("/tmp/empty", nil, Options{}))
	assert.Equal(t, ".\n", String(".", []walk.Entry{}, Options{ShowSize: true}))
}

func TestRender_Labels(t *testing.T) {
	entries := []walk.Entry{
		{RelPath: "big.bin", Name: "big.bin", Kind: walk.KindFile, Depth: 1, Size: 1536},
		{RelPath: "deep", Name: "deep", Kind: walk.KindDir, Depth: 1, Truncated: true},
		{RelPath: "link", Name: "link", Kind: walk.KindSymlink, Depth: 1, LinkTarget: "../elsewhere"},
	}

	expected := "r\n" +
		"├── big.bin (1.5 KiB)\n" +
		"├── deep/ …\n" +
		"└── link -> ../elsewhere\n"
	assert.Equal(t, expected, String("r", entries, Options{ShowSize: true}))
}

func TestRender_WalkScenario(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "b"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "x.rs"), []byte("fn main() {}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "y.log"), []byte("noise"), 0644))

	rule, err := filter.NewRule(nil, []string{`\.log$`})
	require.NoError(t, err)
	res := walk.Walk(walk.Config{Root: root, Rule: rule})

	expected := "src\n" +
		"└── a/\n" +
		"    └── x.rs\n"
	assert.Equal(t, expected, String("src", res.Entries, Options{}))

	rule, err = filter.NewRule([]string{`\.go$`}, nil)
	require.NoError(t, err)
	res = walk.Walk(walk.Config{Root: root, Rule: rule})
	assert.Equal(t, "src\n", String("src", res.Entries, Options{}))
}

func TestFormatBytes(t *testing.T) {
	testCases := []struct {
		input    int64
		expected string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1 MiB"},
		{5 * 1024 * 1024 * 1024, "5 GiB"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, FormatBytes(tc.input))
	}
}
