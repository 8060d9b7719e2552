// internal/render/render.go
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/gagin/fstree/internal/walk"
)

// Options tweaks what each tree line shows.
type Options struct {
	ShowSize bool // Append a human readable size to files
}

const (
	branch     = "├── "
	lastBranch = "└── "
	pipe       = "│   "
	blank      = "    "
)

// Render writes root followed by one connector-prefixed line per entry.
// entries must be in the walker's depth-first pre-order.
func Render(w io.Writer, root string, entries []walk.Entry, opts Options) error {
	if _, err := fmt.Fprintln(w, root); err != nil {
		return err
	}
	isLast := lastSiblings(entries)

	// open[d] is true when the most recent entry at depth d was the last
	// child of its parent, so no pipe continues below it.
	open := make([]bool, 0, 8)
	var line strings.Builder
	for i, e := range entries {
		depth := e.Depth
		if depth < 1 {
			depth = 1
		}
		for len(open) < depth {
			open = append(open, false)
		}
		open = open[:depth]
		open[depth-1] = isLast[i]

		line.Reset()
		for _, ancestorLast := range open[:depth-1] {
			line.WriteString(tern(ancestorLast, blank, pipe))
		}
		line.WriteString(tern(isLast[i], lastBranch, branch))
		line.WriteString(label(e, opts))
		line.WriteByte('\n')
		if _, err := io.WriteString(w, line.String()); err != nil {
			return err
		}
	}
	return nil
}

// String is Render into a string.
func String(root string, entries []walk.Entry, opts Options) string {
	var b strings.Builder
	_ = Render(&b, root, entries, opts)
	return b.String()
}

// lastSiblings does a backward pass: an entry is the last child of its
// parent when no later entry at the same depth appears before the sequence
// climbs back above it.
func lastSiblings(entries []walk.Entry) []bool {
	isLast := make([]bool, len(entries))
	later := make(map[int]bool)
	for i := len(entries) - 1; i >= 0; i-- {
		d := entries[i].Depth
		isLast[i] = !later[d]
		later[d] = true
		for k := range later {
			if k > d {
				delete(later, k)
			}
		}
	}
	return isLast
}

func label(e walk.Entry, opts Options) string {
	switch e.Kind {
	case walk.KindDir:
		name := e.Name + "/"
		if e.LinkTarget != "" {
			name += " -> " + e.LinkTarget
		}
		if e.Truncated {
			name += " …"
		}
		return name
	case walk.KindSymlink:
		return e.Name + " -> " + e.LinkTarget
	default:
		if opts.ShowSize {
			return fmt.Sprintf("%s (%s)", e.Name, FormatBytes(e.Size))
		}
		return e.Name
	}
}

// FormatBytes formats bytes into human-readable string.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	val := float64(b) / float64(div)
	unitPrefix := "KMGTPE"[exp]
	if val == float64(int64(val)) {
		return fmt.Sprintf("%d %ciB", int64(val), unitPrefix)
	}
	return fmt.Sprintf("%.1f %ciB", val, unitPrefix)
}

func tern[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}
