// internal/walk/entry.go
package walk

import (
	"io/fs"
	"time"

	"github.com/gagin/fstree/internal/filter"
)

// Kind represents the type of filesystem entry.
type Kind uint8

const (
	KindFile Kind = iota
	KindDir
	KindSymlink
	kindOther
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	default:
		return "other"
	}
}

// KindFromMode derives the Kind from a file mode. Devices, sockets and pipes
// map to an unexported kind the walker skips.
func KindFromMode(mode fs.FileMode) Kind {
	switch {
	case mode.IsRegular():
		return KindFile
	case mode.IsDir():
		return KindDir
	case mode&fs.ModeSymlink != 0:
		return KindSymlink
	default:
		return kindOther
	}
}

// Entry is an immutable snapshot of one filesystem node taken at walk time.
type Entry struct {
	Path       string // Absolute path on the filesystem
	RelPath    string // Path relative to the walk root, using slashes
	Name       string // Final component of the path
	Kind       Kind
	Depth      int // Root = 0, its children = 1
	Size       int64
	ModTime    time.Time
	Mode       fs.FileMode // Permission bits
	LinkTarget string      // Set for symlinks, followed or not
	Verdict    filter.Verdict

	// Truncated marks a directory at the depth limit whose children were
	// never read.
	Truncated bool
}

// IsDir reports whether the entry is a directory (including a followed
// symlink to one).
func (e Entry) IsDir() bool { return e.Kind == KindDir }

func newEntry(absPath, relPath string, depth int, kind Kind, info fs.FileInfo, linkTarget string) Entry {
	e := Entry{
		Path:       absPath,
		RelPath:    relPath,
		Name:       info.Name(),
		Kind:       kind,
		Depth:      depth,
		ModTime:    info.ModTime(),
		Mode:       info.Mode().Perm(),
		LinkTarget: linkTarget,
		Verdict:    filter.Included,
	}
	if kind == KindFile {
		e.Size = info.Size()
	}
	return e
}
