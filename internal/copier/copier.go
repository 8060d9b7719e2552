// internal/copier/copier.go
package copier

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/gagin/fstree/internal/walk"
)

var (
	// ErrInvalidDestination is returned by Validate for a missing destination
	// or one that equals the source root.
	ErrInvalidDestination = errors.New("invalid destination")
	// ErrInvalidSource is returned by Run when the source root is not a
	// directory.
	ErrInvalidSource = errors.New("invalid source")
)

// Config extends the walk configuration with copy semantics.
type Config struct {
	walk.Config
	Dest      string
	Overwrite bool
	DryRun    bool
	Preserve  bool // Modification time and permission bits
}

// Validate checks the configuration before any filesystem work begins.
func (c Config) Validate() error {
	if c.Dest == "" {
		return fmt.Errorf("%w: destination is empty", ErrInvalidDestination)
	}
	src, err := filepath.Abs(c.Root)
	if err != nil {
		return fmt.Errorf("invalid source '%s': %w", c.Root, err)
	}
	dst, err := filepath.Abs(c.Dest)
	if err != nil {
		return fmt.Errorf("%w: '%s': %v", ErrInvalidDestination, c.Dest, err)
	}
	if src == dst {
		return fmt.Errorf("%w: '%s' is the source directory", ErrInvalidDestination, c.Dest)
	}
	return nil
}

// Executor applies a copy plan entry by entry. It is not safe for concurrent
// use; a run owns its report exclusively.
type Executor struct {
	fs afero.Fs
}

// New returns an executor over fs. Both source reads and destination writes
// go through it.
func New(fs afero.Fs) *Executor {
	return &Executor{fs: fs}
}

// NewOS returns an executor over the host filesystem.
func NewOS() *Executor {
	return New(afero.NewOsFs())
}

// Run walks cfg.Root and copies each entry as the walk yields it. A
// destination inside the source tree is never walked.
func (x *Executor) Run(cfg Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if info, err := x.fs.Stat(cfg.Root); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("%w: '%s' is not a directory", ErrInvalidSource, cfg.Root)
	}
	wcfg := cfg.Config
	if src, err := filepath.Abs(cfg.Root); err == nil {
		if dst, err := filepath.Abs(cfg.Dest); err == nil && strings.HasPrefix(dst, src+string(filepath.Separator)) {
			slog.Debug("Destination is inside the source, excluding it from the walk.", "dest", dst)
			wcfg.SkipPaths = append(append([]string{}, wcfg.SkipPaths...), dst)
		}
	}

	slog.Info("Starting copy.", "source", cfg.Root, "dest", cfg.Dest, "dryRun", cfg.DryRun,
		"overwrite", cfg.Overwrite, "preserve", cfg.Preserve)
	run := x.newRun(cfg)
	seq, walkErrs := walk.Seq(wcfg)
	for e := range seq {
		run.process(e)
	}
	for p, err := range walkErrs {
		run.report.Walk[p] = err
	}
	run.finish()
	return run.report, nil
}

// Execute copies an already collected entry sequence.
func (x *Executor) Execute(cfg Config, entries []walk.Entry) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	run := x.newRun(cfg)
	for _, e := range entries {
		run.process(e)
	}
	run.finish()
	return run.report, nil
}

type run struct {
	fs      afero.Fs
	cfg     Config
	report  *Report
	created []walk.Entry // Directories whose times are restored at the end

	destReady bool
	destErr   error
}

func (x *Executor) newRun(cfg Config) *run {
	return &run{fs: x.fs, cfg: cfg, report: newReport(cfg.DryRun)}
}

func (r *run) dest(e walk.Entry) string {
	return filepath.Join(r.cfg.Dest, filepath.FromSlash(e.RelPath))
}

// ensureDest creates the destination root on the first entry, so an empty
// or unreadable source leaves no trace. A dry run never creates it.
func (r *run) ensureDest() error {
	if r.destReady || r.cfg.DryRun {
		return r.destErr
	}
	r.destReady = true
	if err := r.fs.MkdirAll(r.cfg.Dest, 0o755); err != nil {
		r.destErr = fmt.Errorf("cannot create destination '%s': %w", r.cfg.Dest, err)
		slog.Error("Could not create destination.", "dest", r.cfg.Dest, "error", err)
	}
	return r.destErr
}

func (r *run) process(e walk.Entry) {
	o := Outcome{RelPath: e.RelPath, Kind: e.Kind, Status: StatusPlanned}
	if err := r.ensureDest(); err != nil {
		o.Status, o.Err = StatusFailed, err
	} else {
		switch e.Kind {
		case walk.KindDir:
			r.processDir(e, &o)
		case walk.KindSymlink:
			r.processSymlink(e, &o)
		default:
			r.processFile(e, &o)
		}
	}
	if o.Status == StatusFailed {
		o.Err = walk.NewPathError(e.RelPath, o.Err)
		slog.Warn("Copy failed, continuing.", "path", e.RelPath, "error", o.Err)
	} else {
		slog.Debug("Processed entry.", "path", e.RelPath, "action", o.Action, "status", o.Status, "reason", o.Reason)
	}
	r.report.record(o)
}

func (r *run) processDir(e walk.Entry, o *Outcome) {
	dst := r.dest(e)
	info, exists, err := r.lstat(dst)
	switch {
	case err != nil:
		o.Status, o.Err = StatusFailed, err
		return
	case exists && !info.IsDir():
		o.Status, o.Err = StatusFailed, fmt.Errorf("destination '%s' exists and is not a directory", dst)
		return
	case exists:
		o.Action, o.Status = ActionNone, StatusExists
		return
	}

	o.Action = ActionMkdir
	if r.cfg.DryRun {
		o.Status, o.Reason = StatusSkipped, ReasonDryRun
		return
	}
	if err := r.fs.MkdirAll(dst, 0o755); err != nil {
		o.Status, o.Err = StatusFailed, err
		return
	}
	o.Status = StatusCreated
	if r.cfg.Preserve {
		r.created = append(r.created, e)
	}
}

func (r *run) processFile(e walk.Entry, o *Outcome) {
	dst := r.dest(e)
	info, exists, err := r.lstat(dst)
	if err != nil {
		o.Status, o.Err = StatusFailed, err
		return
	}
	if exists && info.IsDir() {
		o.Status, o.Err = StatusFailed, fmt.Errorf("destination '%s' is a directory", dst)
		return
	}
	if exists && !r.cfg.Overwrite {
		o.Action, o.Status, o.Reason = ActionSkip, StatusSkipped, ReasonAlreadyExists
		return
	}

	o.Action = ActionCopy
	if exists {
		o.Action = ActionOverwrite
	}
	if r.cfg.DryRun {
		// Opening for read mutates nothing and surfaces unreadable sources
		// the same way a real run would.
		in, err := r.fs.Open(e.Path)
		if err != nil {
			o.Status, o.Err = StatusFailed, err
			return
		}
		_ = in.Close()
		o.Status, o.Reason = StatusSkipped, ReasonDryRun
		return
	}

	// Writing through a symlink would clobber its target, possibly outside
	// the destination tree; replace the link itself instead.
	if exists && info.Mode()&fs.ModeSymlink != 0 {
		if err := r.fs.Remove(dst); err != nil {
			o.Status, o.Err = StatusFailed, err
			return
		}
	}
	if err := r.copyFile(e.Path, dst, e.Mode); err != nil {
		o.Status, o.Err = StatusFailed, err
		return
	}
	o.Status = StatusCopied
	if exists {
		o.Status = StatusOverwritten
	}
	if r.cfg.Preserve {
		r.preserve(e, dst)
	}
}

func (r *run) processSymlink(e walk.Entry, o *Outcome) {
	linker, ok := r.fs.(afero.Linker)
	if !ok {
		o.Action, o.Status, o.Reason = ActionSkip, StatusSkipped, ReasonUnsupported
		return
	}
	dst := r.dest(e)
	info, exists, err := r.lstat(dst)
	if err != nil {
		o.Status, o.Err = StatusFailed, err
		return
	}
	if exists && info.IsDir() {
		o.Status, o.Err = StatusFailed, fmt.Errorf("destination '%s' is a directory", dst)
		return
	}
	if exists && !r.cfg.Overwrite {
		o.Action, o.Status, o.Reason = ActionSkip, StatusSkipped, ReasonAlreadyExists
		return
	}

	o.Action = ActionLink
	if r.cfg.DryRun {
		o.Status, o.Reason = StatusSkipped, ReasonDryRun
		return
	}
	if exists {
		if err := r.fs.Remove(dst); err != nil {
			o.Status, o.Err = StatusFailed, err
			return
		}
	}
	if err := linker.SymlinkIfPossible(e.LinkTarget, dst); err != nil {
		o.Status, o.Err = StatusFailed, err
		return
	}
	o.Status = StatusCopied
	if exists {
		o.Status = StatusOverwritten
	}
}

// copyFile truncates dst in place; an interrupted copy leaves a partial file.
func (r *run) copyFile(src, dst string, mode fs.FileMode) (err error) {
	in, err := r.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	perm := mode.Perm()
	if perm == 0 {
		perm = 0o644
	}
	out, err := r.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if errClose := out.Close(); err == nil && errClose != nil {
			err = errClose
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return fmt.Errorf("copy to '%s' failed: %w", dst, err)
	}
	return nil
}

// preserve copies permission bits and modification time. Failures are
// warnings: the data is already in place.
func (r *run) preserve(e walk.Entry, dst string) {
	if err := r.fs.Chmod(dst, e.Mode.Perm()); err != nil {
		slog.Warn("Could not preserve permissions.", "path", e.RelPath, "error", err)
		r.report.Warnings[e.RelPath] = err
	}
	if err := r.fs.Chtimes(dst, e.ModTime, e.ModTime); err != nil {
		slog.Warn("Could not preserve modification time.", "path", e.RelPath, "error", err)
		r.report.Warnings[e.RelPath] = err
	}
}

// finish restores directory metadata deepest first, since copying children
// bumps the parent's modification time.
func (r *run) finish() {
	for i := len(r.created) - 1; i >= 0; i-- {
		r.preserve(r.created[i], r.dest(r.created[i]))
	}
	slog.Info("Copy finished.", "copied", r.report.Copied, "overwritten", r.report.Overwritten,
		"skipped", r.report.Skipped, "failed", r.report.Failed, "dirsCreated", r.report.DirsCreated)
}

func (r *run) lstat(p string) (fs.FileInfo, bool, error) {
	var info fs.FileInfo
	var err error
	if lstater, ok := r.fs.(afero.Lstater); ok {
		info, _, err = lstater.LstatIfPossible(p)
	} else {
		info, err = r.fs.Stat(p)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return info, true, nil
}
