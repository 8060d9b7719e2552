// internal/report/report.go
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/gagin/fstree/internal/copier"
	"github.com/gagin/fstree/internal/walk"
)

// Printer writes run summaries. Styles are bound to the writer's own
// renderer, so pipes and buffers get plain text.
type Printer struct {
	w       io.Writer
	Quiet   bool
	Verbose bool

	title  lipgloss.Style
	good   lipgloss.Style
	warn   lipgloss.Style
	bad    lipgloss.Style
	dimmed lipgloss.Style
}

// New returns a Printer writing to w.
func New(w io.Writer, quiet, verbose bool) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		Quiet:   quiet,
		Verbose: verbose,
		title:   r.NewStyle().Bold(true),
		good:    r.NewStyle().Foreground(lipgloss.Color("green")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("yellow")),
		bad:     r.NewStyle().Foreground(lipgloss.Color("red")).Bold(true),
		dimmed:  r.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Counts prints the "N directories, M files" footer under a tree.
func (p *Printer) Counts(res *walk.Result) {
	if p.Quiet {
		return
	}
	dirs, files := res.Counts()
	fmt.Fprintf(p.w, "\n%d %s, %d %s\n", dirs, plural(dirs, "directory", "directories"), files, plural(files, "file", "files"))
}

// Errors lists walk errors. It prints even in quiet mode and nothing at all
// when there are none.
func (p *Printer) Errors(errs walk.Errors) {
	if len(errs) == 0 {
		return
	}
	p.listSection(p.bad, "Errors encountered (%d):", errs)
}

// Copy prints the summary of a copy run.
func (p *Printer) Copy(rep *copier.Report) {
	if !p.Quiet {
		if rep.DryRun {
			fmt.Fprintln(p.w, p.warn.Render("Dry run: no changes were made."))
		}
		if p.Verbose {
			for _, o := range rep.Outcomes {
				fmt.Fprintln(p.w, p.outcomeLine(o))
			}
		}
		fmt.Fprintln(p.w, p.title.Render("--- Summary ---"))
		p.countLine("Copied", rep.Copied, p.good)
		p.countLine("Overwritten", rep.Overwritten, p.good)
		p.countLine("Skipped", rep.Skipped, p.dimmed)
		p.countLine("Directories created", rep.DirsCreated, p.good)
		p.countLine("Failed", rep.Failed, tern(rep.Failed > 0, p.bad, p.dimmed))
	} else if rep.Failed > 0 {
		fmt.Fprintln(p.w, p.bad.Render(fmt.Sprintf("Failed: %d", rep.Failed)))
	}

	if len(rep.Failures) > 0 {
		p.listSection(p.bad, "Copy failures (%d):", rep.Failures)
	}
	if len(rep.Warnings) > 0 {
		p.listSection(p.warn, "Warnings (%d):", rep.Warnings)
	}
	p.Errors(rep.Walk)
}

func (p *Printer) countLine(label string, n int, style lipgloss.Style) {
	fmt.Fprintf(p.w, "%-20s %s\n", label+":", style.Render(fmt.Sprint(n)))
}

func (p *Printer) outcomeLine(o copier.Outcome) string {
	status := o.Status.String()
	if o.Reason != copier.ReasonNone {
		status = fmt.Sprintf("%s (%s)", status, o.Reason)
	}
	var style lipgloss.Style
	switch o.Status {
	case copier.StatusFailed:
		style = p.bad
	case copier.StatusSkipped, copier.StatusExists:
		style = p.dimmed
	default:
		style = p.good
	}
	line := fmt.Sprintf("%-9s %s", o.Action, o.RelPath)
	if o.Err != nil {
		return fmt.Sprintf("%s  %s: %v", line, style.Render(status), o.Err)
	}
	return fmt.Sprintf("%s  %s", line, style.Render(status))
}

// listSection prints a titled, path-sorted list of errors.
func (p *Printer) listSection(style lipgloss.Style, titleFormat string, items map[string]error) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, style.Render(fmt.Sprintf(titleFormat, len(items))))
	paths := make([]string, 0, len(items))
	for path := range items {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		fmt.Fprintf(p.w, "- %s: %v\n", path, items[path])
	}
}

func plural(n int, one, many string) string {
	return tern(n == 1, one, many)
}

func tern[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}
