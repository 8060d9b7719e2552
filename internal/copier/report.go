// internal/copier/report.go
package copier

import (
	"github.com/gagin/fstree/internal/walk"
)

// Action is what the executor planned for an entry.
type Action uint8

const (
	ActionNone      Action = iota // Destination directory already present
	ActionMkdir                   // Create a destination directory
	ActionCopy                    // Copy to a fresh destination
	ActionOverwrite               // Replace an existing destination
	ActionLink                    // Recreate a symlink
	ActionSkip                    // Leave the destination alone
)

var actionStrings = [...]string{"none", "mkdir", "copy", "overwrite", "link", "skip"}

func (a Action) String() string {
	if int(a) >= len(actionStrings) {
		return "unknown"
	}
	return actionStrings[a]
}

// Status is where an entry ended up: Planned moves to exactly one of the
// terminal states.
type Status uint8

const (
	StatusPlanned Status = iota
	StatusCopied
	StatusOverwritten
	StatusCreated
	StatusExists
	StatusSkipped
	StatusFailed
)

var statusStrings = [...]string{"planned", "copied", "overwritten", "created", "exists", "skipped", "failed"}

func (s Status) String() string {
	if int(s) >= len(statusStrings) {
		return "unknown"
	}
	return statusStrings[s]
}

// Reason qualifies StatusSkipped.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonAlreadyExists
	ReasonDryRun
	ReasonUnsupported
)

func (r Reason) String() string {
	switch r {
	case ReasonAlreadyExists:
		return "already exists"
	case ReasonDryRun:
		return "dry run"
	case ReasonUnsupported:
		return "unsupported"
	default:
		return ""
	}
}

// Outcome is the per-entry result.
type Outcome struct {
	RelPath string
	Kind    walk.Kind
	Action  Action
	Status  Status
	Reason  Reason
	Err     error
}

// Report accumulates outcomes for one run. Counts follow the planned
// action, so a dry run reports the same numbers a real run would.
type Report struct {
	DryRun   bool
	Outcomes []Outcome

	Copied      int
	Overwritten int
	Skipped     int
	Failed      int
	DirsCreated int

	Failures map[string]error // Per-path copy failures
	Warnings map[string]error // Metadata that could not be preserved
	Walk     walk.Errors      // Errors met while walking the source
}

func newReport(dryRun bool) *Report {
	return &Report{
		DryRun:   dryRun,
		Outcomes: make([]Outcome, 0),
		Failures: make(map[string]error),
		Warnings: make(map[string]error),
		Walk:     make(walk.Errors),
	}
}

func (r *Report) record(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	if o.Status == StatusFailed {
		r.Failed++
		r.Failures[o.RelPath] = o.Err
		return
	}
	switch o.Action {
	case ActionMkdir:
		r.DirsCreated++
	case ActionCopy, ActionLink:
		r.Copied++
	case ActionOverwrite:
		r.Overwritten++
	case ActionSkip:
		r.Skipped++
	}
}

// HasFailures reports whether any entry failed to copy or any path could
// not be walked.
func (r *Report) HasFailures() bool {
	return r.Failed > 0 || len(r.Walk) > 0
}
