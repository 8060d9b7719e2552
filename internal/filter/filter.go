// internal/filter/filter.go
package filter

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
)

// ErrInvalidPattern is returned (wrapped in a *PatternError) when a user
// supplied pattern does not compile.
var ErrInvalidPattern = errors.New("invalid pattern")

// PatternError names the pattern that failed to compile.
type PatternError struct {
	Pattern string
	Source  string // "include" or "exclude"
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid %s pattern %q: %v", e.Source, e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() []error { return []error{ErrInvalidPattern, e.Err} }

// Verdict is the Included/Excluded decision attached to an entry.
type Verdict uint8

const (
	Included Verdict = iota
	Excluded
)

func (v Verdict) String() string {
	if v == Excluded {
		return "excluded"
	}
	return "included"
}

// Rule holds compiled include and exclude patterns in the order given.
// Patterns match against the slash-separated path relative to the walk root.
type Rule struct {
	Include []*regexp.Regexp
	Exclude []*regexp.Regexp
}

// NewRule compiles every pattern up front so a bad one is reported before
// any traversal starts.
func NewRule(include, exclude []string) (*Rule, error) {
	r := &Rule{}
	for _, p := range include {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, &PatternError{Pattern: p, Source: "include", Err: err}
		}
		r.Include = append(r.Include, re)
	}
	for _, p := range exclude {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, &PatternError{Pattern: p, Source: "exclude", Err: err}
		}
		r.Exclude = append(r.Exclude, re)
	}
	slog.Debug("Compiled filter rule.", "include", include, "exclude", exclude)
	return r, nil
}

// Empty reports whether the rule has no patterns at all.
func (r *Rule) Empty() bool {
	return r == nil || (len(r.Include) == 0 && len(r.Exclude) == 0)
}

// Evaluate decides the verdict for relPath and, when excluded, which rule
// caused it. Include patterns never exclude directories: they select files,
// and directories left without files are handled by the empty-folder policy.
func (r *Rule) Evaluate(relPath string, isDir bool) (verdict Verdict, reason string, pattern string) {
	if r == nil {
		return Included, "", ""
	}
	for _, re := range r.Exclude {
		if re.MatchString(relPath) {
			return Excluded, "exclude match", re.String()
		}
	}
	if isDir || len(r.Include) == 0 {
		return Included, "", ""
	}
	for _, re := range r.Include {
		if re.MatchString(relPath) {
			return Included, "", ""
		}
	}
	return Excluded, "no include match", ""
}

// Match is Evaluate without the diagnostics.
func Match(relPath string, rule *Rule, isDir bool) Verdict {
	v, _, _ := rule.Evaluate(relPath, isDir)
	return v
}
