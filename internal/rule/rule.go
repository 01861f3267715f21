// Package rule defines the rule contract and the violation value that
// rules produce.
package rule

import "github.com/Smith-Tools/archlint/internal/decl"

// Severity indicates how serious a violation is. Info-level entries
// never fail a build; they exist for parse notes and advisory output.
type Severity string

// Severity levels, highest first.
const (
	Critical Severity = "critical"
	High     Severity = "high"
	Medium   Severity = "medium"
	Low      Severity = "low"
	Info     Severity = "info"
)

// ParseSeverity converts a configuration string into a Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(s) {
	case Critical, High, Medium, Low, Info:
		return Severity(s), true
	}
	return "", false
}

// Tag returns the compiler-diagnostic tag build tools pattern-match
// on: error, warning or note.
func (s Severity) Tag() string {
	switch s {
	case Critical, High:
		return "error"
	case Medium, Low:
		return "warning"
	}
	return "note"
}

// Fails reports whether a violation of this severity should fail the
// build.
func (s Severity) Fails() bool {
	return s != Info
}

// Violation is one reported architectural issue. Value type, never
// mutated after creation.
type Violation struct {
	Severity       Severity
	RuleID         string
	RuleName       string
	File           string
	Line           int
	Message        string
	Recommendation string
}

// Rule is a single architectural check over one extracted declaration.
// Rules must be pure: no I/O, no shared mutable state, no dependency
// on the evaluation order of other rules. The engine runs them from
// parallel workers.
type Rule interface {
	ID() string
	Name() string
	Check(d *decl.Info) []Violation
}

// Configurable is implemented by rules with user-tunable settings
// (thresholds, severity). Settings are applied once at startup, before
// parallel evaluation begins.
type Configurable interface {
	ApplySettings(settings map[string]any) error
	DefaultSettings() map[string]any
}
