package engine

import "github.com/Smith-Tools/archlint/internal/rule"

// ParseErrorRuleID tags the info-severity entries the engine records
// for files it could not parse or read.
const ParseErrorRuleID = "parse-error"

// Collection is the ordered violation sequence of one engine run:
// file enumeration order first, then declaration source position,
// then rule registration order.
type Collection []rule.Violation

// Count returns the number of entries.
func (c Collection) Count() int { return len(c) }

// BySeverity returns the entries with the given severity, preserving
// order.
func (c Collection) BySeverity(sev rule.Severity) Collection {
	var out Collection
	for _, v := range c {
		if v.Severity == sev {
			out = append(out, v)
		}
	}
	return out
}

// Failing counts the entries that should fail the build. Info-level
// entries (parse notes included) do not fail it.
func (c Collection) Failing() int {
	n := 0
	for _, v := range c {
		if v.Severity.Fails() {
			n++
		}
	}
	return n
}
