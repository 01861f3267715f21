// Package duplicatemembers flags repeated member names inside the
// nested State and Action declarations. Duplicated names usually mean
// a copy-pasted block that was never reconciled.
package duplicatemembers

import (
	"fmt"

	"github.com/Smith-Tools/archlint/internal/decl"
	"github.com/Smith-Tools/archlint/internal/rule"
)

func init() {
	rule.Register(&Rule{Severity: rule.Medium})
}

// Rule reports one violation per duplicated name, at the line of the
// duplicate occurrence.
type Rule struct {
	Severity rule.Severity
}

// ID implements rule.Rule.
func (r *Rule) ID() string { return "AR003" }

// Name implements rule.Rule.
func (r *Rule) Name() string { return "duplicate-members" }

// Check implements rule.Rule.
func (r *Rule) Check(d *decl.Info) []rule.Violation {
	var out []rule.Violation
	for _, name := range []string{"State", "Action"} {
		nested, ok := d.Nested[name]
		if !ok {
			continue
		}
		out = append(out, r.checkMembers(d.Name, nested)...)
	}
	return out
}

func (r *Rule) checkMembers(parent string, d *decl.Info) []rule.Violation {
	noun := "stored property"
	if d.Kind == decl.KindEnum {
		noun = "case"
	}

	seen := make(map[string]int, len(d.Members))
	var out []rule.Violation
	for _, m := range d.Members {
		first, dup := seen[m.Name]
		if !dup {
			seen[m.Name] = m.Line
			continue
		}
		out = append(out, rule.Violation{
			Severity: r.Severity,
			RuleID:   r.ID(),
			RuleName: r.Name(),
			File:     d.File,
			Line:     m.Line,
			Message: fmt.Sprintf("%s.%s repeats %s %q (first declared on line %d)",
				parent, d.Name, noun, m.Name, first),
			Recommendation: "remove or rename the duplicated member",
		})
	}
	return out
}

// ApplySettings implements rule.Configurable.
func (r *Rule) ApplySettings(settings map[string]any) error {
	for k, v := range settings {
		switch k {
		case "severity":
			sev, err := rule.SettingSeverity(r.Name(), v)
			if err != nil {
				return err
			}
			r.Severity = sev
		default:
			return fmt.Errorf("duplicate-members: unknown setting %q", k)
		}
	}
	return nil
}

// DefaultSettings implements rule.Configurable.
func (r *Rule) DefaultSettings() map[string]any {
	return map[string]any{"severity": string(rule.Medium)}
}

var _ rule.Configurable = (*Rule)(nil)
