// Package requirednesting checks that a reducer declaration actually
// follows the convention it conforms to: a nested State and a nested
// Action must exist on the primary declaration.
package requirednesting

import (
	"fmt"

	"github.com/Smith-Tools/archlint/internal/decl"
	"github.com/Smith-Tools/archlint/internal/rule"
)

func init() {
	rule.Register(&Rule{Severity: rule.Medium})
}

// Rule reports each missing nested declaration. Extensions are exempt:
// splitting conformance across extensions is a common pattern and the
// nested types live on the primary declaration.
type Rule struct {
	Severity rule.Severity
}

// ID implements rule.Rule.
func (r *Rule) ID() string { return "AR005" }

// Name implements rule.Rule.
func (r *Rule) Name() string { return "required-nesting" }

// Check implements rule.Rule.
func (r *Rule) Check(d *decl.Info) []rule.Violation {
	if d.Extension {
		return nil
	}

	var out []rule.Violation
	for _, name := range []string{"State", "Action"} {
		if _, ok := d.Nested[name]; ok {
			continue
		}
		out = append(out, rule.Violation{
			Severity: r.Severity,
			RuleID:   r.ID(),
			RuleName: r.Name(),
			File:     d.File,
			Line:     d.SourceLine,
			Message:        fmt.Sprintf("%s has no nested %s declaration", d.Name, name),
			Recommendation: fmt.Sprintf("declare %s.%s inside the conforming type", d.Name, name),
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
			return fmt.Errorf("required-nesting: unknown setting %q", k)
		}
	}
	return nil
}

// DefaultSettings implements rule.Configurable.
func (r *Rule) DefaultSettings() map[string]any {
	return map[string]any{"severity": string(rule.Medium)}
}

var _ rule.Configurable = (*Rule)(nil)
