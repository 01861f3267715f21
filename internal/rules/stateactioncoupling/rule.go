// Package stateactioncoupling applies a heuristic for reducers that do
// too much routing: an Action enum far larger than the State it drives
// suggests the declaration multiplexes several features.
package stateactioncoupling

import (
	"fmt"

	"github.com/Smith-Tools/archlint/internal/decl"
	"github.com/Smith-Tools/archlint/internal/rule"
)

func init() {
	rule.Register(&Rule{
		CouplingFactor: 6,
		Severity:       rule.Low,
	})
}

// Rule flags a declaration when Action cases exceed CouplingFactor
// times the State's stored properties. Not applicable when either
// nested declaration is missing or the State is empty.
type Rule struct {
	CouplingFactor float64
	Severity       rule.Severity
}

// ID implements rule.Rule.
func (r *Rule) ID() string { return "AR004" }

// Name implements rule.Rule.
func (r *Rule) Name() string { return "state-action-coupling" }

// Check implements rule.Rule.
func (r *Rule) Check(d *decl.Info) []rule.Violation {
	state, ok := d.Nested["State"]
	if !ok || state.Kind != decl.KindStruct || state.MemberCount == 0 {
		return nil
	}
	action, ok := d.Nested["Action"]
	if !ok || action.Kind != decl.KindEnum {
		return nil
	}

	limit := r.CouplingFactor * float64(state.MemberCount)
	if float64(action.MemberCount) <= limit {
		return nil
	}

	return []rule.Violation{{
		Severity: r.Severity,
		RuleID:   r.ID(),
		RuleName: r.Name(),
		File:     action.File,
		Line:     action.SourceLine,
		Message: fmt.Sprintf("%s.Action has %d cases against %d state properties (factor %.1f, limit %.1f)",
			d.Name, action.MemberCount, state.MemberCount, r.CouplingFactor, limit),
		Recommendation: "route child feature actions through dedicated child reducers",
	}}
}

// ApplySettings implements rule.Configurable.
func (r *Rule) ApplySettings(settings map[string]any) error {
	for k, v := range settings {
		switch k {
		case "coupling-factor":
			f, ok := rule.SettingFloat(v)
			if !ok {
				return fmt.Errorf("state-action-coupling: coupling-factor must be a number, got %T", v)
			}
			r.CouplingFactor = f
		case "severity":
			sev, err := rule.SettingSeverity(r.Name(), v)
			if err != nil {
				return err
			}
			r.Severity = sev
		default:
			return fmt.Errorf("state-action-coupling: unknown setting %q", k)
		}
	}
	return nil
}

// DefaultSettings implements rule.Configurable.
func (r *Rule) DefaultSettings() map[string]any {
	return map[string]any{
		"coupling-factor": float64(6),
		"severity":        string(rule.Low),
	}
}

var _ rule.Configurable = (*Rule)(nil)
