// Package monolithicdecl flags reducer declarations whose nested State
// or Action has grown past the configured size thresholds.
package monolithicdecl

import (
	"fmt"

	"github.com/Smith-Tools/archlint/internal/decl"
	"github.com/Smith-Tools/archlint/internal/rule"
)

func init() {
	rule.Register(&Rule{
		MaxStateProperties: 15,
		MaxActionCases:     40,
		StateName:          "State",
		ActionName:         "Action",
		Severity:           rule.High,
	})
}

// Rule checks the member counts of the nested State and Action
// declarations. The comparison is strict: a count equal to the limit
// is not a violation.
type Rule struct {
	MaxStateProperties int
	MaxActionCases     int
	StateName          string
	ActionName         string
	Severity           rule.Severity
}

// ID implements rule.Rule.
func (r *Rule) ID() string { return "AR001" }

// Name implements rule.Rule.
func (r *Rule) Name() string { return "monolithic-declaration" }

// Check implements rule.Rule. A missing nested declaration means the
// rule does not apply; it produces no violations for that side.
func (r *Rule) Check(d *decl.Info) []rule.Violation {
	var out []rule.Violation

	if state, ok := d.Nested[r.StateName]; ok && state.Kind == decl.KindStruct {
		if state.MemberCount > r.MaxStateProperties {
			out = append(out, rule.Violation{
				Severity: r.Severity,
				RuleID:   r.ID(),
				RuleName: r.Name(),
				File:     state.File,
				Line:     state.SourceLine,
				Message: fmt.Sprintf("%s.%s has %d stored properties (limit %d)",
					d.Name, r.StateName, state.MemberCount, r.MaxStateProperties),
				Recommendation: "split the state into child feature states composed with scoped reducers",
			})
		}
	}

	if action, ok := d.Nested[r.ActionName]; ok && action.Kind == decl.KindEnum {
		if action.MemberCount > r.MaxActionCases {
			out = append(out, rule.Violation{
				Severity: r.Severity,
				RuleID:   r.ID(),
				RuleName: r.Name(),
				File:     action.File,
				Line:     action.SourceLine,
				Message: fmt.Sprintf("%s.%s has %d cases (limit %d)",
					d.Name, r.ActionName, action.MemberCount, r.MaxActionCases),
				Recommendation: "group related cases into nested child actions",
			})
		}
	}

	return out
}

// ApplySettings implements rule.Configurable.
func (r *Rule) ApplySettings(settings map[string]any) error {
	for k, v := range settings {
		switch k {
		case "max-state-properties":
			n, ok := rule.SettingInt(v)
			if !ok {
				return fmt.Errorf("monolithic-declaration: max-state-properties must be an integer, got %T", v)
			}
			r.MaxStateProperties = n
		case "max-action-cases":
			n, ok := rule.SettingInt(v)
			if !ok {
				return fmt.Errorf("monolithic-declaration: max-action-cases must be an integer, got %T", v)
			}
			r.MaxActionCases = n
		case "state-name":
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("monolithic-declaration: state-name must be a string, got %T", v)
			}
			r.StateName = s
		case "action-name":
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("monolithic-declaration: action-name must be a string, got %T", v)
			}
			r.ActionName = s
		case "severity":
			sev, err := rule.SettingSeverity(r.Name(), v)
			if err != nil {
				return err
			}
			r.Severity = sev
		default:
			return fmt.Errorf("monolithic-declaration: unknown setting %q", k)
		}
	}
	return nil
}

// DefaultSettings implements rule.Configurable.
func (r *Rule) DefaultSettings() map[string]any {
	return map[string]any{
		"max-state-properties": 15,
		"max-action-cases":     40,
		"state-name":           "State",
		"action-name":          "Action",
		"severity":             string(rule.High),
	}
}

var _ rule.Configurable = (*Rule)(nil)
