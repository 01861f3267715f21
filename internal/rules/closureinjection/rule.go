// Package closureinjection flags reducers that accumulate raw closure
// dependencies instead of grouping them into a dependency client.
package closureinjection

import (
	"fmt"

	"github.com/Smith-Tools/archlint/internal/decl"
	"github.com/Smith-Tools/archlint/internal/rule"
)

func init() {
	rule.Register(&Rule{
		MaxClosureDependencies: 5,
		Severity:               rule.Medium,
	})
}

// Rule counts function-typed stored properties declared directly on
// the matched declaration. Each such property is a dependency injected
// as a bare closure; past the threshold the declaration gets one
// violation.
type Rule struct {
	MaxClosureDependencies int
	Severity               rule.Severity
}

// ID implements rule.Rule.
func (r *Rule) ID() string { return "AR002" }

// Name implements rule.Rule.
func (r *Rule) Name() string { return "closure-dependency-injection" }

// Check implements rule.Rule.
func (r *Rule) Check(d *decl.Info) []rule.Violation {
	if d.Kind != decl.KindStruct {
		return nil
	}

	count := 0
	for _, m := range d.Members {
		if m.ClosureTyped {
			count++
		}
	}
	if count <= r.MaxClosureDependencies {
		return nil
	}

	return []rule.Violation{{
		Severity: r.Severity,
		RuleID:   r.ID(),
		RuleName: r.Name(),
		File:     d.File,
		Line:     d.SourceLine,
		Message: fmt.Sprintf("%s declares %d closure dependencies (limit %d)",
			d.Name, count, r.MaxClosureDependencies),
		Recommendation: "collect the closures into a dependency client type injected as a single value",
	}}
}

// ApplySettings implements rule.Configurable.
func (r *Rule) ApplySettings(settings map[string]any) error {
	for k, v := range settings {
		switch k {
		case "max-closure-dependencies":
			n, ok := rule.SettingInt(v)
			if !ok {
				return fmt.Errorf("closure-dependency-injection: max-closure-dependencies must be an integer, got %T", v)
			}
			r.MaxClosureDependencies = n
		case "severity":
			sev, err := rule.SettingSeverity(r.Name(), v)
			if err != nil {
				return err
			}
			r.Severity = sev
		default:
			return fmt.Errorf("closure-dependency-injection: unknown setting %q", k)
		}
	}
	return nil
}

// DefaultSettings implements rule.Configurable.
func (r *Rule) DefaultSettings() map[string]any {
	return map[string]any{
		"max-closure-dependencies": 5,
		"severity":                 string(rule.Medium),
	}
}

var _ rule.Configurable = (*Rule)(nil)
