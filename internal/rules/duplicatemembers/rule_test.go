package duplicatemembers

import (
	"testing"

	"github.com/Smith-Tools/archlint/internal/decl"
	"github.com/Smith-Tools/archlint/internal/rule"
	"github.com/Smith-Tools/archlint/internal/source"
)

func extract(t *testing.T, src string) *decl.Info {
	t.Helper()
	u, err := source.Parse("feature.swift", []byte(src))
	if err != nil {
		t.Fatal(err)
	}
	infos := decl.Extract(u, "Reducer")
	if len(infos) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(infos))
	}
	return infos[0]
}

func TestCheck_NoDuplicates_NoViolation(t *testing.T) {
	d := extract(t, `
struct Feature: Reducer {
    struct State {
        var a: Int
        var b: Int
    }
    enum Action {
        case load
        case save
    }
}
`)
	r := &Rule{Severity: rule.Medium}
	if vs := r.Check(d); len(vs) != 0 {
		t.Fatalf("expected 0 violations, got %d", len(vs))
	}
}

func TestCheck_DuplicateStateProperty(t *testing.T) {
	d := extract(t, `
struct Feature: Reducer {
    struct State {
        var count: Int
        var title: String
        var count: Bool
    }
}
`)
	r := &Rule{Severity: rule.Medium}
	vs := r.Check(d)
	if len(vs) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(vs))
	}
	v := vs[0]
	if v.RuleID != "AR003" {
		t.Errorf("expected rule ID AR003, got %s", v.RuleID)
	}
	expected := `Feature.State repeats stored property "count" (first declared on line 4)`
	if v.Message != expected {
		t.Errorf("expected message %q, got %q", expected, v.Message)
	}
	if v.Line != 6 {
		t.Errorf("expected line 6, got %d", v.Line)
	}
}

func TestCheck_DuplicateActionCase(t *testing.T) {
	d := extract(t, `
struct Feature: Reducer {
    enum Action {
        case load
        case load(String)
    }
}
`)
	r := &Rule{Severity: rule.Medium}
	vs := r.Check(d)
	if len(vs) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(vs))
	}
	expected := `Feature.Action repeats case "load" (first declared on line 4)`
	if vs[0].Message != expected {
		t.Errorf("expected message %q, got %q", expected, vs[0].Message)
	}
}

func TestCheck_TripleDuplicate_TwoViolations(t *testing.T) {
	d := extract(t, `
struct Feature: Reducer {
    enum Action {
        case load
        case load
        case load
    }
}
`)
	r := &Rule{Severity: rule.Medium}
	vs := r.Check(d)
	if len(vs) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(vs))
	}
	for _, v := range vs {
		expected := `Feature.Action repeats case "load" (first declared on line 4)`
		if v.Message != expected {
			t.Errorf("expected message %q, got %q", expected, v.Message)
		}
	}
}

func TestCheck_SameNameAcrossStateAndAction_NoViolation(t *testing.T) {
	d := extract(t, `
struct Feature: Reducer {
    struct State {
        var load: Bool
    }
    enum Action {
        case load
    }
}
`)
	r := &Rule{Severity: rule.Medium}
	if vs := r.Check(d); len(vs) != 0 {
		t.Fatalf("expected 0 violations, got %d", len(vs))
	}
}

func TestApplySettings_Severity(t *testing.T) {
	r := &Rule{Severity: rule.Medium}
	if err := r.ApplySettings(map[string]any{"severity": "low"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Severity != rule.Low {
		t.Errorf("expected severity low, got %s", r.Severity)
	}
}

func TestApplySettings_UnknownKey(t *testing.T) {
	r := &Rule{Severity: rule.Medium}
	if err := r.ApplySettings(map[string]any{"max": 2}); err == nil {
		t.Fatal("expected error for unknown setting")
	}
}
