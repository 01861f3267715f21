package closureinjection

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Smith-Tools/archlint/internal/decl"
	"github.com/Smith-Tools/archlint/internal/rule"
	"github.com/Smith-Tools/archlint/internal/source"
)

// reducerWithClosures builds a reducer declaring n closure-typed
// stored properties plus a couple of plain ones.
func reducerWithClosures(t *testing.T, n int) *decl.Info {
	t.Helper()
	var b strings.Builder
	b.WriteString("struct Feature: Reducer {\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "    var dep%d: (String) -> Int\n", i)
	}
	b.WriteString("    var plain: Int\n")
	b.WriteString("    var name: String\n")
	b.WriteString("}\n")

	u, err := source.Parse("feature.swift", []byte(b.String()))
	if err != nil {
		t.Fatal(err)
	}
	infos := decl.Extract(u, "Reducer")
	if len(infos) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(infos))
	}
	return infos[0]
}

func TestCheck_AtLimit_NoViolation(t *testing.T) {
	d := reducerWithClosures(t, 5)
	r := &Rule{MaxClosureDependencies: 5, Severity: rule.Medium}
	vs := r.Check(d)
	if len(vs) != 0 {
		t.Fatalf("expected 0 violations, got %d", len(vs))
	}
}

func TestCheck_OverLimit_Violation(t *testing.T) {
	d := reducerWithClosures(t, 6)
	r := &Rule{MaxClosureDependencies: 5, Severity: rule.Medium}
	vs := r.Check(d)
	if len(vs) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(vs))
	}
	v := vs[0]
	if v.RuleID != "AR002" {
		t.Errorf("expected rule ID AR002, got %s", v.RuleID)
	}
	if v.RuleName != "closure-dependency-injection" {
		t.Errorf("expected rule name closure-dependency-injection, got %s", v.RuleName)
	}
	if v.Severity != rule.Medium {
		t.Errorf("expected severity medium, got %s", v.Severity)
	}
	expected := "Feature declares 6 closure dependencies (limit 5)"
	if v.Message != expected {
		t.Errorf("expected message %q, got %q", expected, v.Message)
	}
	if v.Line != 1 {
		t.Errorf("expected line 1, got %d", v.Line)
	}
}

func TestCheck_PlainPropertiesNotCounted(t *testing.T) {
	d := reducerWithClosures(t, 0)
	r := &Rule{MaxClosureDependencies: 0, Severity: rule.Medium}
	vs := r.Check(d)
	if len(vs) != 0 {
		t.Fatalf("expected 0 violations, got %d", len(vs))
	}
}

func TestCheck_EnumNotApplicable(t *testing.T) {
	u, err := source.Parse("feature.swift", []byte("enum Router: Reducer {\n    case home\n}\n"))
	if err != nil {
		t.Fatal(err)
	}
	d := decl.Extract(u, "Reducer")[0]
	r := &Rule{MaxClosureDependencies: 0, Severity: rule.Medium}
	if vs := r.Check(d); len(vs) != 0 {
		t.Fatalf("expected 0 violations for enum, got %d", len(vs))
	}
}

func TestCheck_CustomLimit(t *testing.T) {
	d := reducerWithClosures(t, 3)
	r := &Rule{MaxClosureDependencies: 2, Severity: rule.Medium}
	vs := r.Check(d)
	if len(vs) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(vs))
	}
	expected := "Feature declares 3 closure dependencies (limit 2)"
	if vs[0].Message != expected {
		t.Errorf("expected message %q, got %q", expected, vs[0].Message)
	}
}

func TestApplySettings_ValidLimit(t *testing.T) {
	r := &Rule{MaxClosureDependencies: 5, Severity: rule.Medium}
	err := r.ApplySettings(map[string]any{"max-closure-dependencies": 8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.MaxClosureDependencies != 8 {
		t.Errorf("expected limit 8, got %d", r.MaxClosureDependencies)
	}
}

func TestApplySettings_InvalidLimitType(t *testing.T) {
	r := &Rule{MaxClosureDependencies: 5, Severity: rule.Medium}
	err := r.ApplySettings(map[string]any{"max-closure-dependencies": true})
	if err == nil {
		t.Fatal("expected error for non-int limit")
	}
}

func TestApplySettings_UnknownKey(t *testing.T) {
	r := &Rule{MaxClosureDependencies: 5, Severity: rule.Medium}
	err := r.ApplySettings(map[string]any{"threshold": 3})
	if err == nil {
		t.Fatal("expected error for unknown setting")
	}
}
