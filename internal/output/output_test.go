package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Smith-Tools/archlint/internal/engine"
	"github.com/Smith-Tools/archlint/internal/rule"
)

func sample() engine.Collection {
	return engine.Collection{
		{
			Severity:       rule.High,
			RuleID:         "AR001",
			RuleName:       "monolithic-declaration",
			File:           "Sources/App/Feature.swift",
			Line:           12,
			Message:        "Feature.State has 16 stored properties (limit 15)",
			Recommendation: "split the state into child feature states composed with scoped reducers",
		},
		{
			Severity: rule.Low,
			RuleID:   "AR004",
			RuleName: "state-action-coupling",
			File:     "Sources/App/Feature.swift",
			Line:     30,
			Message:  "Feature.Action has 20 cases against 3 state properties (factor 6.0, limit 18.0)",
		},
		{
			Severity: rule.Info,
			RuleID:   engine.ParseErrorRuleID,
			File:     "Sources/App/Broken.swift",
			Line:     4,
			Message:  "Sources/App/Broken.swift:4: unexpected '}'",
		},
	}
}

func TestTextFormatter_LineShape(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextFormatter{}).Format(&buf, sample()); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	expected := []string{
		"Sources/App/Feature.swift:12: error: AR001: Feature.State has 16 stored properties (limit 15)",
		"Sources/App/Feature.swift:30: warning: AR004: Feature.Action has 20 cases against 3 state properties (factor 6.0, limit 18.0)",
		"Sources/App/Broken.swift:4: note: parse-error: Sources/App/Broken.swift:4: unexpected '}'",
	}
	for i, want := range expected {
		if lines[i] != want {
			t.Errorf("line %d:\n got %q\nwant %q", i, lines[i], want)
		}
	}
}

func TestTextFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextFormatter{}).Format(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestJSONFormatter_Fields(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Format(&buf, sample()); err != nil {
		t.Fatal(err)
	}
	var items []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &items); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	first := items[0]
	if first["file"] != "Sources/App/Feature.swift" ||
		first["line"] != float64(12) ||
		first["severity"] != "high" ||
		first["ruleId"] != "AR001" ||
		first["ruleName"] != "monolithic-declaration" {
		t.Errorf("unexpected first item: %v", first)
	}
	if _, ok := first["recommendation"]; !ok {
		t.Error("recommendation missing")
	}
	if _, ok := items[1]["recommendation"]; ok {
		t.Error("empty recommendation must be omitted")
	}
}

func TestJSONFormatter_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Format(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected [], got %q", buf.String())
	}
}

func TestByName(t *testing.T) {
	if _, ok := ByName("json").(*JSONFormatter); !ok {
		t.Error("ByName(json) is not the JSON formatter")
	}
	if _, ok := ByName("text").(*TextFormatter); !ok {
		t.Error("ByName(text) is not the text formatter")
	}
	if _, ok := ByName("").(*TextFormatter); !ok {
		t.Error("ByName default is not the text formatter")
	}
}
