package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"

	"github.com/Smith-Tools/archlint/internal/decl"
	"github.com/Smith-Tools/archlint/internal/rule"
)

// The external rule protocol is line-free JSON over pipes:
//
//	rule --describe            -> {"id": "...", "name": "..."}
//	rule  (decl JSON on stdin) -> [{"severity","line","message","recommendation"}, ...]
//
// The executable is invoked once per matched declaration. Violations
// it returns are stamped with its ID and the declaration's file.

type describeDoc struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type wireDecl struct {
	Name         string              `json:"name"`
	Kind         string              `json:"kind"`
	Conformances []string            `json:"conformances"`
	MemberCount  int                 `json:"memberCount"`
	SourceLine   int                 `json:"sourceLine"`
	File         string              `json:"file"`
	Members      []wireMember        `json:"members,omitempty"`
	Nested       map[string]wireDecl `json:"nestedDecls,omitempty"`
}

type wireMember struct {
	Name         string `json:"name"`
	Line         int    `json:"line"`
	ClosureTyped bool   `json:"closureTyped,omitempty"`
}

type wireViolation struct {
	Severity       string `json:"severity"`
	Line           int    `json:"line"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation,omitempty"`
}

// externalRule adapts a provider executable to the rule.Rule contract.
type externalRule struct {
	path string
	id   string
	name string
}

// newExternalRule probes the executable with --describe.
func newExternalRule(path string) (rule.Rule, error) {
	out, err := exec.Command(path, "--describe").Output()
	if err != nil {
		return nil, fmt.Errorf("describe failed: %w", err)
	}
	var doc describeDoc
	if err := json.Unmarshal(out, &doc); err != nil {
		return nil, fmt.Errorf("invalid describe output: %w", err)
	}
	if doc.ID == "" || doc.Name == "" {
		return nil, fmt.Errorf("describe output missing id or name")
	}
	return &externalRule{path: path, id: doc.ID, name: doc.Name}, nil
}

// ID implements rule.Rule.
func (r *externalRule) ID() string { return r.id }

// Name implements rule.Rule.
func (r *externalRule) Name() string { return r.name }

// Check implements rule.Rule. A provider failure yields zero
// violations; the provider already passed --describe, so a crash here
// is its own bug and must not abort analysis.
func (r *externalRule) Check(d *decl.Info) []rule.Violation {
	payload, err := json.Marshal(toWire(d))
	if err != nil {
		return nil
	}

	cmd := exec.Command(r.path)
	cmd.Stdin = bytes.NewReader(payload)
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	var wire []wireViolation
	if err := json.Unmarshal(out, &wire); err != nil {
		return nil
	}

	violations := make([]rule.Violation, 0, len(wire))
	for _, w := range wire {
		sev, ok := rule.ParseSeverity(w.Severity)
		if !ok {
			sev = rule.Medium
		}
		line := w.Line
		if line < 1 {
			line = d.SourceLine
		}
		violations = append(violations, rule.Violation{
			Severity:       sev,
			RuleID:         r.id,
			RuleName:       r.name,
			File:           d.File,
			Line:           line,
			Message:        w.Message,
			Recommendation: w.Recommendation,
		})
	}
	return violations
}

func toWire(d *decl.Info) wireDecl {
	conformances := make([]string, 0, len(d.Conformances))
	for c := range d.Conformances {
		conformances = append(conformances, c)
	}
	sort.Strings(conformances)

	members := make([]wireMember, 0, len(d.Members))
	for _, m := range d.Members {
		members = append(members, wireMember{Name: m.Name, Line: m.Line, ClosureTyped: m.ClosureTyped})
	}

	var nested map[string]wireDecl
	if len(d.Nested) > 0 {
		nested = make(map[string]wireDecl, len(d.Nested))
		for name, n := range d.Nested {
			nested[name] = toWire(n)
		}
	}

	return wireDecl{
		Name:         d.Name,
		Kind:         d.Kind.String(),
		Conformances: conformances,
		MemberCount:  d.MemberCount,
		SourceLine:   d.SourceLine,
		File:         d.File,
		Members:      members,
		Nested:       nested,
	}
}
