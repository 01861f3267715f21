// Package decl derives structural facts about declarations that follow
// the reducer convention: a type conforming to a marker protocol with
// nested State and Action declarations.
package decl

import (
	"strings"

	"github.com/Smith-Tools/archlint/internal/source"
)

// Kind classifies an extracted declaration.
type Kind int

// Declaration kinds.
const (
	KindStruct Kind = iota // struct, class or actor
	KindEnum
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	}
	return "other"
}

// Info is a read-only structural view of one declaration. It is a
// fully owned copy: nothing in it points back into the parsed unit.
type Info struct {
	Name         string
	Kind         Kind
	Conformances map[string]bool
	MemberCount  int
	SourceLine   int
	Nested       map[string]*Info
	File         string

	// Members lists stored-property or case child declarations in
	// source order; rules that inspect individual members use it.
	Members []Member

	// Extension marks declarations introduced via `extension Foo:
	// Marker`, which carry conformance but usually no body of their
	// own members.
	Extension bool
}

// Member is one counted member of a declaration: a stored property of
// a struct-like type or a case of an enum.
type Member struct {
	Name string
	Line int

	// ClosureTyped marks stored properties whose declared type is a
	// function type, detected textually from the source line.
	ClosureTyped bool
}

// Conforms reports whether the declaration's inheritance clause names
// the given identifier. Purely textual; a locally defined type sharing
// the marker's name also matches. That false positive is accepted, the
// alternative is full semantic resolution.
func (i *Info) Conforms(name string) bool {
	return i.Conformances[name]
}

// Extract walks the unit's tree once and returns every top-level
// declaration whose conformance clause contains marker, in source
// order. Nested declarations are keyed by exact name; a missing key
// means the convention's nested type is absent, which rules must treat
// as not applicable.
func Extract(u *source.Unit, marker string) []*Info {
	var out []*Info
	for _, n := range u.Decls {
		if !isTypeNode(n) {
			continue
		}
		if !inheritsFrom(n, marker) {
			continue
		}
		out = append(out, build(u, n))
	}
	return out
}

func isTypeNode(n *source.Node) bool {
	switch n.Kind {
	case source.NodeStruct, source.NodeClass, source.NodeEnum,
		source.NodeActor, source.NodeExtension:
		return true
	}
	return false
}

func inheritsFrom(n *source.Node, marker string) bool {
	for _, c := range n.Inherits {
		if c == marker {
			return true
		}
	}
	return false
}

// build converts a parse node into an owned Info, recursing into
// nested type declarations.
func build(u *source.Unit, n *source.Node) *Info {
	info := &Info{
		Name:         n.Name,
		Kind:         kindOf(n),
		Conformances: make(map[string]bool, len(n.Inherits)),
		SourceLine:   n.Line,
		Nested:       map[string]*Info{},
		File:         u.Path,
		Extension:    n.Kind == source.NodeExtension,
	}
	for _, c := range n.Inherits {
		info.Conformances[c] = true
	}

	for _, child := range n.Children {
		switch child.Kind {
		case source.NodeProperty:
			if info.Kind == KindStruct && child.Stored {
				info.Members = append(info.Members, Member{
					Name:         child.Name,
					Line:         child.Line,
					ClosureTyped: closureTyped(u, child.Line),
				})
			}
		case source.NodeCase:
			if info.Kind == KindEnum {
				info.Members = append(info.Members, Member{
					Name: child.Name,
					Line: child.Line,
				})
			}
		default:
			if isTypeNode(child) {
				nested := build(u, child)
				if _, dup := info.Nested[nested.Name]; !dup {
					info.Nested[nested.Name] = nested
				}
			}
		}
	}
	info.MemberCount = len(info.Members)
	return info
}

func kindOf(n *source.Node) Kind {
	switch n.Kind {
	case source.NodeStruct, source.NodeClass, source.NodeActor:
		return KindStruct
	case source.NodeEnum:
		return KindEnum
	case source.NodeExtension:
		// Extensions of the reducer type are struct-like for rule
		// purposes; they can declare stored members in theory but
		// usually only carry the conformance.
		return KindStruct
	}
	return KindOther
}

// closureTyped reports whether the declaration on the given source
// line annotates a function type (`->` inside the annotation). This is
// a textual check, consistent with the structural matching the rest of
// the analyzer performs.
func closureTyped(u *source.Unit, line int) bool {
	if line < 1 || line > len(u.Lines) {
		return false
	}
	text := string(u.Lines[line-1])
	colon := strings.Index(text, ":")
	if colon < 0 {
		return false
	}
	rest := text[colon+1:]
	if eq := strings.Index(rest, "="); eq >= 0 {
		rest = rest[:eq]
	}
	return strings.Contains(rest, "->")
}
