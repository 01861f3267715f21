// Package source parses Swift source text into a declaration tree.
//
// The parser is structural, not semantic: it recovers declaration
// names, inheritance clauses, stored members and enum cases, and skips
// everything else (expressions, function bodies, attributes). It is
// deliberately not a Swift compiler front end.
package source

import (
	"bytes"
	"fmt"
)

// NodeKind classifies a declaration node in the parse tree.
type NodeKind int

// Declaration node kinds.
const (
	NodeStruct NodeKind = iota
	NodeClass
	NodeEnum
	NodeActor
	NodeExtension
	NodeProtocol
	NodeProperty
	NodeCase
)

func (k NodeKind) String() string {
	switch k {
	case NodeStruct:
		return "struct"
	case NodeClass:
		return "class"
	case NodeEnum:
		return "enum"
	case NodeActor:
		return "actor"
	case NodeExtension:
		return "extension"
	case NodeProtocol:
		return "protocol"
	case NodeProperty:
		return "property"
	case NodeCase:
		return "case"
	}
	return "unknown"
}

// Node is one declaration in a parsed file. Type-like nodes carry
// their inheritance clause and children; property nodes carry the
// stored/computed classification; case nodes represent exactly one
// enumerated case name (a `case a, b` list yields two nodes).
type Node struct {
	Kind     NodeKind
	Name     string
	Line     int
	Inherits []string
	Stored   bool
	Children []*Node
}

// Unit holds a parsed Swift file and is the sole owner of its tree.
type Unit struct {
	Path   string
	Source []byte
	Lines  [][]byte
	Decls  []*Node
}

// ParseError reports malformed source. The engine treats it as a
// per-file diagnostic, never a crash.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}

// Parse parses src as Swift source and returns a Unit. Malformed input
// returns a *ParseError with a location hint and no unit.
func Parse(path string, src []byte) (*Unit, error) {
	toks, err := lex(path, src)
	if err != nil {
		return nil, err
	}
	p := &parser{path: path, toks: toks}
	decls, err := p.parseDecls(0)
	if err != nil {
		return nil, err
	}
	return &Unit{
		Path:   path,
		Source: src,
		Lines:  bytes.Split(src, []byte("\n")),
		Decls:  decls,
	}, nil
}
