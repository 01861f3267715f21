// Package output renders violation collections for build tools and
// programmatic consumers.
package output

import (
	"io"

	"github.com/Smith-Tools/archlint/internal/engine"
)

// Formatter defines the interface for rendering a collection.
type Formatter interface {
	Format(w io.Writer, violations engine.Collection) error
}

// ByName returns the formatter for a --format value, defaulting to
// text.
func ByName(name string) Formatter {
	switch name {
	case "json":
		return &JSONFormatter{}
	default:
		return &TextFormatter{}
	}
}
