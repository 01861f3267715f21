package output

import (
	"fmt"
	"io"

	"github.com/Smith-Tools/archlint/internal/engine"
)

// TextFormatter emits one line per violation in the shape build tools
// pattern-match on to surface inline diagnostics:
//
//	<file>:<line>: <tag>: <ruleID>: <message>
//
// The tag is the compiler-diagnostic mapping of the severity (error,
// warning or note). This exact shape is a contract; do not decorate
// it.
type TextFormatter struct{}

// Format implements Formatter.
func (f *TextFormatter) Format(w io.Writer, violations engine.Collection) error {
	for _, v := range violations {
		_, err := fmt.Fprintf(w, "%s:%d: %s: %s: %s\n",
			v.File, v.Line, v.Severity.Tag(), v.RuleID, v.Message)
		if err != nil {
			return err
		}
	}
	return nil
}
