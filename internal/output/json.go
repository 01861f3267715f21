package output

import (
	"encoding/json"
	"io"

	"github.com/Smith-Tools/archlint/internal/engine"
)

// JSONFormatter outputs the collection as a JSON array, one record per
// violation with every field enumerable.
type JSONFormatter struct{}

type jsonViolation struct {
	File           string `json:"file"`
	Line           int    `json:"line"`
	Severity       string `json:"severity"`
	RuleID         string `json:"ruleId"`
	RuleName       string `json:"ruleName"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation,omitempty"`
}

// Format implements Formatter. An empty collection produces [].
func (f *JSONFormatter) Format(w io.Writer, violations engine.Collection) error {
	items := make([]jsonViolation, 0, len(violations))
	for _, v := range violations {
		items = append(items, jsonViolation{
			File:           v.File,
			Line:           v.Line,
			Severity:       string(v.Severity),
			RuleID:         v.RuleID,
			RuleName:       v.RuleName,
			Message:        v.Message,
			Recommendation: v.Recommendation,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}
