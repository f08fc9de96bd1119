package output

import "encoding/json"

// JSONFormatter outputs RunSummary as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format marshals the RunSummary as indented JSON.
func (f *JSONFormatter) Format(summary *RunSummary) ([]byte, error) {
	return json.MarshalIndent(summary, "", "  ")
}
