// Package output formats the end-of-run summary printed by the CLI.
package output

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunSummary describes one documentation run.
type RunSummary struct {
	RunID        string        `json:"run_id"`
	Target       string        `json:"target"`
	Repository   string        `json:"repository"`
	OutputDir    string        `json:"output_dir"`
	Format       string        `json:"format"`
	Files        int           `json:"files"`
	Skipped      int           `json:"skipped"`
	Lines        int           `json:"lines"`
	Technologies []Technology  `json:"technologies,omitempty"`
	Dependencies int           `json:"dependencies"`
	Warnings     []string      `json:"warnings,omitempty"`
	Endpoints    int           `json:"endpoints"`
	Summarized   bool          `json:"summarized"`
	Documents    []string      `json:"documents"`
	Exports      []string      `json:"exports,omitempty"`
	Duration     time.Duration `json:"-"`
	DurationMs   int64         `json:"duration_ms"`
	Error        string        `json:"error,omitempty"`
}

// Technology is a detected technology as shown in the summary.
type Technology struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// NewRunSummary returns a summary with a fresh run ID.
func NewRunSummary(target string) *RunSummary {
	return &RunSummary{RunID: uuid.NewString(), Target: target}
}

// Finish records the elapsed time since start.
func (s *RunSummary) Finish(start time.Time) {
	s.Duration = time.Since(start)
	s.DurationMs = s.Duration.Milliseconds()
}

func (s *RunSummary) elapsed() time.Duration {
	if s.Duration > 0 {
		return s.Duration
	}
	return time.Duration(s.DurationMs) * time.Millisecond
}

// Formatter formats a RunSummary into output bytes.
type Formatter interface {
	Format(summary *RunSummary) ([]byte, error)
}

// Output format names.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatStyled   = "styled"
)

// NewFormatter returns the formatter registered under name.
func NewFormatter(name string) (Formatter, error) {
	switch name {
	case FormatJSON:
		return NewJSONFormatter(), nil
	case FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case FormatStyled, "":
		return NewStyledFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown summary format %q", name)
	}
}
