package output

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter outputs RunSummary as human-readable Markdown.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format renders the RunSummary as Markdown.
func (f *MarkdownFormatter) Format(s *RunSummary) ([]byte, error) {
	var b strings.Builder

	if s.Error != "" {
		b.WriteString("## Error\n\n")
		b.WriteString(s.Error)
		b.WriteString("\n")
		return []byte(b.String()), nil
	}

	fmt.Fprintf(&b, "## %s\n\n", repoLabel(s))
	fmt.Fprintf(&b, "- Files analyzed: %d (%d skipped)\n", s.Files, s.Skipped)
	fmt.Fprintf(&b, "- Lines: %d\n", s.Lines)
	fmt.Fprintf(&b, "- Dependencies: %d\n", s.Dependencies)
	fmt.Fprintf(&b, "- API endpoints: %d\n", s.Endpoints)

	if len(s.Technologies) > 0 {
		b.WriteString("\n## Technologies\n\n")
		for i, t := range s.Technologies {
			fmt.Fprintf(&b, "%d. **%s** (%s, %.2f)\n", i+1, t.Name, t.Category, t.Confidence)
		}
	}

	if len(s.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range s.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	docLabel := "documents"
	if len(s.Documents) == 1 {
		docLabel = "document"
	}
	fmt.Fprintf(&b, "\n---\n*Wrote %d %s to %s in %s (run %s)*\n",
		len(s.Documents), docLabel, s.OutputDir, s.elapsed().Round(100*time.Millisecond), s.RunID)

	return []byte(b.String()), nil
}

func repoLabel(s *RunSummary) string {
	if s.Repository != "" {
		return s.Repository
	}
	return s.Target
}
