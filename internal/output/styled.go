package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianshen/docgenie/internal/detect"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#EEEEEE"})
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"})
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#CC8800", Dark: "#FFAA00"})
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0000"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#888888", Dark: "#666666"}).
			Padding(0, 1)

	levelColors = map[detect.Level]lipgloss.Color{
		detect.High:   lipgloss.Color("#22AA22"),
		detect.Medium: lipgloss.Color("#CCAA00"),
		detect.Low:    lipgloss.Color("#CC3333"),
	}
)

// StyledFormatter renders RunSummary as a boxed terminal panel.
type StyledFormatter struct{}

// NewStyledFormatter creates a new StyledFormatter.
func NewStyledFormatter() *StyledFormatter {
	return &StyledFormatter{}
}

// Format renders the RunSummary with lipgloss styles.
func (f *StyledFormatter) Format(s *RunSummary) ([]byte, error) {
	if s.Error != "" {
		return []byte(errorStyle.Render("Error: "+s.Error) + "\n"), nil
	}

	var lines []string
	lines = append(lines, titleStyle.Render(repoLabel(s)))
	row := func(label, value string) {
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%-13s", label))+value)
	}
	row("files", fmt.Sprintf("%d (%d skipped)", s.Files, s.Skipped))
	row("lines", fmt.Sprintf("%d", s.Lines))
	row("dependencies", fmt.Sprintf("%d", s.Dependencies))
	row("endpoints", fmt.Sprintf("%d", s.Endpoints))
	row("documents", fmt.Sprintf("%d in %s", len(s.Documents), s.OutputDir))
	if len(s.Exports) > 0 {
		row("exports", fmt.Sprintf("%d", len(s.Exports)))
	}
	row("elapsed", s.elapsed().Round(100*time.Millisecond).String())

	if len(s.Technologies) > 0 {
		lines = append(lines, "")
		for _, t := range s.Technologies {
			conf := lipgloss.NewStyle().Foreground(levelColors[detect.Bucket(t.Confidence)]).
				Render(fmt.Sprintf("%.2f", t.Confidence))
			lines = append(lines, fmt.Sprintf("%s %s", conf, t.Name))
		}
	}
	for _, w := range s.Warnings {
		lines = append(lines, warnStyle.Render("! "+w))
	}

	return []byte(boxStyle.Render(strings.Join(lines, "\n")) + "\n"), nil
}
