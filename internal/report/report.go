// Package report turns an analysis result into the generated document set
// and writes it to disk.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/julianshen/docgenie/internal/analysis"
	"github.com/julianshen/docgenie/internal/source"
)

// TimestampLayout is the format of the provenance trailer.
const TimestampLayout = "2006-01-02 15:04:05"

// Document paths, in assembly order.
const (
	ReadmePath           = "README.md"
	TechnologyPath       = "analysis/technology_analysis.md"
	DependencyPath       = "analysis/dependency_analysis.md"
	SummaryPath          = "analysis/ai_summary.md"
	ArchitecturePath     = "architecture/architecture_analysis.md"
	UseCaseDiagramPath   = "uml/use_case_diagram.puml"
	ClassDiagramPath     = "uml/class_diagram.puml"
	ComponentDiagramPath = "uml/component_diagram.puml"
	APISpecPath          = "api/api_specification.md"
	OpenAPIPath          = "api/openapi.yaml"
)

// Document is one generated output file.
type Document struct {
	Path    string
	Title   string
	Content string
}

// IsMarkdown reports whether the document is a markdown page.
func (d Document) IsMarkdown() bool {
	return strings.HasSuffix(d.Path, ".md")
}

// Meta is rendering context that does not come from the analysis.
type Meta struct {
	Repo    source.RepoInfo
	Summary string           // LLM prose; empty when the summary variant is off
	Now     func() time.Time // nil means time.Now
}

func (m Meta) timestamp() string {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	return now().Format(TimestampLayout)
}

func (m Meta) name() string {
	if m.Repo.Name != "" {
		return m.Repo.Name
	}
	return "Repository"
}

// Assemble builds the fixed document set from res. It only formats what res
// holds: no score, match or count is recomputed here.
func Assemble(res *analysis.Result, meta Meta) ([]Document, error) {
	if res == nil {
		return nil, fmt.Errorf("assemble: nil analysis result")
	}
	ts := meta.timestamp()

	openapi, err := buildOpenAPI(res, meta)
	if err != nil {
		return nil, err
	}

	docs := []Document{
		buildReadme(res, meta),
		buildTechnologyReport(res, meta),
		buildDependencyReport(res, meta),
		buildArchitectureReport(res, meta),
		buildUseCaseDiagram(res, meta),
		buildClassDiagram(res, meta),
		buildComponentDiagram(res, meta),
		buildAPISpec(res, meta, openapi),
		{Path: OpenAPIPath, Title: "OpenAPI", Content: openapi},
	}
	if meta.Summary != "" {
		docs = append(docs, buildSummaryPage(meta))
	}

	for i := range docs {
		docs[i].Content = withTrailer(docs[i], ts)
	}
	return docs, nil
}

// withTrailer appends the provenance line in the document's comment syntax.
func withTrailer(d Document, ts string) string {
	content := strings.TrimRight(d.Content, "\n") + "\n"
	switch {
	case strings.HasSuffix(d.Path, ".puml"):
		return content + "' generated on " + ts + "\n"
	case strings.HasSuffix(d.Path, ".yaml"):
		return content + "# generated on " + ts + "\n"
	default:
		return content + "\n---\n\n*Analysis generated on " + ts + " by docgenie*\n"
	}
}

// cell escapes text for use inside a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// thousands formats n with comma separators.
func thousands(n int) string {
	return humanize.Comma(int64(n))
}
