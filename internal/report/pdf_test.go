package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownToHTML(t *testing.T) {
	html, err := MarkdownToHTML("Deps <v2>", []byte("# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"))
	require.NoError(t, err)

	s := string(html)
	assert.Contains(t, s, "<title>Deps &lt;v2&gt;</title>")
	assert.Contains(t, s, "<h1>Title</h1>")
	assert.Contains(t, s, "<table>")
	assert.Contains(t, s, "<td>1</td>")
}

func TestPDFPath(t *testing.T) {
	assert.Equal(t, "pdf/README.pdf", PDFPath("README.md"))
	assert.Equal(t, "pdf/analysis_technology_analysis.pdf", PDFPath("analysis/technology_analysis.md"))
}

type fakePrinter struct {
	failOn string
}

func (p fakePrinter) PrintPDF(_ context.Context, html []byte) ([]byte, error) {
	if p.failOn != "" && strings.Contains(string(html), p.failOn) {
		return nil, errors.New("chrome crashed")
	}
	return []byte("%PDF-1.4"), nil
}

func TestExportPDF(t *testing.T) {
	dir := t.TempDir()
	docs := []Document{
		{Path: "README.md", Title: "Overview", Content: "# Overview\n"},
		{Path: "uml/class_diagram.puml", Content: "@startuml\n@enduml\n"},
		{Path: "analysis/dependency_analysis.md", Title: "Deps", Content: "# Broken\n"},
		{Path: "architecture/architecture_analysis.md", Title: "Arch", Content: "# Arch\n"},
	}

	written := ExportPDF(context.Background(), docs, dir, fakePrinter{failOn: "Broken"})
	assert.Equal(t, []string{
		filepath.Join(dir, "pdf", "README.pdf"),
		filepath.Join(dir, "pdf", "architecture_architecture_analysis.pdf"),
	}, written)

	data, err := os.ReadFile(written[0])
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}
