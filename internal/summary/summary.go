// Package summary asks an LLM for a prose overview of an analysis result.
package summary

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/julianshen/docgenie/internal/analysis"
	"github.com/julianshen/docgenie/internal/deps"
	"github.com/julianshen/docgenie/internal/detect"
	"github.com/julianshen/docgenie/internal/source"
)

// LLMCompleter abstracts LLM completion for testability.
type LLMCompleter interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Prompt size limits.
const (
	maxTechnologies = 15
	maxDependencies = 30
	maxEndpoints    = 20
	maxDirectories  = 15
)

const systemPrompt = `You are a senior software engineer writing onboarding documentation.
Write in concise markdown. Only state what the provided analysis supports; do not invent features.`

// ---------- prompt template ----------

var promptTmpl = template.Must(template.New("summary").Funcs(template.FuncMap{
	"pct": func(v float64) string { return fmt.Sprintf("%.2f", v) },
}).Parse(`Summarize the repository "{{.Repo.Name}}" for a new contributor.
{{- if .Repo.Description}}
Description: {{.Repo.Description}}
{{- end}}

Code metrics: {{.Summary.Files}} files, {{.Summary.Lines}} lines, {{.Summary.Functions}} functions, {{.Summary.Classes}} classes.
Primary language: {{if .Summary.PrimaryLanguage}}{{.Summary.PrimaryLanguage}}{{else}}unknown{{end}}
Languages:
{{- range .Summary.Languages}}
- {{.Language}}: {{.Files}} files, {{.Lines}} lines
{{- end}}

Detected technologies (confidence 0-1):
{{- range .Technologies}}
- {{.Name}} [{{.Category}}] {{pct .Confidence}}
{{- else}}
- none
{{- end}}

Dependencies ({{.Total}} total, {{.Production}} production, {{.Development}} development):
{{- range .Dependencies}}
- {{.Name}} {{.Version}} ({{.Manager}}, {{.Kind}})
{{- else}}
- none
{{- end}}

Top-level directories:
{{- range .Directories}}
- {{.Path}}/ ({{.Files}} files)
{{- else}}
- none
{{- end}}

HTTP endpoints:
{{- range .Endpoints}}
- {{.Method}} {{.Path}} in {{.File}}
{{- else}}
- none
{{- end}}

Write these sections:
## Purpose
## Architecture
## Technology Stack
## Getting Started
## Observations`))

type promptData struct {
	Repo                           source.RepoInfo
	Summary                        analysis.Summary
	Technologies                   []detect.Detection
	Dependencies                   []deps.Dependency
	Total, Production, Development int
	Directories                    []analysis.DirectoryStat
	Endpoints                      []analysis.Endpoint
}

// BuildPrompt renders the user prompt for res.
func BuildPrompt(res *analysis.Result, repo source.RepoInfo) (string, error) {
	total, prod, dev := deps.Counts(res.Dependencies)
	data := promptData{
		Repo:         repo,
		Summary:      res.Summary,
		Technologies: detect.Top(res.Detections, maxTechnologies),
		Dependencies: head(res.Dependencies, maxDependencies),
		Total:        total,
		Production:   prod,
		Development:  dev,
		Directories:  head(res.Structure.Directories, maxDirectories),
		Endpoints:    head(res.Endpoints, maxEndpoints),
	}
	if data.Repo.Name == "" {
		data.Repo.Name = "repository"
	}

	var buf bytes.Buffer
	if err := promptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return buf.String(), nil
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// Generate returns the LLM's summary of res. Any failure is returned to the
// caller; there is no fallback text.
func Generate(ctx context.Context, res *analysis.Result, repo source.RepoInfo, llm LLMCompleter) (string, error) {
	prompt, err := BuildPrompt(res, repo)
	if err != nil {
		return "", err
	}
	text, err := llm.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("LLM completion: %w", err)
	}
	return strings.TrimSpace(text), nil
}
