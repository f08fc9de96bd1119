package summary

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/docgenie/internal/analysis"
	"github.com/julianshen/docgenie/internal/deps"
	"github.com/julianshen/docgenie/internal/detect"
	"github.com/julianshen/docgenie/internal/source"
)

type mockLLM struct {
	system, prompt string
	response       string
	err            error
}

func (m *mockLLM) Complete(_ context.Context, system, prompt string) (string, error) {
	m.system, m.prompt = system, prompt
	return m.response, m.err
}

func sample() *analysis.Result {
	return &analysis.Result{
		Detections: []detect.Detection{
			{Name: "Jest", Category: "testing", Confidence: 0.4},
			{Name: "React", Category: "frameworks", Confidence: 0.9},
		},
		Dependencies: []deps.Dependency{
			{Name: "react", Version: "^18", Manager: "npm", Kind: deps.Production},
			{Name: "jest", Version: "29", Manager: "npm", Kind: deps.Development},
		},
		Summary: analysis.Summary{Files: 10, Lines: 500, PrimaryLanguage: "TypeScript",
			Languages: []analysis.LanguageStat{{Language: "TypeScript", Files: 10, Lines: 500}}},
		Structure: analysis.Structure{Directories: []analysis.DirectoryStat{{Path: "src", Files: 9}}},
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt(sample(), source.RepoInfo{Name: "widgets", Description: "Widget UI"})
	require.NoError(t, err)

	assert.Contains(t, prompt, `Summarize the repository "widgets"`)
	assert.Contains(t, prompt, "Description: Widget UI")
	assert.Contains(t, prompt, "10 files, 500 lines")
	assert.Contains(t, prompt, "- React [frameworks] 0.90\n- Jest [testing] 0.40")
	assert.Contains(t, prompt, "Dependencies (2 total, 1 production, 1 development):")
	assert.Contains(t, prompt, "- react ^18 (npm, production)")
	assert.Contains(t, prompt, "- src/ (9 files)")
	assert.Contains(t, prompt, "HTTP endpoints:\n- none")
}

func TestBuildPromptEmptyResult(t *testing.T) {
	prompt, err := BuildPrompt(&analysis.Result{}, source.RepoInfo{})
	require.NoError(t, err)
	assert.Contains(t, prompt, `"repository"`)
	assert.Contains(t, prompt, "Primary language: unknown")
	assert.NotContains(t, prompt, "Description:")
}

func TestGenerate(t *testing.T) {
	llm := &mockLLM{response: "\n## Purpose\nA widget UI.\n"}
	text, err := Generate(context.Background(), sample(), source.RepoInfo{Name: "widgets"}, llm)
	require.NoError(t, err)

	assert.Equal(t, "## Purpose\nA widget UI.", text)
	assert.Equal(t, systemPrompt, llm.system)
	assert.Contains(t, llm.prompt, "widgets")
}

func TestGenerateFailure(t *testing.T) {
	llm := &mockLLM{err: assert.AnError}
	_, err := Generate(context.Background(), sample(), source.RepoInfo{}, llm)
	assert.ErrorIs(t, err, assert.AnError)
}
