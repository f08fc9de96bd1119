package docgen

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/docgenie/internal/config"
	"github.com/julianshen/docgenie/internal/report"
	"github.com/julianshen/docgenie/internal/source"
)

// ---------- helpers ----------

type memSource struct {
	info       source.RepoInfo
	files      map[string]string
	unsized    map[string]bool
	entriesErr error
}

func (m *memSource) Info(context.Context) (source.RepoInfo, error) {
	return m.info, nil
}

func (m *memSource) Entries(context.Context) ([]source.Entry, error) {
	if m.entriesErr != nil {
		return nil, m.entriesErr
	}
	var entries []source.Entry
	for p, content := range m.files {
		size := int64(len(content))
		if m.unsized[p] {
			size = -1
		}
		data := []byte(content)
		entries = append(entries, source.Entry{
			Path: p,
			Size: size,
			Load: func() ([]byte, error) { return data, nil },
		})
	}
	return entries, nil
}

func sampleSource() *memSource {
	return &memSource{
		info: source.RepoInfo{Name: "widgets", Description: "Widget shop"},
		files: map[string]string{
			".gitignore":   "secret/\n",
			"package.json": `{"dependencies": {"react": "^18.2.0"}}`,
			"src/App.jsx":  "import React from 'react'\n",
			"app.py": heredoc.Doc(`
				from flask import Flask
				app = Flask(__name__)

				@app.route("/hello")
				def hello():
				    return "hi"
			`),
			"secret/key.py": "KEY = 1\n",
		},
	}
}

func openFunc(src source.Source) func(string, *config.Config) (source.Source, error) {
	return func(string, *config.Config) (source.Source, error) { return src, nil }
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Output.Dir = filepath.Join(t.TempDir(), "out")
	cfg.Scan.Concurrency = 2
	return cfg
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
}

type mockLLM struct {
	response string
	err      error
	calls    int
}

func (m *mockLLM) Complete(context.Context, string, string) (string, error) {
	m.calls++
	return m.response, m.err
}

type fakeFetcher struct{}

func (fakeFetcher) Fetch(context.Context, string) ([]byte, error) {
	return []byte("\x89PNG"), nil
}

type fakePrinter struct{}

func (fakePrinter) PrintPDF(context.Context, []byte) ([]byte, error) {
	return []byte("%PDF-1.4"), nil
}

func readOutput(t *testing.T, cfg *config.Config, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

// ---------- tests ----------

func TestRunFullPipeline(t *testing.T) {
	cfg := testConfig(t)

	sum, err := Run(context.Background(), Options{Target: "./widgets", Config: cfg},
		Deps{Open: openFunc(sampleSource()), Now: fixedNow})
	require.NoError(t, err)

	assert.Equal(t, "widgets", sum.Repository)
	assert.Equal(t, 4, sum.Files, "secret/ is gitignored")
	assert.Equal(t, 0, sum.Skipped)
	assert.Equal(t, 1, sum.Dependencies)
	assert.Equal(t, 1, sum.Endpoints)
	assert.False(t, sum.Summarized)
	assert.Len(t, sum.Documents, 9)
	assert.Empty(t, sum.Exports)
	assert.NotEmpty(t, sum.RunID)

	var names []string
	for _, tech := range sum.Technologies {
		names = append(names, tech.Name)
	}
	assert.Contains(t, names, "React")
	assert.Contains(t, names, "Flask")

	readme := readOutput(t, cfg, report.ReadmePath)
	assert.Contains(t, readme, "widgets")
	assert.Contains(t, readme, "generated on 2024-03-09 14:05:07")
	assert.Contains(t, readOutput(t, cfg, report.OpenAPIPath), "/hello:")
	assert.NoFileExists(t, filepath.Join(cfg.Output.Dir, filepath.FromSlash(report.SummaryPath)))
}

func TestRunWithoutGitignore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scan.RespectGitignore = false

	sum, err := Run(context.Background(), Options{Target: "x", Config: cfg},
		Deps{Open: openFunc(sampleSource())})
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Files)
}

func TestRunWithSummary(t *testing.T) {
	cfg := testConfig(t)
	llm := &mockLLM{response: "## Purpose\nSells widgets."}

	sum, err := Run(context.Background(), Options{Target: "x", Config: cfg, Summarize: true},
		Deps{Open: openFunc(sampleSource()), LLM: llm})
	require.NoError(t, err)

	assert.True(t, sum.Summarized)
	assert.Equal(t, 1, llm.calls)
	assert.Len(t, sum.Documents, 10)
	assert.Contains(t, readOutput(t, cfg, report.SummaryPath), "Sells widgets.")
}

func TestRunSummaryFailureWritesNothing(t *testing.T) {
	cfg := testConfig(t)
	llm := &mockLLM{err: assert.AnError}

	_, err := Run(context.Background(), Options{Target: "x", Config: cfg, Summarize: true},
		Deps{Open: openFunc(sampleSource()), LLM: llm})
	require.ErrorIs(t, err, assert.AnError)
	assert.NoDirExists(t, cfg.Output.Dir)
}

func TestRunSummaryRequiresLLM(t *testing.T) {
	cfg := testConfig(t)
	_, err := Run(context.Background(), Options{Target: "x", Config: cfg, Summarize: true},
		Deps{Open: openFunc(sampleSource())})
	require.Error(t, err)
	assert.NoDirExists(t, cfg.Output.Dir)
}

func TestRunSourceFailure(t *testing.T) {
	cfg := testConfig(t)
	src := sampleSource()
	src.entriesErr = assert.AnError

	_, err := Run(context.Background(), Options{Target: "x", Config: cfg}, Deps{Open: openFunc(src)})
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "listing files")
	assert.NoDirExists(t, cfg.Output.Dir)
}

func TestRunOpenFailure(t *testing.T) {
	cfg := testConfig(t)
	open := func(string, *config.Config) (source.Source, error) { return nil, source.ErrUnsupportedURL }

	_, err := Run(context.Background(), Options{Target: "ftp://x", Config: cfg}, Deps{Open: open})
	require.ErrorIs(t, err, source.ErrUnsupportedURL)
}

func TestRunInvalidSignaturesFailsBeforeSource(t *testing.T) {
	cfg := testConfig(t)
	bad := filepath.Join(t.TempDir(), "sigs.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("frameworks:\n  - name: \"\"\n"), 0o644))
	cfg.Signatures.File = bad

	opened := false
	open := func(string, *config.Config) (source.Source, error) {
		opened = true
		return sampleSource(), nil
	}
	_, err := Run(context.Background(), Options{Target: "x", Config: cfg}, Deps{Open: open})
	require.Error(t, err)
	assert.False(t, opened)
}

func TestRunLimitsUnsizedEntries(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scan.MaxFileSize = 50
	src := sampleSource()
	src.files["big.js"] = strings.Repeat("x", 100)
	src.files["package.json"] = `{"dependencies": {"react": "^18.2.0", "left-pad": "1.3.0"}}` + strings.Repeat(" ", 60)
	src.unsized = map[string]bool{"big.js": true, "package.json": true}

	sum, err := Run(context.Background(), Options{Target: "x", Config: cfg}, Deps{Open: openFunc(src)})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 2, sum.Dependencies, "manifests are exempt from the size limit")
}

func TestRunExports(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.UMLImages = true
	cfg.Output.PDF = true

	sum, err := Run(context.Background(), Options{Target: "x", Config: cfg},
		Deps{Open: openFunc(sampleSource()), Fetcher: fakeFetcher{}, Printer: fakePrinter{}})
	require.NoError(t, err)

	assert.Len(t, sum.Exports, 8)
	assert.FileExists(t, filepath.Join(cfg.Output.Dir, "uml", "class_diagram.png"))
	assert.FileExists(t, filepath.Join(cfg.Output.Dir, "pdf", "README.pdf"))
}

func TestRunHugoFormat(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.Format = report.FormatHugo

	sum, err := Run(context.Background(), Options{Target: "x", Config: cfg}, Deps{Open: openFunc(sampleSource())})
	require.NoError(t, err)

	assert.Equal(t, "hugo", sum.Format)
	assert.FileExists(t, filepath.Join(cfg.Output.Dir, "config.toml"))
	assert.FileExists(t, filepath.Join(cfg.Output.Dir, "content", "README.md"))
	assert.Contains(t, readOutput(t, cfg, "config.toml"), `title = "widgets"`)
}

func TestRunIgnoresPreviousOutput(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"),
		[]byte(`{"dependencies": {"@angular/core": "^17.0.0"}}`), 0o644))
	cfg := config.DefaultConfig()
	cfg.Output.Dir = filepath.Join(root, "output")
	cfg.Scan.Concurrency = 2

	first, err := Run(context.Background(), Options{Target: root, Config: cfg}, Deps{Now: fixedNow})
	require.NoError(t, err)
	second, err := Run(context.Background(), Options{Target: root, Config: cfg}, Deps{Now: fixedNow})
	require.NoError(t, err)

	assert.Equal(t, 1, first.Files)
	assert.Equal(t, first.Files, second.Files)
	assert.Equal(t, first.Lines, second.Lines)
	require.NotEmpty(t, first.Technologies)
	assert.Equal(t, first.Technologies, second.Technologies)
}

func TestWithoutOutput(t *testing.T) {
	root := t.TempDir()
	entries := []source.Entry{{Path: "main.go"}, {Path: "docs/out/README.md"}, {Path: "docs/outline.md"}, {Path: "docs/out"}}

	paths := func(es []source.Entry) []string {
		var out []string
		for _, e := range es {
			out = append(out, e.Path)
		}
		return out
	}

	assert.Equal(t, []string{"main.go", "docs/outline.md"},
		paths(withoutOutput(entries, root, filepath.Join(root, "docs", "out"))))
	assert.Len(t, withoutOutput(entries, root, t.TempDir()), 4, "output outside the target")
	assert.Len(t, withoutOutput(entries, root, root), 4, "output is the target itself")
}

func TestLoadSignaturesDefault(t *testing.T) {
	table, err := LoadSignatures(config.SignaturesConfig{})
	require.NoError(t, err)
	assert.NotEmpty(t, table.Count())
}
