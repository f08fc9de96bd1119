// Package docgen runs a documentation pass end to end: list the source,
// analyze it, optionally summarize it with an LLM, then write and export the
// documents.
package docgen

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianshen/docgenie/internal/analysis"
	"github.com/julianshen/docgenie/internal/config"
	"github.com/julianshen/docgenie/internal/deps"
	"github.com/julianshen/docgenie/internal/detect"
	"github.com/julianshen/docgenie/internal/integrations"
	"github.com/julianshen/docgenie/internal/output"
	"github.com/julianshen/docgenie/internal/report"
	"github.com/julianshen/docgenie/internal/signature"
	"github.com/julianshen/docgenie/internal/source"
	"github.com/julianshen/docgenie/internal/summary"
)

// topTechnologies is how many detections the run summary lists.
const topTechnologies = 10

// Options selects what a run documents.
type Options struct {
	Target    string // local directory or GitHub/GitLab URL
	Config    *config.Config
	Summarize bool // ask the LLM for a prose summary
}

// Deps holds the collaborators of a run. Zero values are replaced with the
// production implementations.
type Deps struct {
	Open    func(target string, cfg *config.Config) (source.Source, error)
	LLM     summary.LLMCompleter // required when Options.Summarize is set
	Fetcher report.Fetcher
	Printer report.PDFPrinter
	Now     func() time.Time
}

// LoadSignatures returns the effective signature table for cfg: the embedded
// default, merged with or replaced by the configured file.
func LoadSignatures(cfg config.SignaturesConfig) (*signature.Table, error) {
	if cfg.File == "" {
		return signature.Default()
	}
	return signature.Load(cfg.File, cfg.Replace)
}

// withoutOutput drops entries under outputDir when it lies inside the local
// target, so documents from an earlier run are never analyzed again.
func withoutOutput(entries []source.Entry, target, outputDir string) []source.Entry {
	root, err := filepath.Abs(target)
	if err != nil {
		return entries
	}
	out, err := filepath.Abs(outputDir)
	if err != nil {
		return entries
	}
	rel, err := filepath.Rel(root, out)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return entries
	}
	prefix := filepath.ToSlash(rel)
	kept := entries[:0:0]
	for _, e := range entries {
		if e.Path == prefix || strings.HasPrefix(e.Path, prefix+"/") {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// Run executes the pipeline: source -> filter -> analyze -> summary ->
// assemble -> render -> export. Source and LLM failures abort the run before
// any document is written; export failures are only logged.
func Run(ctx context.Context, opts Options, d Deps) (*output.RunSummary, error) {
	start := time.Now()
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if d.Open == nil {
		d.Open = source.Open
	}
	if opts.Summarize && d.LLM == nil {
		return nil, fmt.Errorf("summary requested but no LLM configured")
	}

	table, err := LoadSignatures(cfg.Signatures)
	if err != nil {
		return nil, fmt.Errorf("signatures: %w", err)
	}

	// Stage 1: Source
	fmt.Fprintf(os.Stderr, "docgenie: opening %s...\n", opts.Target)
	src, err := d.Open(opts.Target, cfg)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	info, err := src.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository info: %w", err)
	}
	entries, err := src.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}

	// Stage 2: Filter
	if !source.IsRemote(opts.Target) {
		entries = withoutOutput(entries, opts.Target, cfg.Output.Dir)
	}
	filter, err := source.NewFilter(cfg.Scan)
	if err != nil {
		return nil, fmt.Errorf("scan config: %w", err)
	}
	if cfg.Scan.RespectGitignore {
		if _, err := filter.UseGitignore(entries); err != nil {
			log.Printf("WARNING: %v", err)
		}
	}
	for i, e := range entries {
		if e.Size < 0 && !deps.IsManifest(e.Path) {
			entries[i].Load = source.LimitLoader(e.Path, cfg.Scan.MaxFileSize, e.Load)
		}
	}
	kept := filter.Apply(entries)

	// Stage 3: Analyze
	fmt.Fprintf(os.Stderr, "docgenie: analyzing %d of %d files...\n", len(kept), len(entries))
	analyzer := analysis.New(table, analysis.Options{Concurrency: cfg.Scan.Concurrency, Outlines: true})
	res, err := analyzer.Analyze(ctx, kept)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	// Stage 4: Summary
	var prose string
	if opts.Summarize {
		fmt.Fprintf(os.Stderr, "docgenie: summarizing with %s...\n", cfg.Provider.Model)
		prose, err = summary.Generate(ctx, res, info, d.LLM)
		if err != nil {
			return nil, fmt.Errorf("summary: %w", err)
		}
	}

	// Stage 5: Assemble
	documents, err := report.Assemble(res, report.Meta{Repo: info, Summary: prose, Now: d.Now})
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}

	// Stage 6: Render
	rcfg := report.RendererConfig{Format: cfg.Output.Format, OutputDir: cfg.Output.Dir, SiteTitle: info.Name}
	fmt.Fprintf(os.Stderr, "docgenie: rendering %d documents to %s...\n", len(documents), cfg.Output.Dir)
	written, err := report.Render(documents, rcfg)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	// Stage 7: Export
	exports := export(ctx, documents, report.ContentDir(rcfg), cfg.Output, d)

	fmt.Fprintf(os.Stderr, "docgenie: done.\n")

	sum := output.NewRunSummary(opts.Target)
	sum.Repository = info.Name
	sum.OutputDir = cfg.Output.Dir
	sum.Format = rcfg.Format
	sum.Files = res.Summary.Files
	sum.Skipped = res.Summary.Skipped
	sum.Lines = res.Summary.Lines
	for _, det := range detect.Top(res.Detections, topTechnologies) {
		sum.Technologies = append(sum.Technologies, output.Technology{
			Name: det.Name, Category: det.Category, Confidence: det.Confidence,
		})
	}
	sum.Dependencies = len(res.Dependencies)
	for _, w := range res.Warnings {
		sum.Warnings = append(sum.Warnings, fmt.Sprintf("%s: %s", w.File, w.Message))
	}
	sum.Endpoints = len(res.Endpoints)
	sum.Summarized = prose != ""
	sum.Documents = written
	sum.Exports = exports
	sum.Finish(start)
	return sum, nil
}

// export writes the optional PlantUML images and PDFs under dir.
func export(ctx context.Context, documents []report.Document, dir string, cfg config.OutputConfig, d Deps) []string {
	var exports []string
	if cfg.UMLImages {
		fetcher := d.Fetcher
		if fetcher == nil {
			fetcher = integrations.NewHTTPFetcher(30 * time.Second)
		}
		fmt.Fprintf(os.Stderr, "docgenie: exporting diagrams via %s...\n", cfg.PlantUMLServer)
		exports = append(exports, report.ExportImages(ctx, documents, cfg.PlantUMLServer, dir, fetcher)...)
	}
	if cfg.PDF {
		printer := d.Printer
		if printer == nil {
			chrome, err := report.NewChromePrinter(ctx)
			if err != nil {
				log.Printf("WARNING: pdf export skipped: %v", err)
				return exports
			}
			defer chrome.Close()
			printer = chrome
		}
		fmt.Fprintf(os.Stderr, "docgenie: exporting PDFs...\n")
		exports = append(exports, report.ExportPDF(ctx, documents, dir, printer)...)
	}
	return exports
}
