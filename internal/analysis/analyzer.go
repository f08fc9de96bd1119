// Package analysis runs the per-file classification and matching passes
// over a repository listing and reduces them to a Result.
package analysis

import (
	"context"
	"fmt"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/julianshen/docgenie/internal/classify"
	"github.com/julianshen/docgenie/internal/deps"
	"github.com/julianshen/docgenie/internal/detect"
	"github.com/julianshen/docgenie/internal/signature"
	"github.com/julianshen/docgenie/internal/source"
)

// Options configures an Analyzer.
type Options struct {
	Concurrency int  // worker count, at least 1
	Outlines    bool // extract functions, classes and imports with tree-sitter
}

// Analyzer is built per run and holds no state between runs.
type Analyzer struct {
	table       *signature.Table
	classifier  *classify.Classifier
	concurrency int
}

// New creates an Analyzer over the given signature table.
func New(table *signature.Table, opts Options) *Analyzer {
	return &Analyzer{
		table:       table,
		classifier:  classify.New(opts.Outlines),
		concurrency: max(opts.Concurrency, 1),
	}
}

// fileResult is the output of one worker. Each worker owns exactly one slot.
type fileResult struct {
	file      classify.SourceFile
	matches   []detect.Match
	endpoints []Endpoint
	manifest  *deps.Manifest
}

// Analyze classifies and matches every entry, then scores the matches and
// aggregates dependencies. Entries are processed in path order regardless of
// worker scheduling, so the result is deterministic. Only context
// cancellation makes it fail.
func (a *Analyzer) Analyze(ctx context.Context, entries []source.Entry) (*Result, error) {
	sorted := make([]source.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	slots := make([]fileResult, len(sorted))
	p := pool.New().WithContext(ctx).WithMaxGoroutines(a.concurrency)
	for i, e := range sorted {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			slots[i] = a.analyzeFile(ctx, e)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("analyzing files: %w", err)
	}

	var (
		matches   []detect.Match
		manifests []deps.Manifest
		endpoints []Endpoint
		files     = make([]classify.SourceFile, len(slots))
	)
	for i, s := range slots {
		matches = append(matches, s.matches...)
		endpoints = append(endpoints, s.endpoints...)
		if s.manifest != nil {
			manifests = append(manifests, *s.manifest)
		}
		files[i] = s.file
	}

	dependencies, warnings := deps.Aggregate(manifests)
	res := &Result{
		Detections:   detect.Score(matches),
		Dependencies: dependencies,
		Warnings:     warnings,
		Endpoints:    dedupEndpoints(endpoints),
		Summary:      summarize(files),
		Structure:    structure(files),
		Files:        fileInfos(files),
	}
	for _, m := range manifests {
		res.Manifests = append(res.Manifests, m.Path)
	}
	return res, nil
}

func (a *Analyzer) analyzeFile(ctx context.Context, e source.Entry) fileResult {
	sf := a.classifier.Classify(ctx, e.Path, e.Size, e.Load)
	r := fileResult{
		matches:   detect.MatchFile(sf.Path, sf.Content, a.table),
		endpoints: findEndpoints(sf),
	}
	if deps.IsManifest(sf.Path) && !sf.Skipped {
		r.manifest = &deps.Manifest{Path: sf.Path, Content: sf.Content}
	}
	// Content is not needed past this point.
	sf.Content = nil
	r.file = sf
	return r
}
