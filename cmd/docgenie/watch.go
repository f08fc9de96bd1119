package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/julianshen/docgenie/internal/docgen"
	"github.com/julianshen/docgenie/internal/source"
)

// watchSkipper decides which paths the watcher ignores: excluded directory
// names anywhere in the tree and everything under the output directory.
type watchSkipper struct {
	dirs   map[string]bool
	output string // absolute
}

func newWatchSkipper(excludeDirs []string, outputDir string) (*watchSkipper, error) {
	out, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("resolving output dir: %w", err)
	}
	s := &watchSkipper{dirs: make(map[string]bool, len(excludeDirs)+1), output: out}
	s.dirs[".git"] = true
	for _, d := range excludeDirs {
		s.dirs[strings.Trim(d, "/")] = true
	}
	return s, nil
}

func (s *watchSkipper) skip(path string) bool {
	abs, err := filepath.Abs(path)
	if err == nil && (abs == s.output || strings.HasPrefix(abs, s.output+string(filepath.Separator))) {
		return true
	}
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if s.dirs[seg] {
			return true
		}
	}
	return false
}

// addTree adds root and every directory below it to w.
func addTree(w *fsnotify.Watcher, root string, s *watchSkipper) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && s.skip(path) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

// relevant reports whether ev should trigger a rebuild.
func (s *watchSkipper) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	return !s.skip(ev.Name)
}

// watchLoop calls run once events have been quiet for delay. It returns when
// ctx is done or the event channel closes.
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, delay time.Duration, relevant func(fsnotify.Event) bool, run func()) {
	timer := time.NewTimer(delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if relevant(ev) {
				timer.Reset(delay)
			}
		case err, ok := <-errs:
			if !ok {
				return
			}
			log.Printf("WARNING: watch: %v", err)
		case <-timer.C:
			run()
		}
	}
}

func watchCmd() *cobra.Command {
	var (
		flags    generateFlags
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Regenerate documentation when a local repository changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			if source.IsRemote(dir) {
				return errors.New("watch needs a local directory")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			flags.apply(cfg)
			d, err := flags.pipelineDeps(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			generate := func() {
				sum, err := docgen.Run(ctx, docgen.Options{Target: dir, Config: cfg, Summarize: flags.summary}, d)
				if err != nil {
					log.Printf("WARNING: generate: %v", err)
					return
				}
				if err := printSummary(cmd.OutOrStdout(), sum, reportFlag); err != nil {
					log.Printf("WARNING: %v", err)
				}
			}

			skipper, err := newWatchSkipper(cfg.Scan.ExcludeDirs, cfg.Output.Dir)
			if err != nil {
				return err
			}
			w, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("creating watcher: %w", err)
			}
			defer w.Close()
			if err := addTree(w, dir, skipper); err != nil {
				return fmt.Errorf("watching %s: %w", dir, err)
			}

			generate()
			fmt.Fprintf(os.Stderr, "docgenie: watching %s (Ctrl+C to stop)...\n", dir)

			relevant := func(ev fsnotify.Event) bool {
				if !skipper.relevant(ev) {
					return false
				}
				if ev.Has(fsnotify.Create) {
					if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
						if err := addTree(w, ev.Name, skipper); err != nil {
							log.Printf("WARNING: watch: %v", err)
						}
					}
				}
				return true
			}
			watchLoop(ctx, w.Events, w.Errors, debounce, relevant, generate)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "quiet period before regenerating")
	return cmd
}
