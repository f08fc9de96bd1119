package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/julianshen/docgenie/internal/report"
)

// renderMarkdown styles md for a terminal of the given width. Non-markdown
// files are returned unchanged.
func renderMarkdown(name, md string, width int) (string, error) {
	if !strings.HasSuffix(name, ".md") {
		return md, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating glamour renderer: %w", err)
	}
	return r.Render(md)
}

func viewCmd() *cobra.Command {
	var dirFlag string

	cmd := &cobra.Command{
		Use:   "view [document]",
		Short: "Render a generated document in the terminal",
		Long: `Render a generated markdown document with terminal styling. The document is
resolved relative to the output directory; README.md is shown by default.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := dirFlag
			if dir == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				dir = report.ContentDir(report.RendererConfig{Format: cfg.Output.Format, OutputDir: cfg.Output.Dir})
			}
			name := report.ReadmePath
			if len(args) > 0 {
				name = args[0]
			}

			path := name
			if !filepath.IsAbs(path) {
				path = filepath.Join(dir, filepath.FromSlash(name))
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading document: %w", err)
			}

			out := cmd.OutOrStdout()
			rendered := string(data)
			if isTerminal(out) {
				rendered, err = renderMarkdown(path, rendered, terminalWidth(out, 100)-4)
				if err != nil {
					return err
				}
			}
			_, err = fmt.Fprint(out, rendered)
			return err
		},
	}

	cmd.Flags().StringVar(&dirFlag, "dir", "", "document directory (default from config)")
	return cmd
}
