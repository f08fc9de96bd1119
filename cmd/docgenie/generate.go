package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/julianshen/docgenie/internal/config"
	"github.com/julianshen/docgenie/internal/docgen"
)

type generateFlags struct {
	output     string
	format     string
	summary    bool
	pdf        bool
	umlImages  bool
	maxFiles   int
	ref        string
	signatures string
}

func (f *generateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.output, "output", "", "output directory (default from config)")
	cmd.Flags().StringVar(&f.format, "format", "", "output format: raw-md, hugo, docusaurus")
	cmd.Flags().BoolVar(&f.summary, "summary", false, "add an LLM-written summary")
	cmd.Flags().BoolVar(&f.pdf, "pdf", false, "export markdown documents as PDF (needs Chrome)")
	cmd.Flags().BoolVar(&f.umlImages, "uml-images", false, "render PlantUML diagrams to PNG via the PlantUML server")
	cmd.Flags().IntVar(&f.maxFiles, "max-files", -1, "maximum files to analyze, 0 for no limit (default from config)")
	cmd.Flags().StringVar(&f.ref, "ref", "", "branch, tag or commit for remote repositories")
	cmd.Flags().StringVar(&f.signatures, "signatures", "", "signature table file merged over the built-in one")
}

// apply overrides config fields with the flags that were set.
func (f *generateFlags) apply(cfg *config.Config) {
	if f.output != "" {
		cfg.Output.Dir = f.output
	}
	if f.format != "" {
		cfg.Output.Format = f.format
	}
	if f.pdf {
		cfg.Output.PDF = true
	}
	if f.umlImages {
		cfg.Output.UMLImages = true
	}
	if f.maxFiles >= 0 {
		cfg.Scan.MaxFiles = f.maxFiles
	}
	if f.ref != "" {
		cfg.GitHub.Ref = f.ref
		cfg.GitLab.Ref = f.ref
	}
	if f.signatures != "" {
		cfg.Signatures.File = f.signatures
	}
}

// pipelineDeps builds the run collaborators for cfg.
func (f *generateFlags) pipelineDeps(cfg *config.Config) (docgen.Deps, error) {
	var d docgen.Deps
	if f.summary {
		llm, err := newCompleter(cfg)
		if err != nil {
			return d, err
		}
		d.LLM = llm
	}
	return d, nil
}

func generateCmd() *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate [path-or-url]",
		Short: "Analyze a repository and write its documentation",
		Long: `Analyze a local directory or a GitHub/GitLab repository URL and write
README, technology, dependency, architecture, UML and API documents.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) > 0 {
				target = args[0]
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

			sum, err := docgen.Run(cmd.Context(), docgen.Options{
				Target:    target,
				Config:    cfg,
				Summarize: flags.summary,
			}, d)
			if err != nil {
				return fmt.Errorf("generate: %w", err)
			}
			return printSummary(cmd.OutOrStdout(), sum, reportFlag)
		},
	}

	flags.register(cmd)
	return cmd
}
