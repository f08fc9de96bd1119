package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/julianshen/docgenie/internal/config"
	"github.com/julianshen/docgenie/internal/integrations"
	"github.com/julianshen/docgenie/internal/output"
	"github.com/julianshen/docgenie/internal/provider"

	// Register providers via init() side effects.
	_ "github.com/julianshen/docgenie/internal/provider/anthropic"
	_ "github.com/julianshen/docgenie/internal/provider/openai"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	configPath   string
	modelFlag    string
	providerFlag string
	reportFlag   string
)

func versionString() string {
	return fmt.Sprintf("docgenie %s (commit: %s, built: %s)", version, commit, date)
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docgenie",
		Short: "Generate documentation for a repository",
		Long: `docgenie analyzes a local checkout or a GitHub/GitLab repository and writes
technology, dependency, architecture, UML and API documentation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&modelFlag, "model", "", "override model name")
	root.PersistentFlags().StringVar(&providerFlag, "provider", "", "override provider name")
	root.PersistentFlags().StringVar(&reportFlag, "report", "", "run summary format: styled, markdown, json (default styled on a terminal, markdown otherwise)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}

	root.AddCommand(versionCmd)
	root.AddCommand(generateCmd())
	root.AddCommand(signaturesCmd())
	root.AddCommand(viewCmd())
	root.AddCommand(watchCmd())
	return root
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves the config path, loads the config, and applies the
// persistent flag overrides.
func loadConfig() (*config.Config, error) {
	cfgPath := configPath
	if cfgPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgPath = filepath.Join(home, ".config", "docgenie", "config.toml")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if modelFlag != "" {
		cfg.Provider.Model = modelFlag
	}
	if providerFlag != "" {
		cfg.Provider.Default = providerFlag
	}
	return cfg, nil
}

// newCompleter builds the LLM completer used by the summary variant.
func newCompleter(cfg *config.Config) (*integrations.LLMCompleter, error) {
	p, err := provider.NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating provider: %w", err)
	}
	return integrations.NewLLMCompleter(p, cfg.Provider.Model, cfg.Provider.MaxTokens), nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or fallback when unknown.
func terminalWidth(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok {
		return fallback
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

// printSummary writes the run summary to w in the requested format, picking
// a styled panel for terminals when none was requested.
func printSummary(w io.Writer, sum *output.RunSummary, format string) error {
	if format == "" {
		format = output.FormatMarkdown
		if isTerminal(w) {
			format = output.FormatStyled
		}
	}
	formatter, err := output.NewFormatter(format)
	if err != nil {
		return err
	}
	out, err := formatter.Format(sum)
	if err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	_, err = w.Write(out)
	return err
}
