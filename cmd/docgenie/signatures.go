package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/julianshen/docgenie/internal/config"
	"github.com/julianshen/docgenie/internal/docgen"
	"github.com/julianshen/docgenie/internal/signature"
)

func signaturesCmd() *cobra.Command {
	var (
		fileFlag    string
		replaceFlag bool
		countsFlag  bool
	)

	cmd := &cobra.Command{
		Use:   "signatures",
		Short: "Print the effective technology signature table",
		Long: `Load and validate the signature table (built-in, merged with the configured
or given file) and print it as YAML, or print per-category counts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sc := cfg.Signatures
			if fileFlag != "" {
				sc = config.SignaturesConfig{File: fileFlag, Replace: replaceFlag}
			}

			table, err := docgen.LoadSignatures(sc)
			if err != nil {
				return fmt.Errorf("signatures: %w", err)
			}

			out := cmd.OutOrStdout()
			if countsFlag {
				counts := table.Count()
				total := 0
				for _, cat := range signature.Categories {
					fmt.Fprintf(out, "%-15s %d\n", cat, counts[cat])
					total += counts[cat]
				}
				fmt.Fprintf(out, "%-15s %d\n", "total", total)
				return nil
			}

			data, err := table.Marshal()
			if err != nil {
				return fmt.Errorf("encoding signatures: %w", err)
			}
			_, err = out.Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&fileFlag, "file", "", "signature file to load instead of the configured one")
	cmd.Flags().BoolVar(&replaceFlag, "replace", false, "use only --file, without the built-in table")
	cmd.Flags().BoolVar(&countsFlag, "counts", false, "print signature counts per category")

	return cmd
}
