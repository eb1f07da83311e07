package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/popgenio/gldist/internal/output"
)

func newStatsCmd(verbose *bool) *cobra.Command {
	var (
		flags   datasetFlags
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Write a per-site summary table",
		Long: `Stats loads the full dataset and writes a tab-delimited table with one
row per site: inter-site distance, mean per-class posterior probability
across individuals, and the number of missing genotypes.`,
		Example: `  gldist stats --geno data.geno --pos data.pos --n-ind 20 --n-sites 1000
  gldist stats --geno data.glf --pos data.pos --n-ind 20 --n-sites 1000 --probs -o sites.tsv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := buildLogger(*verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()

			m, d, err := flags.load(logger)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer f.Close()
				w = f
			}

			return output.NewSiteWriter(w).WriteAll(m, d)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default: stdout)")
	return cmd
}
