package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd(verbose *bool) *cobra.Command {
	var flags datasetFlags

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a genotype/position dataset and print a summary",
		Long: `Check loads the full dataset, enforcing field counts, value domains,
monotone intra-chromosome positions and an exact match between the declared
site count and the data present, then prints a one-screen summary.`,
		Example: `  gldist check --geno data.geno --pos data.pos --n-ind 20 --n-sites 1000
  gldist check --geno data.glf.gz --pos data.pos.gz --n-ind 20 --n-sites 1000 --probs
  gldist check --geno data.bin --pos data.pos --n-ind 20 --n-sites 1000 --binary --log-scale`,
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

			totalMissing := 0
			for s := 1; s <= m.Sites(); s++ {
				totalMissing += m.Stats(s).NMissing
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "individuals: %d\n", m.Individuals())
			fmt.Fprintf(out, "sites:       %d\n", m.Sites())
			fmt.Fprintf(out, "chromosomes: %d\n", d.Chromosomes())
			fmt.Fprintf(out, "span (bp):   %.0f\n", d.Span())
			fmt.Fprintf(out, "missing:     %d of %d genotypes\n", totalMissing, m.Individuals()*m.Sites())
			fmt.Fprintf(out, "scale:       %s\n", m.Scale())
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
