package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/popgenio/gldist/internal/geno"
)

func newConvertCmd(verbose *bool) *cobra.Command {
	var (
		inPath   string
		outPath  string
		nInd     int
		nSites   int
		probs    bool
		logScale bool
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a text genotype file to packed binary",
		Long: `Convert loads a text genotype file (called genotypes or probabilities)
and writes it back as the packed binary encoding: per site, per individual,
3 normalized log-probability doubles in native byte order. The binary file
loads with --binary --log-scale.`,
		Example: `  gldist convert --input calls.geno --output calls.bin --n-ind 20 --n-sites 1000
  gldist convert --input probs.glf.gz --output probs.bin --n-ind 20 --n-sites 1000 --probs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := buildLogger(*verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()

			scale := geno.ScaleLinear
			if logScale {
				scale = geno.ScaleLog
			}

			m, err := geno.Load(inPath, geno.LoadOptions{
				Probabilistic: probs,
				Scale:         scale,
				Individuals:   nInd,
				Sites:         nSites,
				Logger:        logger,
			})
			if err != nil {
				return err
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			if err := geno.WriteBinary(f, m); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&inPath, "input", "i", "", "text genotype input file (gzip/zstd detected)")
	fl.StringVarP(&outPath, "output", "o", "", "binary output file")
	fl.IntVar(&nInd, "n-ind", 0, "number of individuals")
	fl.IntVar(&nSites, "n-sites", 0, "number of sites")
	fl.BoolVar(&probs, "probs", false, "input holds 3 probability fields per individual")
	fl.BoolVar(&logScale, "log-scale", false, "input probabilities are natural-log scaled")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")
	cmd.MarkFlagRequired("n-ind")
	cmd.MarkFlagRequired("n-sites")

	return cmd
}
