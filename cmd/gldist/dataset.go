package main

import (
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/popgenio/gldist/internal/geno"
	"github.com/popgenio/gldist/internal/pos"
)

// datasetFlags are the flags shared by every command that loads a full
// genotype/position dataset.
type datasetFlags struct {
	genoPath string
	posPath  string
	nInd     int
	nSites   int
	binary   bool
	probs    bool
	logScale bool
}

func (f *datasetFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.genoPath, "geno", "", "genotype input file (text or packed binary; gzip/zstd detected)")
	fl.StringVar(&f.posPath, "pos", "", "position input file (chromosome and position per site)")
	fl.IntVar(&f.nInd, "n-ind", 0, "number of individuals")
	fl.IntVar(&f.nSites, "n-sites", 0, "number of sites")
	fl.BoolVar(&f.binary, "binary", false, "genotype input is packed binary doubles")
	fl.BoolVar(&f.probs, "probs", false, "genotype input holds 3 probability fields per individual")
	fl.BoolVar(&f.logScale, "log-scale", false, "genotype probabilities are natural-log scaled")
	cmd.MarkFlagRequired("geno")
	cmd.MarkFlagRequired("pos")
	cmd.MarkFlagRequired("n-ind")
	cmd.MarkFlagRequired("n-sites")
}

func (f *datasetFlags) scale() geno.Scale {
	if f.logScale {
		return geno.ScaleLog
	}
	return geno.ScaleLinear
}

// load reads the genotype and position files concurrently. The two loaders
// share no state, so either error aborts the whole call.
func (f *datasetFlags) load(logger *zap.Logger) (*geno.Matrix, pos.Distances, error) {
	var (
		wg   sync.WaitGroup
		m    *geno.Matrix
		d    pos.Distances
		gErr error
		pErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		m, gErr = geno.Load(f.genoPath, geno.LoadOptions{
			Binary:        f.binary,
			Probabilistic: f.probs,
			Scale:         f.scale(),
			Individuals:   f.nInd,
			Sites:         f.nSites,
			Logger:        logger,
		})
	}()
	go func() {
		defer wg.Done()
		d, pErr = pos.Load(f.posPath, f.nSites, logger)
	}()
	wg.Wait()

	if gErr != nil {
		return nil, nil, gErr
	}
	if pErr != nil {
		return nil, nil, pErr
	}
	return m, d, nil
}
