package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	var (
		verbose bool
		cfgFile string
	)

	cmd := &cobra.Command{
		Use:   "gldist",
		Short: "Load and inspect genotype-likelihood datasets",
		Long: `gldist loads per-site genotype information (called genotypes, genotype
likelihoods, or posterior probabilities) together with per-site chromosome
positions, validates both against the declared dataset dimensions, and
reports inter-site distances and per-site summaries.

Text inputs may be gzip- or zstd-compressed; compression is detected
automatically.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cfgFile)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.gldist.yaml)")

	cmd.AddCommand(newCheckCmd(&verbose))
	cmd.AddCommand(newStatsCmd(&verbose))
	cmd.AddCommand(newConvertCmd(&verbose))
	cmd.AddCommand(newExportCmd(&verbose))
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig wires viper to the config file and GLDIST_* environment
// variables. A missing config file is not an error.
func initConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".gldist")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("GLDIST")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// buildLogger returns a stderr logger: human-readable in verbose mode,
// JSON otherwise.
func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
