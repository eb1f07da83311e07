package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/popgenio/gldist/internal/duckdb"
)

func newExportCmd(verbose *bool) *cobra.Command {
	var (
		flags  datasetFlags
		dbPath string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export per-site summaries to a DuckDB database",
		Long: `Export loads the full dataset and writes one row per site into the
site_summary table of a DuckDB database, replacing any previous contents,
so datasets can be explored with plain SQL.`,
		Example: `  gldist export --geno data.geno --pos data.pos --n-ind 20 --n-sites 1000 --db sites.duckdb
  duckdb sites.duckdb "SELECT count(*) FROM site_summary WHERE n_missing > 0"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := buildLogger(*verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if dbPath == "" {
				dbPath = viper.GetString("export.db")
			}
			if dbPath == "" {
				dbPath = "gldist.duckdb"
			}

			m, d, err := flags.load(logger)
			if err != nil {
				return err
			}

			rows, err := duckdb.Summarize(m, d)
			if err != nil {
				return err
			}

			store, err := duckdb.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.ClearSiteSummaries(); err != nil {
				return err
			}
			if err := store.WriteSiteSummaries(rows); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d sites to %s\n", len(rows), dbPath)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB database path (default: export.db config key, then gldist.duckdb)")
	return cmd
}
