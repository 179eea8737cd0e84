package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/regland/regland/logger"
	"github.com/regland/regland/pkg/config"
	regdb "github.com/regland/regland/pkg/db"
	"github.com/regland/regland/pkg/expression"
	"github.com/regland/regland/pkg/model"
	"github.com/regland/regland/pkg/quality"
)

// openWritable opens the configured database for commands that change it.
func openWritable() (*regdb.RegDB, error) {
	c := *cfg
	c.Database.ReadOnly = false
	return openDB(&c)
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables, symbol indexes and quality views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openWritable()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s\n", db.Path)
			return nil
		},
	}
}

func newLoadExpressionCmd() *cobra.Command {
	var (
		file string
		opts expression.LoadOptions
	)
	cmd := &cobra.Command{
		Use:   "load-expression",
		Short: "Bulk load an expression TSV into gene_expression",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = cfg.Expression.Path
			}
			db, err := openWritable()
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := expression.LoadFile(cmd.Context(), db.ORM, file, opts)
			if err != nil {
				return err
			}
			logger.Info("Expression loaded", zap.String("file", file), zap.Int64("inserted", res.Inserted))
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %s rows (%s parsed, %s skipped) from %s\n",
				humanize.Comma(res.Inserted), humanize.Comma(int64(res.Rows)), humanize.Comma(int64(res.Skipped)), file)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "expression TSV (default expression.path)")
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", expression.DefaultBatchSize, "rows per insert batch")
	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "delete existing rows first")
	return cmd
}

func newQualityCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "quality",
		Short: "Report missing data, integrity and tissue coverage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			store := model.NewStore(db, cfg.Query.Limits())
			audit, err := store.Audit(cmd.Context())
			if err != nil {
				return err
			}
			summary, err := db.QualitySummary(cmd.Context())
			if err != nil {
				return err
			}
			coverage := map[string][]quality.TissueCoverage{}
			for _, row := range summary {
				cov, err := store.TissueCoverage(cmd.Context(), row.SpeciesID)
				if err != nil {
					return err
				}
				coverage[row.SpeciesID] = cov
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"audit":    audit,
					"species":  summary,
					"coverage": coverage,
				})
			}
			return writeQualityReport(cmd.OutOrStdout(), audit, summary, coverage)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func writeQualityReport(w io.Writer, a *model.Audit, summary []regdb.DataQualityRow, coverage map[string][]quality.TissueCoverage) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "MISSING DATA\tMISSING\tTOTAL\tPERCENT\tSTATUS")
	for _, m := range a.Missing {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f%%\t%s\n", m.Name, humanize.Comma(m.Missing), humanize.Comma(m.Total), m.Percent, m.Status)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "INTEGRITY\tCOUNT\tSTATUS")
	for _, c := range a.Integrity {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, humanize.Comma(c.Count), c.Status)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "SPECIES\tENHANCERS\tSCORED\tHIGH CONF\tTISSUES")
	for _, s := range summary {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", s.SpeciesID,
			humanize.Comma(s.TotalEnhancers), humanize.Comma(s.ScoredEnhancers), humanize.Comma(s.HighConfEnhancers), s.TissueCount)
	}
	fmt.Fprintln(tw)

	species := make([]string, 0, len(coverage))
	for id := range coverage {
		species = append(species, id)
	}
	sort.Strings(species)
	fmt.Fprintln(tw, "SPECIES\tTISSUE\tENHANCERS\tCOVERAGE")
	for _, id := range species {
		for _, c := range coverage[id] {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", id, c.Tissue, humanize.Comma(int64(c.EnhancerCount)), c.CoverageLevel)
		}
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "Enhancer scores: %s of %s\n", humanize.Comma(a.EnhancerScores.WithScores), humanize.Comma(a.EnhancerScores.Total))
	fmt.Fprintf(tw, "CTCF scores: %s of %s\n", humanize.Comma(a.CTCFScores.WithScores), humanize.Comma(a.CTCFScores.Total))
	if len(a.OrphanSpecies) > 0 {
		fmt.Fprintf(tw, "Species without a species row: %v\n", a.OrphanSpecies)
	}
	if len(a.EmptyTables) > 0 {
		fmt.Fprintf(tw, "Empty tables: %v\n", a.EmptyTables)
	}
	return tw.Flush()
}

func newSnapshotCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Copy the interval tables into a DuckDB file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			counts, err := db.Snapshot(cmd.Context(), out)
			if err != nil {
				return err
			}
			tables := make([]string, 0, len(counts))
			for t := range counts {
				tables = append(tables, t)
			}
			sort.Strings(tables)
			for _, t := range tables {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s rows\n", t, humanize.Comma(counts[t]))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "regland.duckdb", "output DuckDB file")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage RegLand configuration",
		Long:  "Show, get, or set configuration values. Values are written to --config or ./regland.yaml.",
		Example: `  regland config                         # show effective config
  regland config set expression.watch true
  regland config get database.path`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Show(cmd.OutOrStdout(), cfg)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			val, err := config.Get(vip, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), val)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := vip.ConfigFileUsed()
			if path == "" {
				path = config.DefaultFile
			}
			if err := config.Set(path, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", args[0], args[1], path)
			return nil
		},
	})
	return cmd
}
