package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/regland/regland/internal/util"
	"github.com/regland/regland/logger"
	"go.uber.org/zap"

	_ "github.com/marcboeker/go-duckdb"
)

type snapshotTable struct {
	name    string
	columns []string
	types   []string
}

// Interval tables copied into the analytical snapshot.
var snapshotTables = []snapshotTable{
	{"species", []string{"species_id", "name", "genome_build"}, []string{"VARCHAR", "VARCHAR", "VARCHAR"}},
	{"genes", []string{"gene_id", "symbol", "species_id", "chrom", "start", "end"}, []string{"BIGINT", "VARCHAR", "VARCHAR", "VARCHAR", "BIGINT", "BIGINT"}},
	{"enhancers_all", []string{"enh_id", "species_id", "chrom", "start", "end", "tissue", "score", "source"}, []string{"BIGINT", "VARCHAR", "VARCHAR", "BIGINT", "BIGINT", "VARCHAR", "DOUBLE", "VARCHAR"}},
	{"enhancer_class", []string{"enh_id", "class"}, []string{"BIGINT", "VARCHAR"}},
	{"gwas_snps", []string{"snp_id", "chrom", "pos", "rsid", "trait", "pval", "source", "category"}, []string{"BIGINT", "VARCHAR", "BIGINT", "VARCHAR", "VARCHAR", "DOUBLE", "VARCHAR", "VARCHAR"}},
	{"snp_to_enhancer", []string{"snp_id", "enh_id", "overlap_bp"}, []string{"BIGINT", "BIGINT", "BIGINT"}},
	{"gene_to_enhancer", []string{"gene_id", "enh_id", "method", "distance_bp"}, []string{"BIGINT", "BIGINT", "VARCHAR", "BIGINT"}},
	{"ctcf_sites", []string{"site_id", "species_id", "chrom", "start", "end", "score", "motif_p", "cons_class"}, []string{"BIGINT", "VARCHAR", "VARCHAR", "BIGINT", "BIGINT", "DOUBLE", "DOUBLE", "VARCHAR"}},
	{"tad_domains", []string{"tad_id", "species_id", "chrom", "start", "end", "source"}, []string{"BIGINT", "VARCHAR", "VARCHAR", "BIGINT", "BIGINT", "VARCHAR"}},
}

func quoteIdents(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = `"` + c + `"`
	}
	return out
}

// Snapshot copies the interval tables into a fresh DuckDB file at out and
// returns the number of rows written per table. An existing file is replaced.
func (r *RegDB) Snapshot(ctx context.Context, out string) (map[string]int64, error) {
	if out == "" {
		return nil, fmt.Errorf("snapshot path cannot be empty")
	}
	if err := util.EnsureParentDir(out); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	if util.FileExists(out) {
		if err := os.Remove(out); err != nil {
			return nil, fmt.Errorf("remove old snapshot: %w", err)
		}
	}

	duck, err := sql.Open("duckdb", out)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer duck.Close()

	counts := make(map[string]int64, len(snapshotTables))
	for _, tbl := range snapshotTables {
		n, err := r.copyTable(ctx, duck, tbl)
		if err != nil {
			return counts, fmt.Errorf("copy %s: %w", tbl.name, err)
		}
		counts[tbl.name] = n
		logger.Info("Snapshot table copied", zap.String("table", tbl.name), zap.Int64("rows", n))
	}
	return counts, nil
}

func (r *RegDB) copyTable(ctx context.Context, duck *sql.DB, tbl snapshotTable) (int64, error) {
	cols := quoteIdents(tbl.columns)
	defs := make([]string, len(cols))
	for i := range cols {
		defs[i] = cols[i] + " " + tbl.types[i]
	}
	if _, err := duck.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", tbl.name, strings.Join(defs, ", "))); err != nil {
		return 0, fmt.Errorf("create table: %w", err)
	}

	rows, err := r.SQL.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), tbl.name))
	if err != nil {
		return 0, fmt.Errorf("read source: %w", err)
	}
	defer rows.Close()

	tx, err := duck.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", tbl.name, strings.Join(cols, ", "), placeholders))
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	var n int64
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			tx.Rollback()
			return n, err
		}
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			tx.Rollback()
			return n, err
		}
		n++
	}
	if err := rows.Err(); err != nil {
		tx.Rollback()
		return n, err
	}
	return n, tx.Commit()
}
