package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	regdb "github.com/regland/regland/pkg/db"
	"github.com/regland/regland/pkg/db/dbtest"
)

func TestOpenMemoryAndPing(t *testing.T) {
	r := dbtest.Open(t)
	require.NoError(t, r.Ping(context.Background()))
	assert.Equal(t, regdb.MemoryPath, r.Path)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := regdb.Open("  ", regdb.Options{})
	assert.Error(t, err)
}

func TestOpenReadOnlyMissingFile(t *testing.T) {
	_, err := regdb.Open(filepath.Join(t.TempDir(), "missing.sqlite"), regdb.Options{ReadOnly: true})
	assert.Error(t, err)
}

func TestReadOnlyRejectsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "regland.sqlite")

	rw, err := regdb.Open(path, regdb.Options{})
	require.NoError(t, err)
	require.NoError(t, rw.Migrate(context.Background()))
	dbtest.Seed(t, rw)
	require.NoError(t, rw.Close())

	ro, err := regdb.Open(path, regdb.Options{ReadOnly: true})
	require.NoError(t, err)
	t.Cleanup(func() { ro.Close() })

	var n int64
	require.NoError(t, ro.ORM.Model(&regdb.Gene{}).Count(&n).Error)
	assert.EqualValues(t, 4, n)

	_, err = ro.SQL.Exec(`DELETE FROM genes`)
	assert.Error(t, err)
	assert.ErrorIs(t, ro.Migrate(context.Background()), regdb.ErrReadOnly)
}

func TestMigrateCreatesViews(t *testing.T) {
	r := dbtest.Seeded(t)

	var hiconf int64
	require.NoError(t, r.SQL.QueryRow(`SELECT COUNT(*) FROM enhancers_hiconf WHERE species_id = 'human_hg38'`).Scan(&hiconf))
	assert.EqualValues(t, 4, hiconf)

	summary, err := r.QualitySummary(context.Background())
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "human_hg38", summary[0].SpeciesID)
	assert.EqualValues(t, 7, summary[0].TotalEnhancers)
	assert.EqualValues(t, 5, summary[0].ScoredEnhancers)
	assert.EqualValues(t, 4, summary[0].HighConfEnhancers)

	// idempotent
	require.NoError(t, r.Migrate(context.Background()))
}

func TestSnapshotToDuckDB(t *testing.T) {
	r := dbtest.Seeded(t)
	out := filepath.Join(t.TempDir(), "snap", "regland.duckdb")

	counts, err := r.Snapshot(context.Background(), out)
	require.NoError(t, err)
	assert.EqualValues(t, 8, counts["enhancers_all"])
	assert.EqualValues(t, 4, counts["gwas_snps"])
	assert.EqualValues(t, 1, counts["tad_domains"])
}
