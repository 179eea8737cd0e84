package expression

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regland/regland/pkg/cache"
	"github.com/regland/regland/pkg/db/dbtest"
)

const longTable = "symbol\ttissue\ttpm\n" +
	"BDNF\tBrain - Cortex\t10\n" +
	"BDNF\tBrain - Hippocampus\t20\n" +
	"BDNF\tHeart - Left Ventricle\t2\n" +
	"BDNF\tLiver\tnot-a-number\n" +
	"BDNF\tLiver\t4\n" +
	"ALB\tLiver\t5000\n"

const wideTable = "Gene\tBrain_Cortex\tHeart_Atrial_Appendage\tLiver\tLung\n" +
	"BDNF\t10\t3\tNaN\t1\n" +
	"ALB\t0\t0\t9\t0\n"

func tpms(entries []Entry) map[string]float64 {
	out := map[string]float64{}
	for _, e := range entries {
		out[e.Tissue] = e.TPM
	}
	return out
}

func TestTissueGroup(t *testing.T) {
	cases := map[string]string{
		"Brain - Cerebellum":           "Brain",
		"Brain_Nucleus_accumbens":      "Brain",
		"Heart - Atrial Appendage":     "Heart",
		"Artery - Aorta":               "Heart",
		"Liver":                        "Liver",
		"Lung":                         "",
		"Cells - Cultured fibroblasts": "",
	}
	for tissue, want := range cases {
		assert.Equal(t, want, TissueGroup(tissue), tissue)
	}
}

func TestParseLong(t *testing.T) {
	tbl, stats, err := Parse(strings.NewReader(longTable))
	require.NoError(t, err)
	assert.False(t, stats.Wide)
	assert.Equal(t, 6, stats.Rows)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 5, tbl.Len())
	assert.Equal(t, 2, tbl.Genes())

	got := tpms(tbl.Summary("bdnf", false))
	assert.Equal(t, map[string]float64{"Brain": 15, "Heart": 2, "Liver": 4}, got)
}

func TestParseWide(t *testing.T) {
	tbl, stats, err := Parse(strings.NewReader(wideTable))
	require.NoError(t, err)
	assert.True(t, stats.Wide)
	assert.Len(t, tbl.Lookup("BDNF"), 3, "NaN cells are dropped")

	got := tpms(tbl.Summary("BDNF", false))
	assert.Equal(t, map[string]float64{"Brain": 10, "Heart": 3, "Liver": 0}, got)

	logged := tbl.Summary("alb", true)
	require.Len(t, logged, 3)
	assert.Equal(t, "Liver", logged[2].Tissue)
	assert.InDelta(t, 1.0, logged[2].TPM, 1e-12)
	assert.Equal(t, "alb", logged[2].Symbol)
}

func TestParseErrors(t *testing.T) {
	_, _, err := Parse(strings.NewReader("name\tLiver\nBDNF\t1\n"))
	assert.ErrorIs(t, err, ErrNoSymbolColumn)

	tbl, _, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, tbl.Len())
}

func TestSummarizeUnknownGene(t *testing.T) {
	out := NewTable().Summary("NOPE", true)
	require.Len(t, out, 3)
	for _, e := range out {
		assert.Zero(t, e.TPM)
	}
}

type countingSource struct {
	loads atomic.Int32
	err   error
}

func (s *countingSource) Name() string { return "counting" }

func (s *countingSource) Load(context.Context) (*Table, error) {
	s.loads.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return mustParse(longTable), nil
}

func mustParse(raw string) *Table {
	t, _, err := Parse(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return t
}

func TestCacheLoadsOnce(t *testing.T) {
	src := &countingSource{}
	c := NewCache(src, cache.NewTTL[*Table](1, time.Minute))
	ctx := context.Background()

	for range 3 {
		out, err := c.Summary(ctx, "BDNF", false)
		require.NoError(t, err)
		assert.Equal(t, 15.0, tpms(out)["Brain"])
	}
	assert.EqualValues(t, 1, src.loads.Load())

	_, err := c.Reload(ctx)
	require.NoError(t, err)
	_, err = c.Table(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, src.loads.Load())
}

// ctxSource fails when the load context is already cancelled.
type ctxSource struct{ countingSource }

func (s *ctxSource) Load(ctx context.Context) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.countingSource.Load(ctx)
}

func TestCacheLoadIgnoresCancelledCaller(t *testing.T) {
	src := &ctxSource{}
	c := NewCache(src, cache.NewTTL[*Table](1, time.Minute))
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := c.Summary(cancelled, "BDNF", false)
	require.NoError(t, err)
	assert.Equal(t, 15.0, tpms(out)["Brain"])

	out, err = c.Summary(context.Background(), "BDNF", false)
	require.NoError(t, err)
	assert.Equal(t, 15.0, tpms(out)["Brain"])
	assert.EqualValues(t, 1, src.loads.Load())
}

func TestCacheDoesNotKeepErrors(t *testing.T) {
	boom := errors.New("boom")
	src := &countingSource{err: boom}
	c := NewCache(src, nil)

	_, err := c.Table(context.Background())
	assert.ErrorIs(t, err, boom)

	src.err = nil
	tbl, err := c.Table(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Genes())
	assert.EqualValues(t, 2, src.loads.Load())
}

func TestFileSourceAndWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expression_tpm.tsv")
	require.NoError(t, os.WriteFile(path, []byte("symbol\ttissue\ttpm\nBDNF\tLiver\t1\n"), 0o644))

	c := NewCache(FileSource{Path: path}, nil)
	tbl, err := c.Table(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Genes())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx, path) }()

	assert.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(longTable), 0o644)
		tbl, err := c.Table(context.Background())
		return err == nil && tbl.Genes() == 2
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestFileSourceMissing(t *testing.T) {
	_, err := FileSource{Path: filepath.Join(t.TempDir(), "missing.tsv")}.Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDBSource(t *testing.T) {
	r := dbtest.Seeded(t)
	tbl, err := DBSource{DB: r.ORM}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, tbl.Len())

	got := tpms(tbl.Summary("BDNF", false))
	assert.Equal(t, map[string]float64{"Brain": 15, "Heart": 2, "Liver": 0.5}, got)
}

func TestBulkLoad(t *testing.T) {
	r := dbtest.Open(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "expr.tsv")
	require.NoError(t, os.WriteFile(path, []byte(longTable), 0o644))

	res, err := LoadFile(ctx, r.ORM, path, LoadOptions{BatchSize: 2})
	require.NoError(t, err)
	assert.Equal(t, LoadResult{Inserted: 5, Rows: 6, Skipped: 1}, res)

	res, err = LoadFile(ctx, r.ORM, path, LoadOptions{})
	require.NoError(t, err)
	assert.Zero(t, res.Inserted, "existing symbol/tissue pairs are kept")

	res, err = LoadFile(ctx, r.ORM, path, LoadOptions{Clear: true})
	require.NoError(t, err)
	assert.EqualValues(t, 5, res.Inserted)

	tbl, err := DBSource{DB: r.ORM}.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, tbl.Len())
}
