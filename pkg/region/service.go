// Package region assembles everything shown for a gene window: records,
// the conservation matrix, tracks, expression and quality notes.
package region

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/regland/regland/logger"
	"github.com/regland/regland/pkg/cache"
	"github.com/regland/regland/pkg/expression"
	"github.com/regland/regland/pkg/genome"
	"github.com/regland/regland/pkg/model"
	"github.com/regland/regland/pkg/quality"
	"github.com/regland/regland/pkg/render"
)

const DefaultTTL = 5 * time.Minute

// Store is the slice of the interval store the service reads.
type Store interface {
	genome.GeneLookup
	Enhancers(ctx context.Context, q model.EnhancerQuery) ([]genome.EnhancerRecord, error)
	GWAS(ctx context.Context, q model.GWASQuery) ([]genome.GWASRecord, error)
	CTCFSites(ctx context.Context, q model.CTCFQuery) ([]genome.CTCFRecord, error)
	DomainAt(ctx context.Context, speciesID, chrom string, pos int64) (*genome.TADDomain, error)
	TissueCoverage(ctx context.Context, speciesID string) ([]quality.TissueCoverage, error)
}

type Service struct {
	store Store
	expr  *expression.Cache
	memo  *cache.Memo[*CombinedData]
}

// NewService wires the store, an optional expression cache and an optional
// combined-data cache.
func NewService(store Store, expr *expression.Cache, results cache.Store[*CombinedData]) *Service {
	s := &Service{store: store, expr: expr}
	if results != nil {
		s.memo = cache.NewMemo(results)
	}
	return s
}

type RegionData struct {
	Gene      genome.Region           `json:"gene"`
	Enhancers []genome.EnhancerRecord `json:"enhancers"`
	GWASSnps  []genome.GWASRecord     `json:"gwas_snps"`
	CTCFSites []genome.CTCFRecord     `json:"ctcf_sites"`
	UCSCURL   string                  `json:"ucsc_url,omitempty"`
}

type CombinedData struct {
	RegionData  *RegionData                `json:"regionData"`
	MatrixData  *genome.ConservationMatrix `json:"matrixData"`
	TracksData  render.Tracks              `json:"tracksData"`
	ExprData    render.ExpressionPlot      `json:"exprData"`
	QualityInfo *quality.Info              `json:"qualityInfo,omitempty"`
}

// Resolve finds the gene window for a query.
func (s *Service) Resolve(ctx context.Context, q Query) (*genome.Region, error) {
	q, err := q.normalized()
	if err != nil {
		return nil, err
	}
	return genome.Resolve(ctx, s.store, q.Gene, q.Species, q.TSSKb)
}

// Region fetches enhancers, GWAS SNPs and CTCF sites for the gene window.
func (s *Service) Region(ctx context.Context, q Query) (*RegionData, error) {
	q, err := q.normalized()
	if err != nil {
		return nil, err
	}
	r, err := genome.Resolve(ctx, s.store, q.Gene, q.Species, q.TSSKb)
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, r, q)
}

func (s *Service) fetch(ctx context.Context, r *genome.Region, q Query) (*RegionData, error) {
	data := &RegionData{Gene: *r, UCSCURL: render.UCSCURL(r.SpeciesID, r.Chrom, r.Start, r.End)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data.Enhancers, err = s.store.Enhancers(gctx, model.EnhancerQuery{
			SpeciesID: r.SpeciesID, Chrom: r.Chrom, Start: r.Start, End: r.End,
			Tissue: q.Tissue, Classes: q.Classes,
		})
		return err
	})
	g.Go(func() error {
		var err error
		data.GWASSnps, err = s.store.GWAS(gctx, model.GWASQuery{GeneID: r.GeneID, Chrom: r.Chrom, Start: r.Start, End: r.End})
		return err
	})
	g.Go(func() error {
		var err error
		data.CTCFSites, err = s.store.CTCFSites(gctx, model.CTCFQuery{SpeciesID: r.SpeciesID, Chrom: r.Chrom, Start: r.Start, End: r.End})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch region %s: %w", r.Symbol, err)
	}
	return data, nil
}

// Combined resolves the gene and builds every panel of the region view.
// Results are cached under Params.CacheKey. Concurrent callers share one
// computation, which runs detached from any single caller's cancellation.
func (s *Service) Combined(ctx context.Context, p Params) (*CombinedData, error) {
	p, err := p.normalized()
	if err != nil {
		return nil, err
	}
	shared := context.WithoutCancel(ctx)
	out, hit, err := s.memo.Do(p.CacheKey(), func() (*CombinedData, error) {
		return s.combined(shared, p)
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("Combined data", zap.String("gene", p.Gene), zap.String("species", p.Species), zap.Bool("cache_hit", hit))
	return out, nil
}

func (s *Service) combined(ctx context.Context, p Params) (*CombinedData, error) {
	r, err := genome.Resolve(ctx, s.store, p.Gene, p.Species, p.TSSKb)
	if err != nil {
		return nil, err
	}

	var (
		data     *RegionData
		exprVals []expression.Entry
		coverage []quality.TissueCoverage
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data, err = s.fetch(gctx, r, p.Query)
		return err
	})
	g.Go(func() error {
		exprVals = s.expressionSummary(gctx, r.Symbol, p.LogExpression)
		return nil
	})
	if p.Enhanced {
		g.Go(func() error {
			var err error
			coverage, err = s.store.TissueCoverage(gctx, r.SpeciesID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	matrix, err := genome.Build(data.Enhancers, r.Start, r.End, p.Classes, p.NBins, p.NormalizeRows)
	if err != nil {
		return nil, fmt.Errorf("build matrix for %s: %w", r.Symbol, err)
	}
	matrix.WithTSS(r.TSS)

	out := &CombinedData{RegionData: data, MatrixData: matrix}
	if p.Enhanced {
		flags := quality.DecorateEnhancers(data.Enhancers, p.Tissue)
		quality.DecorateGWAS(data.GWASSnps)
		info := quality.Advise(r.SpeciesID, p.Tissue, coverage, flags)
		out.QualityInfo = &info
	}

	out.TracksData = render.BuildTracks(*r, data.Enhancers, data.GWASSnps, render.TrackOptions{
		StackTracks: p.StackTracks,
		ShowGene:    p.ShowGene,
		ShowSNPs:    p.ShowSNPs,
		MarkTSS:     p.MarkTSS,
	})
	out.ExprData = render.BuildExpressionPlot(r.Symbol, exprVals, p.LogExpression)
	return out, nil
}

// expressionSummary falls back to zeros when no table can be loaded.
func (s *Service) expressionSummary(ctx context.Context, symbol string, logScale bool) []expression.Entry {
	if s.expr == nil {
		return expression.Summarize(symbol, nil, logScale)
	}
	vals, err := s.expr.Summary(ctx, symbol, logScale)
	if err != nil {
		logger.Warn("Expression unavailable", zap.String("gene", symbol), zap.Error(err))
		return expression.Summarize(symbol, nil, logScale)
	}
	return vals
}

// Heatmap gathers what the standalone heatmap page draws.
func (s *Service) Heatmap(ctx context.Context, p Params) (render.HeatmapPage, error) {
	data, err := s.Combined(ctx, p)
	if err != nil {
		return render.HeatmapPage{}, err
	}
	return render.HeatmapPage{
		Region:     data.RegionData.Gene,
		Matrix:     data.MatrixData,
		Expression: data.ExprData.ExpressionData,
		LogScale:   p.LogExpression,
	}, nil
}
