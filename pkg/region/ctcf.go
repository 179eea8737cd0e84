package region

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/regland/regland/pkg/genome"
	"github.com/regland/regland/pkg/model"
	"github.com/regland/regland/pkg/render"
)

// CTCF analysis defaults and response trims.
const (
	LinkModeGene = "gene"
	LinkModeTAD  = "tad"

	DefaultCTCFTSSKb  = 250
	DefaultDistCapKb  = 250
	analysisFetchCap  = 1000
	responseSiteTrim  = 20
	responseEnhTrim   = 50
	responseSNPTrim   = 50
	responseLinksTrim = 50
)

var DefaultCTCFClasses = []string{"conserved", "human_specific"}

type CTCFParams struct {
	Gene            string
	Species         string
	LinkMode        string
	TSSKb           int
	CTCFClasses     []string
	EnhancerClasses []string
	DistCapKb       int
}

func DefaultCTCFParams() CTCFParams {
	return CTCFParams{
		Species:         DefaultSpecies,
		LinkMode:        LinkModeGene,
		TSSKb:           DefaultCTCFTSSKb,
		CTCFClasses:     DefaultCTCFClasses,
		EnhancerClasses: genome.DefaultClasses,
		DistCapKb:       DefaultDistCapKb,
	}
}

// Domain is the stretch of chromosome the analysis looks at.
type Domain struct {
	Chrom    string `json:"chrom"`
	Start    int64  `json:"start"`
	End      int64  `json:"end"`
	TSS      int64  `json:"tss"`
	LinkMode string `json:"link_mode"`
	// Source is "tad" when a TAD was found, "window" otherwise.
	Source string `json:"source"`
	TadID  *int64 `json:"tad_id,omitempty"`
}

// Link pairs an enhancer with its nearest CTCF site.
type Link struct {
	EnhID      int64   `json:"enh_id"`
	Class      string  `json:"class"`
	SiteID     int64   `json:"site_id"`
	DistanceKb float64 `json:"distance_kb"`
}

type CTCFStats struct {
	CTCFCount        int      `json:"ctcf_count"`
	EnhancerCount    int      `json:"enhancer_count"`
	GWASSnpCount     int      `json:"gwas_snp_count"`
	LinkedEnhancers  int      `json:"linked_enhancers"`
	MedianDistanceKb *float64 `json:"median_distance_kb"`
}

type CTCFAnalysis struct {
	DomainRegion Domain                  `json:"domain_region"`
	CTCFSites    []genome.CTCFRecord     `json:"ctcf_sites"`
	Enhancers    []genome.EnhancerRecord `json:"enhancers"`
	GWASSnps     []genome.GWASRecord     `json:"gwas_snps"`
	Links        []Link                  `json:"links"`
	UCSCURL      string                  `json:"ucsc_url,omitempty"`
	Stats        CTCFStats               `json:"stats"`
}

func (p CTCFParams) normalized() (CTCFParams, error) {
	p.Gene = strings.ToUpper(strings.TrimSpace(p.Gene))
	if p.Gene == "" {
		return p, fmt.Errorf("%w: gene symbol is required", genome.ErrInvalidArgument)
	}
	if strings.TrimSpace(p.Species) == "" {
		p.Species = DefaultSpecies
	}
	switch p.LinkMode {
	case "":
		p.LinkMode = LinkModeGene
	case LinkModeGene, LinkModeTAD:
	default:
		return p, fmt.Errorf("%w: link_mode must be gene or tad, got %q", genome.ErrInvalidArgument, p.LinkMode)
	}
	if p.TSSKb < 0 || p.TSSKb > MaxTSSKb {
		return p, fmt.Errorf("%w: tss_kb_ctcf must be within 0..%d, got %d", genome.ErrInvalidArgument, MaxTSSKb, p.TSSKb)
	}
	if p.DistCapKb <= 0 {
		p.DistCapKb = DefaultDistCapKb
	}
	p.EnhancerClasses = genome.NormalizeClasses(p.EnhancerClasses)
	return p, nil
}

// domain picks the TAD around the TSS in tad mode, falling back to the gene
// window when no TAD contains it.
func (s *Service) domain(ctx context.Context, r *genome.Region, mode string) (Domain, error) {
	d := Domain{Chrom: r.Chrom, Start: r.Start, End: r.End, TSS: r.TSS, LinkMode: mode, Source: "window"}
	if mode != LinkModeTAD {
		return d, nil
	}
	tad, err := s.store.DomainAt(ctx, r.SpeciesID, r.Chrom, r.TSS)
	if err != nil {
		return d, err
	}
	if tad != nil {
		d.Start, d.End, d.Source = tad.Start, tad.End, "tad"
		d.TadID = &tad.TadID
	}
	return d, nil
}

// CTCF relates enhancers in a domain to their nearest CTCF sites.
func (s *Service) CTCF(ctx context.Context, p CTCFParams) (*CTCFAnalysis, error) {
	p, err := p.normalized()
	if err != nil {
		return nil, err
	}
	r, err := genome.Resolve(ctx, s.store, p.Gene, p.Species, p.TSSKb)
	if err != nil {
		return nil, err
	}
	d, err := s.domain(ctx, r, p.LinkMode)
	if err != nil {
		return nil, fmt.Errorf("resolve domain for %s: %w", r.Symbol, err)
	}

	var (
		sites     []genome.CTCFRecord
		enhancers []genome.EnhancerRecord
		snps      []genome.GWASRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sites, err = s.store.CTCFSites(gctx, model.CTCFQuery{
			SpeciesID: r.SpeciesID, Chrom: d.Chrom, Start: d.Start, End: d.End,
			ConsClasses: p.CTCFClasses, Limit: analysisFetchCap,
		})
		return err
	})
	g.Go(func() error {
		var err error
		enhancers, err = s.store.Enhancers(gctx, model.EnhancerQuery{
			SpeciesID: r.SpeciesID, Chrom: d.Chrom, Start: d.Start, End: d.End,
			Classes: p.EnhancerClasses, Limit: analysisFetchCap,
		})
		return err
	})
	g.Go(func() error {
		var err error
		snps, err = s.store.GWAS(gctx, model.GWASQuery{
			SpeciesID: r.SpeciesID, Chrom: d.Chrom, Start: d.Start, End: d.End, Limit: analysisFetchCap,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ctcf analysis for %s: %w", r.Symbol, err)
	}

	links := NearestLinks(enhancers, sites, float64(p.DistCapKb))
	out := &CTCFAnalysis{
		DomainRegion: d,
		CTCFSites:    trim(sites, responseSiteTrim),
		Enhancers:    trim(enhancers, responseEnhTrim),
		GWASSnps:     trim(snps, responseSNPTrim),
		Links:        trim(links, responseLinksTrim),
		UCSCURL:      render.UCSCURL(r.SpeciesID, d.Chrom, d.Start, d.End),
		Stats: CTCFStats{
			CTCFCount:        len(sites),
			EnhancerCount:    len(enhancers),
			GWASSnpCount:     len(snps),
			LinkedEnhancers:  len(links),
			MedianDistanceKb: medianDistance(links),
		},
	}
	return out, nil
}

func center(iv genome.Interval) float64 {
	return float64(iv.Start+iv.End) / 2
}

// NearestLinks pairs each enhancer with the CTCF site whose centre is closest
// to the enhancer centre, keeping pairs no further apart than capKb. Links are
// ordered by distance.
func NearestLinks(enhancers []genome.EnhancerRecord, sites []genome.CTCFRecord, capKb float64) []Link {
	links := []Link{}
	if len(sites) == 0 {
		return links
	}
	sorted := slices.Clone(sites)
	slices.SortFunc(sorted, func(a, b genome.CTCFRecord) int {
		return cmp.Compare(a.Start+a.End, b.Start+b.End)
	})
	centers := make([]float64, len(sorted))
	for i, s := range sorted {
		centers[i] = center(s.Interval)
	}

	for _, e := range enhancers {
		c := center(e.Interval)
		i := sort.SearchFloat64s(centers, c)
		best := -1
		for _, j := range []int{i - 1, i} {
			if j < 0 || j >= len(centers) {
				continue
			}
			if best < 0 || math.Abs(centers[j]-c) < math.Abs(centers[best]-c) {
				best = j
			}
		}
		kb := math.Abs(centers[best]-c) / 1000
		if kb > capKb {
			continue
		}
		links = append(links, Link{EnhID: e.ID, Class: e.Class, SiteID: sorted[best].SiteID, DistanceKb: kb})
	}
	slices.SortStableFunc(links, func(a, b Link) int {
		return cmp.Compare(a.DistanceKb, b.DistanceKb)
	})
	return links
}

func medianDistance(links []Link) *float64 {
	if len(links) == 0 {
		return nil
	}
	d := make([]float64, len(links))
	for i, l := range links {
		d[i] = l.DistanceKb
	}
	slices.Sort(d)
	m := d[len(d)/2]
	if len(d)%2 == 0 {
		m = (d[len(d)/2-1] + d[len(d)/2]) / 2
	}
	return &m
}

func trim[T any](s []T, n int) []T {
	if s == nil {
		return []T{}
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}
