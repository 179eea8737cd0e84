package region

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/regland/regland/pkg/genome"
)

// Export data types.
const (
	ExportEnhancers = "enhancers"
	ExportGWAS      = "gwas"
	ExportCTCF      = "ctcf"
)

var exportHeaders = map[string][]string{
	ExportEnhancers: {"enh_id", "species_id", "chrom", "start", "end", "class", "tissue", "score", "source"},
	ExportGWAS:      {"snp_id", "rsid", "chrom", "pos", "trait", "pval", "category", "source", "method", "distance_bp"},
	ExportCTCF:      {"site_id", "species_id", "chrom", "start", "end", "score", "motif_p", "cons_class"},
}

// ExportKinds lists the accepted data types.
func ExportKinds() []string {
	return []string{ExportEnhancers, ExportGWAS, ExportCTCF}
}

func optStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}

func optInt(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

// Export writes one record type of the region as CSV.
func (s *Service) Export(ctx context.Context, q Query, kind string, w io.Writer) error {
	header, ok := exportHeaders[kind]
	if !ok {
		return fmt.Errorf("%w: unknown export data_type %q", genome.ErrInvalidArgument, kind)
	}
	data, err := s.Region(ctx, q)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	switch kind {
	case ExportEnhancers:
		for _, e := range data.Enhancers {
			cw.Write([]string{itoa(e.ID), e.SpeciesID, e.Chrom, itoa(e.Start), itoa(e.End), e.Class, optStr(e.Tissue), optFloat(e.Score), optStr(e.Source)})
		}
	case ExportGWAS:
		for _, g := range data.GWASSnps {
			cw.Write([]string{itoa(g.SnpID), optStr(g.RSID), g.Chrom, itoa(g.Pos), optStr(g.Trait), optFloat(g.PValue), optStr(g.Category), optStr(g.Source), optStr(g.Method), optInt(g.DistanceBP)})
		}
	case ExportCTCF:
		for _, c := range data.CTCFSites {
			cw.Write([]string{itoa(c.SiteID), c.SpeciesID, c.Chrom, itoa(c.Start), itoa(c.End), optFloat(c.Score), optFloat(c.MotifP), c.ConsClass})
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFilename names the download for a region export.
func ExportFilename(q Query, kind string) string {
	return fmt.Sprintf("%s_%s_%dkb_%s.csv", strings.ToUpper(strings.TrimSpace(q.Gene)), q.Species, q.TSSKb, kind)
}
