package expression

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Header names accepted for the gene column of a wide table.
var symbolColumns = []string{"symbol", "gene", "Gene", "SYMBOL"}

var ErrNoSymbolColumn = errors.New("expression table has no symbol column")

// ParseStats reports how many data rows were read and skipped.
type ParseStats struct {
	Rows    int
	Skipped int
	Wide    bool
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// Parse reads a tab separated expression table. Long tables carry
// symbol, tissue and tpm columns; anything else is read as a wide table with
// one column per tissue. Rows with an unparsable TPM are skipped.
func Parse(r io.Reader) (*Table, ParseStats, error) {
	var stats ParseStats
	cr := newReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return NewTable(), stats, nil
	}
	if err != nil {
		return nil, stats, fmt.Errorf("read expression header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	symbolIdx := -1
	for _, name := range symbolColumns {
		if i := slices.Index(header, name); i >= 0 {
			symbolIdx = i
			break
		}
	}
	if symbolIdx < 0 {
		return nil, stats, ErrNoSymbolColumn
	}

	tissueIdx, tpmIdx := slices.Index(header, "tissue"), slices.Index(header, "tpm")
	stats.Wide = tissueIdx < 0 || tpmIdx < 0

	t := NewTable()
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read expression row %d: %w", stats.Rows+1, err)
		}
		stats.Rows++
		if symbolIdx >= len(rec) || strings.TrimSpace(rec[symbolIdx]) == "" {
			stats.Skipped++
			continue
		}
		symbol := strings.TrimSpace(rec[symbolIdx])

		if !stats.Wide {
			if tissueIdx >= len(rec) || tpmIdx >= len(rec) {
				stats.Skipped++
				continue
			}
			tpm, ok := parseTPM(rec[tpmIdx])
			if !ok {
				stats.Skipped++
				continue
			}
			t.Add(Entry{Symbol: symbol, Tissue: strings.TrimSpace(rec[tissueIdx]), TPM: tpm})
			continue
		}

		for i, raw := range rec {
			if i == symbolIdx || i >= len(header) {
				continue
			}
			if tpm, ok := parseTPM(raw); ok {
				t.Add(Entry{Symbol: symbol, Tissue: header[i], TPM: tpm})
			}
		}
	}
	return t, stats, nil
}

func parseTPM(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
