// Package expression serves per-tissue gene expression (TPM) loaded from a
// GTEx-style table, either a TSV file or the gene_expression table.
package expression

import (
	"math"
	"strings"

	"github.com/regland/regland/pkg/quality"
)

type Entry struct {
	Symbol string  `json:"symbol"`
	Tissue string  `json:"tissue"`
	TPM    float64 `json:"tpm"`
}

// Table holds every loaded entry indexed by upper-cased gene symbol.
type Table struct {
	entries  []Entry
	bySymbol map[string][]int
}

func NewTable() *Table {
	return &Table{bySymbol: make(map[string][]int)}
}

func (t *Table) Add(e Entry) {
	key := strings.ToUpper(strings.TrimSpace(e.Symbol))
	t.bySymbol[key] = append(t.bySymbol[key], len(t.entries))
	t.entries = append(t.entries, e)
}

// Lookup returns the entries of a gene, matched case-insensitively.
func (t *Table) Lookup(symbol string) []Entry {
	idx := t.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	out := make([]Entry, len(idx))
	for i, j := range idx {
		out[i] = t.entries[j]
	}
	return out
}

func (t *Table) Entries() []Entry { return t.entries }
func (t *Table) Len() int         { return len(t.entries) }
func (t *Table) Genes() int       { return len(t.bySymbol) }

var groupKeywords = map[string][]string{
	"Brain": {"brain", "cortex", "cereb", "hippo", "amyg", "putamen", "nucleus_acc", "caudate"},
	"Heart": {"heart", "atrial", "ventricle", "cardiac", "aorta"},
	"Liver": {"liver"},
}

// TissueGroup maps a GTEx tissue name onto Brain, Heart or Liver. It
// returns "" for every other tissue.
func TissueGroup(tissue string) string {
	lower := strings.ToLower(tissue)
	for _, group := range quality.SupportedTissues {
		for _, kw := range groupKeywords[group] {
			if strings.Contains(lower, kw) {
				return group
			}
		}
	}
	return ""
}

// Summarize averages a gene's TPM over each tissue group. Groups without
// data read as zero; logScale applies log10(x+1) after averaging.
func Summarize(symbol string, entries []Entry, logScale bool) []Entry {
	sums := make(map[string]float64, len(quality.SupportedTissues))
	counts := make(map[string]int, len(quality.SupportedTissues))
	for _, e := range entries {
		if g := TissueGroup(e.Tissue); g != "" {
			sums[g] += e.TPM
			counts[g]++
		}
	}

	out := make([]Entry, 0, len(quality.SupportedTissues))
	for _, g := range quality.SupportedTissues {
		v := 0.0
		if counts[g] > 0 {
			v = sums[g] / float64(counts[g])
		}
		if logScale {
			v = math.Log10(v + 1)
		}
		out = append(out, Entry{Symbol: symbol, Tissue: g, TPM: v})
	}
	return out
}

// Summary looks a gene up and summarizes it.
func (t *Table) Summary(symbol string, logScale bool) []Entry {
	return Summarize(symbol, t.Lookup(symbol), logScale)
}
