package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/regland/regland/pkg/genome"
)

// Track colours per enhancer class.
var ClassColors = map[string]string{
	genome.ClassConserved: "#31c06a",
	genome.ClassGained:    "#ffcf33",
	genome.ClassLost:      "#8f9aa7",
	genome.ClassUnlabeled: "#4ea4ff",
}

const (
	colorGeneBody = "#c7d0da"
	colorTSS      = "#e8590c"
	colorSNP      = "#212529"
	colorEmpty    = "#f7fbff"
)

// ClassColor falls back to the unlabeled colour for unknown classes.
func ClassColor(class string) string {
	if c, ok := ClassColors[class]; ok {
		return c
	}
	return ClassColors[genome.ClassUnlabeled]
}

func parseHex(hex string) (r, g, b float64) {
	v, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return float64(v >> 16 & 0xff), float64(v >> 8 & 0xff), float64(v & 0xff)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// gradient returns steps colours from one hex colour to another, both ends
// included.
func gradient(from, to string, steps int) []string {
	if steps < 2 {
		return []string{to}
	}
	sr, sg, sb := parseHex(from)
	er, eg, eb := parseHex(to)
	out := make([]string, steps)
	for i := range out {
		t := float64(i) / float64(steps-1)
		r := int(math.Round(lerp(sr, er, t)))
		g := int(math.Round(lerp(sg, eg, t)))
		b := int(math.Round(lerp(sb, eb, t)))
		out[i] = fmt.Sprintf("#%02x%02x%02x", r, g, b)
	}
	return out
}
