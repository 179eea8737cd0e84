package render

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// UCSCAssemblies maps species ids onto UCSC genome browser databases.
var UCSCAssemblies = map[string]string{
	"human_hg38":       "hg38",
	"mouse_mm39":       "mm39",
	"macaque_rheMac10": "rheMac10",
	"chicken_galGal6":  "galGal6",
	"pig_susScr11":     "susScr11",
}

// UCSCURL links a window to the UCSC browser. Unknown species give "".
func UCSCURL(speciesID, chrom string, start, end int64) string {
	db, ok := UCSCAssemblies[speciesID]
	if !ok {
		return ""
	}
	return fmt.Sprintf("https://genome.ucsc.edu/cgi-bin/hgTracks?db=%s&position=%s:%s-%s",
		db, chrom, humanize.Comma(start), humanize.Comma(end))
}
