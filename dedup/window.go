package dedup

import (
	"sort"

	"github.com/spatialomics/stcount/annotated"
)

// windows partitions one (gene, spot) bucket into coordinate
// neighborhoods.  The reads are ordered by (strand, start), then split
// wherever the strand changes or consecutive start positions differ by
// more than offset.  Every read lands in exactly one neighborhood; a
// singleton neighborhood is valid and simply deduplicates to itself.
func windows(reads []annotated.Read, offset int) [][]annotated.Read {
	if len(reads) == 0 {
		return nil
	}
	sorted := make([]annotated.Read, len(reads))
	copy(sorted, reads)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Strand != sorted[j].Strand {
			return sorted[i].Strand < sorted[j].Strand
		}
		return sorted[i].Start < sorted[j].Start
	})

	var result [][]annotated.Read
	begin := 0
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Strand != sorted[i-1].Strand || sorted[i].Start-sorted[i-1].Start > offset {
			result = append(result, sorted[begin:i])
			begin = i
		}
	}
	// The trailing neighborhood always flushes, even when it holds a
	// single read.
	return append(result, sorted[begin:])
}
