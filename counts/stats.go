package counts

import (
	"math"

	"github.com/grailbio/base/log"
)

// RunStats is the aggregate report for one dedup-and-count run.  The
// object is owned by the caller; Summarize updates its fields in place
// and never replaces it.
type RunStats struct {
	// MoleculesAfterDedup is the sum of all matrix entries.
	MoleculesAfterDedup int
	// UniqueEvents is the number of (gene, spot) pairs with at least
	// one molecule.
	UniqueEvents int
	// BarcodesFound is the number of spots with at least one molecule.
	BarcodesFound int
	// GenesFound is the number of genes with a nonzero entry anywhere.
	GenesFound int
	// DuplicatesFound is the number of reads discarded as duplicates.
	DuplicatesFound int

	MaxGenesPerFeature  int
	MinGenesPerFeature  int
	AvgGenesPerFeature  float64
	StdGenesPerFeature  float64
	MaxReadsPerFeature  int
	MinReadsPerFeature  int
	AvgReadsPerFeature  float64
	StdReadsPerFeature  float64
	MaxReadsUniqueEvent int
	MinReadsUniqueEvent int
}

// Summarize computes distributional summaries over the finished matrix
// and writes them into stats.  discarded is the per-run duplicate
// count from the deduplication bookkeeping.  Only the matrix is read,
// never individual reads, and no output is produced beyond logging.
func Summarize(m *Matrix, discarded int, stats *RunStats) {
	spots := m.Spots()
	genes := m.Genes()
	if len(spots) == 0 || len(genes) == 0 {
		log.Panicf("Summarize called on an empty matrix")
	}

	total := 0
	maxCell := 0
	minCell := -1
	events := 0
	readsPerSpot := make([]int, len(spots))
	genesPerSpot := make([]int, len(spots))
	for i, spot := range spots {
		for _, gene := range genes {
			// Dense iteration: absent cells count as zero, including
			// for the global max/min entry.
			n := m.Get(spot, gene)
			if n > maxCell {
				maxCell = n
			}
			if minCell < 0 || n < minCell {
				minCell = n
			}
			if n > 0 {
				events++
				genesPerSpot[i]++
				readsPerSpot[i] += n
				total += n
			}
		}
	}

	stats.MoleculesAfterDedup = total
	stats.UniqueEvents = events
	stats.BarcodesFound = len(spots)
	stats.GenesFound = len(genes)
	stats.DuplicatesFound = discarded
	stats.MaxGenesPerFeature, stats.MinGenesPerFeature, stats.AvgGenesPerFeature, stats.StdGenesPerFeature = distribution(genesPerSpot)
	stats.MaxReadsPerFeature, stats.MinReadsPerFeature, stats.AvgReadsPerFeature, stats.StdReadsPerFeature = distribution(readsPerSpot)
	stats.MaxReadsUniqueEvent = maxCell
	stats.MinReadsUniqueEvent = minCell
}

// distribution returns max, min, mean, and population standard
// deviation of values.
func distribution(values []int) (max, min int, mean, std float64) {
	max = values[0]
	min = values[0]
	sum := 0
	for _, v := range values {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
		sum += v
	}
	mean = float64(sum) / float64(len(values))
	var sq float64
	for _, v := range values {
		d := float64(v) - mean
		sq += d * d
	}
	std = math.Sqrt(sq / float64(len(values)))
	return max, min, mean, std
}

// Log writes the human-readable report.
func (s *RunStats) Log() {
	log.Printf("Number of unique molecules present: %d", s.MoleculesAfterDedup)
	log.Printf("Number of unique events (gene-spot) present: %d", s.UniqueEvents)
	log.Printf("Number of unique barcodes present: %d", s.BarcodesFound)
	log.Printf("Number of unique genes present: %d", s.GenesFound)
	log.Printf("Max number of genes over all features: %d", s.MaxGenesPerFeature)
	log.Printf("Min number of genes over all features: %d", s.MinGenesPerFeature)
	log.Printf("Max number of unique molecules over all features: %d", s.MaxReadsPerFeature)
	log.Printf("Min number of unique molecules over all features: %d", s.MinReadsPerFeature)
	log.Printf("Average number genes per feature: %f", s.AvgGenesPerFeature)
	log.Printf("Average number unique molecules per feature: %f", s.AvgReadsPerFeature)
	log.Printf("Std number genes per feature: %f", s.StdGenesPerFeature)
	log.Printf("Std number unique molecules per feature: %f", s.StdReadsPerFeature)
	log.Printf("Max number of unique molecules over all unique events: %d", s.MaxReadsUniqueEvent)
	log.Printf("Min number of unique molecules over all unique events: %d", s.MinReadsUniqueEvent)
	log.Printf("Number of discarded reads (possible duplicates): %d", s.DuplicatesFound)
}
