// Package counts assembles deduplicated molecule counts into the
// per-spot, per-gene counts matrix, records every surviving molecule
// to the trace output, and summarizes the finished matrix into the
// run statistics.
package counts

import (
	"io"
	"sort"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/spatialomics/stcount/annotated"
)

// Matrix accumulates deduplicated molecule counts per (spot, gene).
// Accumulation is sparse, O(events); WriteTSV materializes the dense
// spot-major table, O(spots * genes).  Any (spot, gene) pair absent
// from the accumulation map counts as zero.
type Matrix struct {
	cells map[annotated.Spot]map[string]int
	genes map[string]bool
}

// NewMatrix returns an empty counts matrix.
func NewMatrix() *Matrix {
	return &Matrix{
		cells: map[annotated.Spot]map[string]int{},
		genes: map[string]bool{},
	}
}

// Inc adds n molecules to the (spot, gene) cell.  n must be positive;
// a non-positive increment indicates a violated deduplication
// invariant upstream.
func (m *Matrix) Inc(spot annotated.Spot, gene string, n int) {
	if n < 1 {
		log.Panicf("gene %s spot %s: non-positive count increment %d", gene, spot, n)
	}
	row := m.cells[spot]
	if row == nil {
		row = map[string]int{}
		m.cells[spot] = row
	}
	row[gene] += n
	m.genes[gene] = true
}

// Get returns the count in the (spot, gene) cell, zero when absent.
func (m *Matrix) Get(spot annotated.Spot, gene string) int {
	return m.cells[spot][gene]
}

// NumSpots returns the number of spots with at least one molecule.
func (m *Matrix) NumSpots() int { return len(m.cells) }

// NumGenes returns the number of genes with at least one molecule.
func (m *Matrix) NumGenes() int { return len(m.genes) }

// Genes returns the gene names in column order (lexicographic).
func (m *Matrix) Genes() []string {
	genes := make([]string, 0, len(m.genes))
	for gene := range m.genes {
		genes = append(genes, gene)
	}
	sort.Strings(genes)
	return genes
}

// Spots returns the spots in row order (by x, then y).
func (m *Matrix) Spots() []annotated.Spot {
	spots := make([]annotated.Spot, 0, len(m.cells))
	for spot := range m.cells {
		spots = append(spots, spot)
	}
	sort.Slice(spots, func(i, j int) bool {
		if spots[i].X != spots[j].X {
			return spots[i].X < spots[j].X
		}
		return spots[i].Y < spots[j].Y
	})
	return spots
}

// WriteTSV writes the dense matrix: header row of gene names with a
// leading empty cell, then one row per spot labelled "{x}x{y}", absent
// cells filled with 0.  Column order and the zero fill are fixed for
// downstream consumers.
func (m *Matrix) WriteTSV(w io.Writer) error {
	genes := m.Genes()
	tsvw := tsv.NewWriter(w)
	tsvw.WriteString("")
	for _, gene := range genes {
		tsvw.WriteString(gene)
	}
	if err := tsvw.EndLine(); err != nil {
		return err
	}
	for _, spot := range m.Spots() {
		tsvw.WriteString(spot.String())
		row := m.cells[spot]
		for _, gene := range genes {
			tsvw.WriteUint32(uint32(row[gene]))
		}
		if err := tsvw.EndLine(); err != nil {
			return err
		}
	}
	return tsvw.Flush()
}
