// Package annotated consumes the mapped, gene-annotated, spatially
// barcoded BAM stream produced by the upstream alignment, annotation,
// and demultiplexing steps, and regroups it one gene at a time.
//
// Each input record carries the spot coordinates in the B1/B2 aux
// tags, the UMI in B3, and the assigned gene in XF.  Records must
// arrive grouped by gene; memory is then bounded by the largest single
// gene's read count, not by total input size.
package annotated

import "fmt"

// Spot is a spatial coordinate on the capture surface that a read's
// barcode decodes to.
type Spot struct {
	X, Y int
}

// String renders the coordinate in the "{x}x{y}" form used by the
// counts matrix row labels.
func (s Spot) String() string {
	return fmt.Sprintf("%dx%d", s.X, s.Y)
}

// Read is one mapped, gene-annotated, spatially barcoded read.  It is
// produced by the Reader and treated as immutable downstream.
type Read struct {
	Chrom  string
	Start  int
	End    int
	Name   string
	MapQ   byte
	Strand byte // '+' or '-'
	UMI    string
	Gene   string
	Spot   Spot
}
