package counts

import (
	"io"
	"sync"

	"github.com/grailbio/base/tsv"
	"github.com/klauspost/compress/gzip"
	"github.com/spatialomics/stcount/annotated"
)

// TraceWriter appends one line per surviving molecule to the
// molecule-level trace output.  The column order and count are fixed
// for downstream consumers: chrom, start, end, read_id,
// mapping_quality, strand, gene, x, y.
//
// Write is serialized by a mutex so concurrent per-gene workers emit
// whole lines; line order carries no meaning since every line names
// its own gene and spot.
type TraceWriter struct {
	mu sync.Mutex
	w  *tsv.Writer
	gz *gzip.Writer
	n  int64
}

// NewTraceWriter returns a TraceWriter over w, compressing with gzip
// when compress is set.
func NewTraceWriter(w io.Writer, compress bool) *TraceWriter {
	t := &TraceWriter{}
	if compress {
		t.gz = gzip.NewWriter(w)
		t.w = tsv.NewWriter(t.gz)
	} else {
		t.w = tsv.NewWriter(w)
	}
	return t
}

// Write appends one molecule.
func (t *TraceWriter) Write(r annotated.Read) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.w.WriteString(r.Chrom)
	t.w.WriteUint32(uint32(r.Start))
	t.w.WriteUint32(uint32(r.End))
	t.w.WriteString(r.Name)
	t.w.WriteUint32(uint32(r.MapQ))
	t.w.WriteString(string(r.Strand))
	t.w.WriteString(r.Gene)
	t.w.WriteUint32(uint32(r.Spot.X))
	t.w.WriteUint32(uint32(r.Spot.Y))
	if err := t.w.EndLine(); err != nil {
		return err
	}
	t.n++
	return nil
}

// Count returns the number of molecules written.
func (t *TraceWriter) Count() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.n
}

// Flush flushes buffered lines and finishes the gzip stream if one is
// in use.  The underlying writer is owned by the caller.
func (t *TraceWriter) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.w.Flush(); err != nil {
		return err
	}
	if t.gz != nil {
		return t.gz.Close()
	}
	return nil
}
