package annotated

import (
	"fmt"
	"io"

	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"
)

var (
	xTag    = sam.NewTag("B1")
	yTag    = sam.NewTag("B2")
	umiTag  = sam.NewTag("B3")
	geneTag = sam.NewTag("XF")
)

// RecordSource yields SAM records one at a time, returning io.EOF when
// exhausted.  *bam.Reader satisfies it.
type RecordSource interface {
	Read() (*sam.Record, error)
}

// Bucket holds all reads of one gene, grouped by spot.  It is built
// once and discarded after the gene is processed.
type Bucket struct {
	Gene  string
	Spots map[Spot][]Read

	// Raw is the number of reads in the bucket, before deduplication.
	Raw int
}

func (b *Bucket) add(r Read) {
	b.Spots[r.Spot] = append(b.Spots[r.Spot], r)
	b.Raw++
}

func newBucket(r Read) *Bucket {
	b := &Bucket{Gene: r.Gene, Spots: map[Spot][]Read{}}
	b.add(r)
	return b
}

// Reader partitions a record source into per-gene buckets.  NextGene
// returns the complete bucket for one gene before moving to the next.
type Reader struct {
	src     RecordSource
	pending *Read
	seen    map[string]bool
	genes   int
	records int64
	skipped int64
	done    bool
}

// NewReader returns a Reader over src.
func NewReader(src RecordSource) *Reader {
	return &Reader{src: src, seen: map[string]bool{}}
}

// Records returns the number of annotated reads decoded so far.
func (r *Reader) Records() int64 { return r.records }

// Skipped returns the number of records dropped as secondary,
// supplementary, or unmapped.
func (r *Reader) Skipped() int64 { return r.skipped }

// Genes returns the number of gene buckets produced so far.
func (r *Reader) Genes() int { return r.genes }

// NextGene returns the complete bucket for the next gene, or io.EOF
// after the last gene.  A gene seen again after its group closed means
// the input violates the gene-grouping contract and is an error.
func (r *Reader) NextGene() (*Bucket, error) {
	if r.done {
		return nil, io.EOF
	}
	var b *Bucket
	if r.pending != nil {
		var err error
		if b, err = r.openBucket(*r.pending); err != nil {
			return nil, err
		}
		r.pending = nil
	}
	for {
		rec, err := r.src.Read()
		if err == io.EOF {
			r.done = true
			if b == nil {
				return nil, io.EOF
			}
			r.genes++
			return b, nil
		}
		if err != nil {
			return nil, err
		}
		if rec.Flags&(sam.Secondary|sam.Supplementary) != 0 || rec.Flags&sam.Unmapped != 0 || rec.Ref == nil {
			log.Debug.Printf("skipping secondary, supplementary, or unmapped record: %s", rec.Name)
			r.skipped++
			continue
		}
		read, err := decode(rec)
		if err != nil {
			return nil, err
		}
		r.records++
		if b == nil {
			if b, err = r.openBucket(read); err != nil {
				return nil, err
			}
			continue
		}
		if read.Gene != b.Gene {
			r.pending = &read
			r.genes++
			return b, nil
		}
		b.add(read)
	}
}

func (r *Reader) openBucket(read Read) (*Bucket, error) {
	if r.seen[read.Gene] {
		return nil, fmt.Errorf("input is not grouped by gene: %q seen in two separate groups", read.Gene)
	}
	r.seen[read.Gene] = true
	return newBucket(read), nil
}

func decode(rec *sam.Record) (Read, error) {
	gene, ok := auxString(rec, geneTag)
	if !ok {
		return Read{}, fmt.Errorf("record %s is missing the XF gene tag", rec.Name)
	}
	tag, ok := auxString(rec, umiTag)
	if !ok {
		return Read{}, fmt.Errorf("record %s is missing the B3 umi tag", rec.Name)
	}
	x, ok := auxInt(rec, xTag)
	if !ok {
		return Read{}, fmt.Errorf("record %s is missing the B1 spot coordinate tag", rec.Name)
	}
	y, ok := auxInt(rec, yTag)
	if !ok {
		return Read{}, fmt.Errorf("record %s is missing the B2 spot coordinate tag", rec.Name)
	}
	strand := byte('+')
	if rec.Flags&sam.Reverse != 0 {
		strand = '-'
	}
	return Read{
		Chrom:  rec.Ref.Name(),
		Start:  rec.Pos,
		End:    rec.End(),
		Name:   rec.Name,
		MapQ:   rec.MapQ,
		Strand: strand,
		UMI:    tag,
		Gene:   gene,
		Spot:   Spot{X: x, Y: y},
	}, nil
}

func auxString(rec *sam.Record, tag sam.Tag) (string, bool) {
	aux := rec.AuxFields.Get(tag)
	if aux == nil {
		return "", false
	}
	s, ok := aux.Value().(string)
	return s, ok
}

// auxInt widens whichever integer width the BAM codec chose for the
// tag value.
func auxInt(rec *sam.Record, tag sam.Tag) (int, bool) {
	aux := rec.AuxFields.Get(tag)
	if aux == nil {
		return 0, false
	}
	switch v := aux.Value().(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case uint8:
		return int(v), true
	case int16:
		return int(v), true
	case uint16:
		return int(v), true
	case int32:
		return int(v), true
	case uint32:
		return int(v), true
	}
	return 0, false
}
