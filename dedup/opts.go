package dedup

import (
	"github.com/spatialomics/stcount/umi"
)

// Opts describes one pipeline run.
type Opts struct {
	// BamFile is the annotated input: mapped reads carrying spot
	// coordinates (B1, B2), a UMI (B3), and a gene (XF), sorted so
	// that all records of a gene are adjacent.
	BamFile string

	// OutputDir receives the counts matrix and the molecule trace.
	OutputDir string

	// Template, when nonempty, prefixes the output file names.
	Template string

	// Algorithm selects the UMI clustering strategy: "exact",
	// "hierarchical", "adjacency", or "directional".
	Algorithm string

	// Mismatches is the Hamming tolerance for UMI clustering, and the
	// Levenshtein tolerance for whitelist correction when UMIListFile
	// is set.
	Mismatches int

	// Offset is the largest start-position gap allowed inside one
	// coordinate neighborhood.  Consecutive reads further apart than
	// this are deduplicated independently.
	Offset int

	// Parallelism caps the number of concurrent per-gene workers.
	// Zero or negative means one worker per CPU.
	Parallelism int

	// UMIListFile optionally names a whitelist of known UMIs, one per
	// line.  Observed UMIs snap to their unique nearest whitelist
	// entry before clustering.
	UMIListFile string

	// GzipTrace compresses the molecule trace.
	GzipTrace bool
}

// DefaultOpts holds the documented defaults for optional settings.
var DefaultOpts = Opts{
	Algorithm:  "hierarchical",
	Mismatches: 1,
	Offset:     250,
}

func (o *Opts) matrixName() string {
	if o.Template != "" {
		return o.Template + "_stdata.tsv"
	}
	return "stdata.tsv"
}

func (o *Opts) traceName() string {
	name := "reads.bed"
	if o.Template != "" {
		name = o.Template + "_reads.bed"
	}
	if o.GzipTrace {
		name += ".gz"
	}
	return name
}

// validate rejects a bad configuration before any input is opened.
func (o *Opts) validate() error {
	if o.BamFile == "" {
		return &ConfigurationError{Msg: "an input bam file must be specified"}
	}
	if o.OutputDir == "" {
		return &ConfigurationError{Msg: "an output directory must be specified"}
	}
	if o.Mismatches < 0 {
		return &ConfigurationError{Msg: "the mismatch tolerance cannot be negative"}
	}
	if o.Offset < 0 {
		return &ConfigurationError{Msg: "the window offset cannot be negative"}
	}
	if _, err := umi.New(o.Algorithm); err != nil {
		return &ConfigurationError{Msg: err.Error()}
	}
	return nil
}
