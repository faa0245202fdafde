package main

/*
  st-count collapses PCR and sequencing duplicates in an annotated
  spatial transcriptomics BAM and aggregates the surviving molecules
  into a spot-by-gene counts matrix. For more information, see
  github.com/spatialomics/stcount/dedup/doc.go
*/

import (
	"flag"
	"runtime"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/spatialomics/stcount/counts"
	"github.com/spatialomics/stcount/dedup"
)

var (
	bamFile     = flag.String("bam", "", "Input BAM filename. Must carry B1/B2 spot, B3 UMI, and XF gene tags, grouped by gene.")
	outputDir   = flag.String("output-dir", ".", "Directory receiving the counts matrix and the molecule trace")
	template    = flag.String("template", "", "Prefix for the output file names")
	algorithm   = flag.String("algorithm", dedup.DefaultOpts.Algorithm, "UMI clustering strategy. Value is one of 'exact', 'hierarchical', 'adjacency', or 'directional'.")
	mismatches  = flag.Int("mismatches", dedup.DefaultOpts.Mismatches, "Number of UMI mismatches tolerated when clustering")
	offset      = flag.Int("offset", dedup.DefaultOpts.Offset, "Largest start-position gap allowed inside one coordinate neighborhood")
	parallelism = flag.Int("parallelism", runtime.NumCPU(), "Number of genes to deduplicate in parallel")
	umiList     = flag.String("umi-file", "", "Perform UMI error correction with the known UMIs in this file")
	gzipTrace   = flag.Bool("gzip-trace", false, "Gzip-compress the molecule trace")
)

func main() {
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() > 0 {
		a := flag.Args()
		log.Fatalf("unparsed flags, please check flag syntax: '%s'", strings.Join(a[len(a)-flag.NArg():], " "))
	}

	opts := dedup.Opts{
		BamFile:     *bamFile,
		OutputDir:   *outputDir,
		Template:    *template,
		Algorithm:   *algorithm,
		Mismatches:  *mismatches,
		Offset:      *offset,
		Parallelism: *parallelism,
		UMIListFile: *umiList,
		GzipTrace:   *gzipTrace,
	}

	ctx := vcontext.Background()
	stats := counts.RunStats{}
	if err := dedup.CreateDataset(ctx, opts, &stats); err != nil {
		log.Fatalf("%v", err)
	}
	stats.Log()
}
