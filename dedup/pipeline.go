package dedup

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/hts/bam"
	"github.com/spatialomics/stcount/annotated"
	"github.com/spatialomics/stcount/counts"
	"github.com/spatialomics/stcount/umi"
)

// geneResult carries one gene's deduplicated per-spot counts from a
// worker to the collector.
type geneResult struct {
	gene      string
	counts    map[annotated.Spot]int
	discarded int
}

// CreateDataset runs the full pipeline: it reads the annotated bam
// named by opts, deduplicates every (gene, spot) bucket, writes the
// counts matrix and the molecule trace under opts.OutputDir, and
// fills stats with the run summary.  On error no output file is left
// behind.
func CreateDataset(ctx context.Context, opts Opts, stats *counts.RunStats) error {
	if err := opts.validate(); err != nil {
		return err
	}
	group, err := umi.New(opts.Algorithm)
	if err != nil {
		return &ConfigurationError{Msg: err.Error()}
	}
	var corrector *umi.Corrector
	if opts.UMIListFile != "" {
		in, err := file.Open(ctx, opts.UMIListFile)
		if err != nil {
			return &ConfigurationError{Msg: fmt.Sprintf("opening umi list %s: %v", opts.UMIListFile, err)}
		}
		data, err := ioutil.ReadAll(in.Reader(ctx))
		if closeErr := in.Close(ctx); err == nil {
			err = closeErr
		}
		if err != nil {
			return &ConfigurationError{Msg: fmt.Sprintf("reading umi list %s: %v", opts.UMIListFile, err)}
		}
		if corrector, err = umi.NewCorrector(data, opts.Mismatches); err != nil {
			return &ConfigurationError{Msg: fmt.Sprintf("umi list %s: %v", opts.UMIListFile, err)}
		}
	}

	in, err := file.Open(ctx, opts.BamFile)
	if err != nil {
		return &InputError{Msg: "opening " + opts.BamFile, Err: err}
	}
	defer in.Close(ctx) // nolint: errcheck
	br, err := bam.NewReader(in.Reader(ctx), 1)
	if err != nil {
		return &InputError{Msg: "reading bam header of " + opts.BamFile, Err: err}
	}
	defer br.Close() // nolint: errcheck
	return createDataset(ctx, opts, group, corrector, annotated.NewReader(br), stats)
}

// createDataset is the transport-free core of CreateDataset.  Tests
// drive it with in-memory record sources.
func createDataset(ctx context.Context, opts Opts, group umi.Grouper, corrector *umi.Corrector,
	reader *annotated.Reader, stats *counts.RunStats) (err error) {
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	matrixPath := filepath.Join(opts.OutputDir, opts.matrixName())
	tracePath := filepath.Join(opts.OutputDir, opts.traceName())
	matrixTmp := matrixPath + ".tmp"
	traceTmp := tracePath + ".tmp"
	var published []string
	defer func() {
		// A failed run must not leave artifacts, partial or stale,
		// including any artifact already renamed into place before a
		// later step failed.
		if err != nil {
			os.Remove(matrixTmp) // nolint: errcheck
			os.Remove(traceTmp)  // nolint: errcheck
			for _, path := range published {
				os.Remove(path) // nolint: errcheck
			}
		}
	}()

	traceFile, err := os.Create(traceTmp)
	if err != nil {
		return errors.E(err, "couldn't create trace file:", traceTmp)
	}
	defer traceFile.Close() // nolint: errcheck
	trace := counts.NewTraceWriter(traceFile, opts.GzipTrace)

	matrix := counts.NewMatrix()
	discarded := 0
	e := errors.Once{}
	geneCh := make(chan *annotated.Bucket, parallelism)
	resCh := make(chan geneResult, parallelism)

	// A single collector owns the matrix and the discard counter, so
	// the workers never contend on them.
	collectorWG := sync.WaitGroup{}
	collectorWG.Add(1)
	go func() {
		defer collectorWG.Done()
		for res := range resCh {
			for spot, n := range res.counts {
				matrix.Inc(spot, res.gene, n)
			}
			discarded += res.discarded
		}
	}()

	// The grouper feeds complete per-gene buckets to the workers.  It
	// stops early once anything has failed or the context is done.
	go func() {
		defer close(geneCh)
		for e.Err() == nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				e.Set(ctxErr)
				return
			}
			bucket, readErr := reader.NextGene()
			if readErr == io.EOF {
				return
			}
			if readErr != nil {
				e.Set(&InputError{Msg: "parsing " + opts.BamFile, Err: readErr})
				return
			}
			geneCh <- bucket
		}
	}()

	e.Set(traverse.Each(parallelism, func(_ int) error {
		for bucket := range geneCh {
			if e.Err() != nil {
				continue // drain so the grouper can finish
			}
			res, workErr := processGene(bucket, group, corrector, opts, trace)
			if workErr != nil {
				e.Set(workErr)
				continue
			}
			resCh <- res
		}
		return nil
	}))
	close(resCh)
	collectorWG.Wait()
	if err = e.Err(); err != nil {
		return err
	}

	if reader.Genes() == 0 {
		if reader.Skipped() > 0 {
			return &ProcessingError{Msg: fmt.Sprintf(
				"no deduplicated molecules: all %d records of %s were secondary, supplementary, or unmapped",
				reader.Skipped(), opts.BamFile)}
		}
		return &InputError{Msg: opts.BamFile + " contains no records"}
	}
	if got := int(reader.Records()) - int(trace.Count()); got != discarded {
		log.Panicf("accounting mismatch: %d reads, %d molecules, but %d discarded",
			reader.Records(), trace.Count(), discarded)
	}

	if err = trace.Flush(); err != nil {
		return errors.E(err, "error writing to trace file:", traceTmp)
	}
	if err = traceFile.Close(); err != nil {
		return errors.E(err, "error closing trace file:", traceTmp)
	}
	matrixFile, err := os.Create(matrixTmp)
	if err != nil {
		return errors.E(err, "couldn't create counts file:", matrixTmp)
	}
	if err = matrix.WriteTSV(matrixFile); err != nil {
		matrixFile.Close() // nolint: errcheck
		return errors.E(err, "error writing to counts file:", matrixTmp)
	}
	if err = matrixFile.Close(); err != nil {
		return errors.E(err, "error closing counts file:", matrixTmp)
	}
	// Publish both artifacts only once the run is fully done.
	if err = os.Rename(matrixTmp, matrixPath); err != nil {
		return errors.E(err, "couldn't publish counts file:", matrixPath)
	}
	published = append(published, matrixPath)
	if err = os.Rename(traceTmp, tracePath); err != nil {
		return errors.E(err, "couldn't publish trace file:", tracePath)
	}
	published = append(published, tracePath)

	counts.Summarize(matrix, discarded, stats)
	log.Debug.Printf("processed %d genes, %d reads (%d skipped), wrote %d molecules",
		reader.Genes(), reader.Records(), reader.Skipped(), trace.Count())
	return nil
}

// processGene deduplicates every spot bucket of one gene, writing one
// trace line per surviving molecule.
func processGene(b *annotated.Bucket, group umi.Grouper, corrector *umi.Corrector,
	opts Opts, trace *counts.TraceWriter) (geneResult, error) {
	res := geneResult{gene: b.Gene, counts: make(map[annotated.Spot]int, len(b.Spots))}
	for spot, reads := range b.Spots {
		if len(reads) == 0 {
			log.Panicf("gene %s spot %s: empty bucket", b.Gene, spot)
		}
		if corrector != nil {
			for i := range reads {
				reads[i].UMI = corrector.Correct(reads[i].UMI)
			}
		}
		molecules := 0
		for _, window := range windows(reads, opts.Offset) {
			byTag := make(map[string][]annotated.Read)
			for _, r := range window {
				byTag[r.UMI] = append(byTag[r.UMI], r)
			}
			tagCounts := make(map[string]int, len(byTag))
			for tag, tagReads := range byTag {
				tagCounts[tag] = len(tagReads)
			}
			for _, cluster := range group(tagCounts, opts.Mismatches) {
				if err := trace.Write(representative(cluster, byTag)); err != nil {
					return res, errors.E(err, "writing trace for gene", b.Gene)
				}
				molecules++
			}
		}
		if molecules < 1 || molecules > len(reads) {
			log.Panicf("gene %s spot %s: %d molecules from %d reads", b.Gene, spot, molecules, len(reads))
		}
		res.counts[spot] = molecules
		res.discarded += len(reads) - molecules
	}
	return res, nil
}

// representative picks the cluster's surviving read deterministically:
// the lexicographically lowest name, breaking ties on start position.
func representative(cluster []string, byTag map[string][]annotated.Read) annotated.Read {
	var best annotated.Read
	first := true
	for _, tag := range cluster {
		for _, r := range byTag[tag] {
			if first || r.Name < best.Name || (r.Name == best.Name && r.Start < best.Start) {
				best = r
				first = false
			}
		}
	}
	if first {
		log.Panicf("cluster %v has no reads", cluster)
	}
	return best
}
