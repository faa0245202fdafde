/*Package dedup is the deduplication-and-aggregation core of the
  spatial transcriptomics pipeline.  It converts a stream of mapped,
  gene-annotated, spatially barcoded reads into a per-spot, per-gene
  molecule count table, correcting for PCR and sequencing duplicates
  identified by the unique molecular identifier (UMI) attached to each
  read.

  Deduplication Concepts:

  Reads originating from the same physical molecule cluster tightly by
  start coordinate because of fixed fragment-size bias, so the
  pipeline first partitions each (gene, spot) bucket into coordinate
  neighborhoods: maximal runs of reads that share a strand and whose
  consecutive start positions differ by no more than a configured
  offset.  This bounds the UMI-comparison cost to reads that are
  plausible duplicates of one another, rather than comparing tags
  across an entire gene's reads.

  Within one neighborhood, the UMIs are collapsed by one of four
  clustering algorithms (see package umi).  Each resulting cluster
  counts as one original molecule: the (spot, gene) cell of the counts
  matrix is incremented by the cluster count, and one deterministic
  representative read per cluster is appended to the molecule trace.

  Concurrency:

  Buckets of different genes are independent, so the pipeline runs one
  grouping goroutine that emits complete per-gene buckets, a pool of
  workers that deduplicate one gene at a time, and a single collector
  that owns the counts matrix and the discarded-read counter.  Trace
  lines are written line-atomically from the workers; their order
  carries no meaning because every line names its own gene and spot.
  Memory scales with the largest single gene's read count, not with
  total input size.

  Outputs:

  The finished matrix and the trace are written to temporary paths and
  renamed into place only after the whole run succeeds, so a failed
  run never leaves a half-written artifact behind.  Failures surface
  as ConfigurationError, InputError, or ProcessingError; none of them
  are retried internally.
*/
package dedup
