// Package umi collapses the unique molecular identifiers observed in
// one coordinate neighborhood into one cluster per original molecule.
//
// Four interchangeable clustering algorithms are provided.  "exact"
// treats every distinct tag as its own molecule.  "hierarchical" merges
// clusters agglomeratively while any cross pair of tags is within the
// mismatch tolerance, so membership is the transitive closure of the
// pairwise distance relation.  "adjacency" builds an explicit graph
// with one node per distinct tag, an edge between any two tags within
// tolerance, and reports the connected components.  "directional" uses
// the same graph but only keeps an edge from a higher-count tag down
// to a lower-count neighbor when count(high) >= 2*count(low)-1, which
// prevents two genuinely distinct, comparably abundant tags from
// collapsing into one molecule.
//
// hierarchical and adjacency produce the same partitions; they are
// kept as separate code paths because downstream analyses record which
// algorithm produced a dataset.
package umi

import (
	"fmt"
	"sort"

	"github.com/spatialomics/stcount/util"
)

// A Grouper partitions the distinct UMIs of one neighborhood into
// clusters of tags judged to originate from the same molecule.  counts
// maps each distinct tag to the number of reads carrying it; k is the
// allowed mismatch tolerance.  Tags within each returned cluster are
// sorted and clusters are ordered by their first tag, so a Grouper is
// deterministic and idempotent for a given input.
type Grouper func(counts map[string]int, k int) [][]string

// New returns the Grouper implementing the named clustering algorithm,
// one of "exact", "hierarchical", "adjacency", or "directional".  An
// unrecognized name is an error; callers resolve the algorithm once,
// before touching any input.
func New(algorithm string) (Grouper, error) {
	switch algorithm {
	case "exact":
		return groupExact, nil
	case "hierarchical":
		return groupHierarchical, nil
	case "adjacency":
		return groupAdjacency, nil
	case "directional":
		return groupDirectional, nil
	}
	return nil, fmt.Errorf("unknown UMI clustering algorithm %q", algorithm)
}

func sortedTags(counts map[string]int) []string {
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func sortClusters(clusters [][]string) [][]string {
	for _, c := range clusters {
		sort.Strings(c)
	}
	sort.Slice(clusters, func(i, j int) bool { return clusters[i][0] < clusters[j][0] })
	return clusters
}

// groupExact clusters two reads together iff their tags are
// byte-identical.  The mismatch tolerance is ignored.
func groupExact(counts map[string]int, k int) [][]string {
	clusters := make([][]string, 0, len(counts))
	for _, tag := range sortedTags(counts) {
		clusters = append(clusters, []string{tag})
	}
	return clusters
}

// groupHierarchical merges clusters agglomeratively: two clusters
// combine while any pair of tags across them is within Hamming
// distance k.  Every tag pair is compared, not just pairs against a
// canonical seed, so membership is transitive.
func groupHierarchical(counts map[string]int, k int) [][]string {
	clusters := make([][]string, 0, len(counts))
	for _, tag := range sortedTags(counts) {
		clusters = append(clusters, []string{tag})
	}
	if k <= 0 {
		return clusters
	}
	for merged := true; merged; {
		merged = false
	scan:
		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				if clustersLinked(clusters[i], clusters[j], k) {
					clusters[i] = append(clusters[i], clusters[j]...)
					clusters = append(clusters[:j], clusters[j+1:]...)
					merged = true
					break scan
				}
			}
		}
	}
	return sortClusters(clusters)
}

func clustersLinked(a, b []string, k int) bool {
	for _, t1 := range a {
		for _, t2 := range b {
			if util.Hamming(t1, t2) <= k {
				return true
			}
		}
	}
	return false
}

// groupAdjacency builds the tag graph explicitly, one node per
// distinct tag weighted by its read count, with an edge between any
// two tags within Hamming distance k, and reports the connected
// components via union-find.  Node weights do not affect membership in
// this undirected form.
func groupAdjacency(counts map[string]int, k int) [][]string {
	tags := sortedTags(counts)
	uf := newUnionFind(len(tags))
	if k > 0 {
		for i := 0; i < len(tags); i++ {
			for j := i + 1; j < len(tags); j++ {
				if util.Hamming(tags[i], tags[j]) <= k {
					uf.union(i, j)
				}
			}
		}
	}
	members := map[int][]string{}
	for i, tag := range tags {
		root := uf.find(i)
		members[root] = append(members[root], tag)
	}
	clusters := make([][]string, 0, len(members))
	for _, c := range members {
		clusters = append(clusters, c)
	}
	return sortClusters(clusters)
}

// groupDirectional visits tags from most to least abundant and grows
// each cluster outward from its highest-count node by breadth-first
// search.  An unvisited neighbor B of A joins the cluster only when
// Hamming(A, B) <= k and count(A) >= 2*count(B)-1, the standard
// error-correction asymmetry rule.
func groupDirectional(counts map[string]int, k int) [][]string {
	tags := sortedTags(counts)
	order := make([]string, len(tags))
	copy(order, tags)
	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return order[i] < order[j]
	})

	visited := make(map[string]bool, len(tags))
	clusters := make([][]string, 0, len(tags))
	for _, seed := range order {
		if visited[seed] {
			continue
		}
		visited[seed] = true
		cluster := []string{seed}
		queue := []string{seed}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, tag := range tags {
				if visited[tag] || util.Hamming(cur, tag) > k {
					continue
				}
				if counts[cur] >= 2*counts[tag]-1 {
					visited[tag] = true
					cluster = append(cluster, tag)
					queue = append(queue, tag)
				}
			}
		}
		clusters = append(clusters, cluster)
	}
	return sortClusters(clusters)
}

// unionFind is a disjoint set forest with path compression, used for
// the connected components of the adjacency graph.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(x, y int) {
	rx, ry := uf.find(x), uf.find(y)
	if rx != ry {
		uf.parent[ry] = rx
	}
}
