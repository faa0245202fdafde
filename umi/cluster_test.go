package umi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagCounts(tags ...string) map[string]int {
	counts := map[string]int{}
	for _, tag := range tags {
		counts[tag]++
	}
	return counts
}

func TestNew(t *testing.T) {
	for _, name := range []string{"exact", "hierarchical", "adjacency", "directional"} {
		g, err := New(name)
		assert.NoError(t, err, name)
		assert.NotNil(t, g, name)
	}
	g, err := New("naive")
	assert.Error(t, err)
	assert.Nil(t, g)
}

func TestExact(t *testing.T) {
	// All distinct: one cluster per tag regardless of proximity.
	clusters := groupExact(tagCounts("AAAA", "AAAT", "CCCC"), 1)
	assert.Equal(t, [][]string{{"AAAA"}, {"AAAT"}, {"CCCC"}}, clusters)

	// All identical: one cluster.
	clusters = groupExact(tagCounts("AAAA", "AAAA", "AAAA"), 1)
	assert.Equal(t, [][]string{{"AAAA"}}, clusters)
}

func TestNeighborMerging(t *testing.T) {
	// AAAA/AAAT differ by one substitution and merge; CCCC stays apart.
	for _, group := range []Grouper{groupHierarchical, groupAdjacency} {
		clusters := group(tagCounts("AAAA", "AAAA", "AAAT", "CCCC"), 1)
		assert.Equal(t, [][]string{{"AAAA", "AAAT"}, {"CCCC"}}, clusters)
	}
}

func TestTransitiveMerging(t *testing.T) {
	// AAAA-AAAT and AAAT-AAGT are within distance 1, AAAA-AAGT is not.
	// The relation closes transitively into a single cluster.
	counts := tagCounts("AAAA", "AAAT", "AAGT")
	for _, group := range []Grouper{groupHierarchical, groupAdjacency} {
		clusters := group(counts, 1)
		require.Len(t, clusters, 1)
		assert.Equal(t, []string{"AAAA", "AAAT", "AAGT"}, clusters[0])
	}
}

func TestZeroToleranceMatchesExact(t *testing.T) {
	counts := tagCounts("AAAA", "AAAA", "AAAT", "CCCC", "CCCG")
	want := groupExact(counts, 0)
	for _, group := range []Grouper{groupHierarchical, groupAdjacency, groupDirectional} {
		assert.Equal(t, want, group(counts, 0))
	}
}

func TestDirectionalAsymmetry(t *testing.T) {
	// A low-count neighbor folds into an abundant tag: 10 >= 2*1-1.
	counts := map[string]int{"AAAA": 10, "AAAT": 1}
	clusters := groupDirectional(counts, 1)
	require.Len(t, clusters, 1)
	assert.Equal(t, []string{"AAAA", "AAAT"}, clusters[0])

	// Two comparably abundant tags stay apart: 10 < 2*6-1.
	counts = map[string]int{"AAAA": 6, "AAAT": 10}
	clusters = groupDirectional(counts, 1)
	assert.Equal(t, [][]string{{"AAAA"}, {"AAAT"}}, clusters)

	// The boundary case merges: 9 >= 2*5-1.
	counts = map[string]int{"AAAA": 5, "AAAT": 9}
	clusters = groupDirectional(counts, 1)
	require.Len(t, clusters, 1)

	// The undirected adjacency form merges the comparably abundant
	// pair; only directional separates it.
	counts = map[string]int{"AAAA": 6, "AAAT": 10}
	clusters = groupAdjacency(counts, 1)
	require.Len(t, clusters, 1)
}

func TestDirectionalChain(t *testing.T) {
	// Reachability is from the highest-count node outward: the middle
	// tag joins the abundant seed, then pulls in its own low neighbor.
	counts := map[string]int{"AAAA": 100, "AAAT": 10, "AAGT": 1}
	clusters := groupDirectional(counts, 1)
	require.Len(t, clusters, 1)
	assert.Equal(t, []string{"AAAA", "AAAT", "AAGT"}, clusters[0])
}

func TestIdempotent(t *testing.T) {
	counts := tagCounts("AAAA", "AAAA", "AAAT", "CCCC", "CCCG", "GGGG")
	for _, name := range []string{"exact", "hierarchical", "adjacency", "directional"} {
		group, err := New(name)
		require.NoError(t, err)
		first := group(counts, 1)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, group(counts, 1), "algorithm %s is not idempotent", name)
		}
	}
}

func TestEveryTagInExactlyOneCluster(t *testing.T) {
	counts := tagCounts("AAAA", "AAAT", "AATT", "CCCC", "GCCC", "TTTT")
	for _, name := range []string{"exact", "hierarchical", "adjacency", "directional"} {
		group, err := New(name)
		require.NoError(t, err)
		for k := 0; k <= 2; k++ {
			seen := map[string]int{}
			for _, cluster := range group(counts, k) {
				require.NotEmpty(t, cluster)
				for _, tag := range cluster {
					seen[tag]++
				}
			}
			for tag := range counts {
				assert.Equal(t, 1, seen[tag], "algorithm %s k=%d tag %s", name, k, tag)
			}
		}
	}
}
