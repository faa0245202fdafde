package dedup

import (
	"sort"
	"testing"

	"github.com/spatialomics/stcount/annotated"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func read(name string, start int, strand byte) annotated.Read {
	return annotated.Read{Name: name, Start: start, Strand: strand}
}

func starts(w []annotated.Read) []int {
	s := make([]int, len(w))
	for i, r := range w {
		s[i] = r.Start
	}
	return s
}

func TestWindowsGapSplit(t *testing.T) {
	got := windows([]annotated.Read{
		read("a", 600, '+'),
		read("b", 100, '+'),
		read("c", 120, '+'),
	}, 250)
	require.Len(t, got, 2)
	assert.Equal(t, []int{100, 120}, starts(got[0]))
	assert.Equal(t, []int{600}, starts(got[1]))
}

func TestWindowsGapBoundary(t *testing.T) {
	// A gap of exactly offset stays in one neighborhood; offset+1
	// splits.
	got := windows([]annotated.Read{read("a", 100, '+'), read("b", 350, '+')}, 250)
	require.Len(t, got, 1)

	got = windows([]annotated.Read{read("a", 100, '+'), read("b", 351, '+')}, 250)
	require.Len(t, got, 2)
}

func TestWindowsStrandSplit(t *testing.T) {
	// Same start, opposite strands: never the same molecule.
	got := windows([]annotated.Read{read("a", 100, '+'), read("b", 100, '-')}, 250)
	require.Len(t, got, 2)
}

func TestWindowsFinalFlush(t *testing.T) {
	// The trailing read forms its own neighborhood rather than being
	// dropped.
	got := windows([]annotated.Read{
		read("a", 100, '+'),
		read("b", 110, '+'),
		read("c", 5000, '+'),
	}, 250)
	require.Len(t, got, 2)
	assert.Equal(t, []int{5000}, starts(got[1]))
}

func TestWindowsSingleRead(t *testing.T) {
	got := windows([]annotated.Read{read("a", 7, '-')}, 250)
	require.Len(t, got, 1)
	assert.Equal(t, []int{7}, starts(got[0]))
}

func TestWindowsEmpty(t *testing.T) {
	assert.Nil(t, windows(nil, 250))
}

func TestWindowsPartition(t *testing.T) {
	// Every read lands in exactly one neighborhood, whatever the
	// input order.
	in := []annotated.Read{
		read("a", 900, '-'),
		read("b", 100, '+'),
		read("c", 500, '+'),
		read("d", 120, '+'),
		read("e", 910, '-'),
		read("f", 100, '+'),
	}
	var names []string
	for _, w := range windows(in, 250) {
		for _, r := range w {
			names = append(names, r.Name)
		}
	}
	sort.Strings(names)
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, names)
}
