package util

import "fmt"

// Hamming returns the number of positions at which two tags differ.
// The two tags must have equal length.
func Hamming(s1, s2 string) (distance int) {
	if len(s1) != len(s2) {
		panic(fmt.Sprintf("s1 and s2 must have equal length: '%s', '%s'", s1, s2))
	}
	for i := 0; i < len(s1); i++ {
		if s1[i] != s2[i] {
			distance++
		}
	}
	return distance
}

// Levenshtein computes the Levenshtein distance between two tags: the
// number of insertions, deletions, and substitutions it takes to
// transform s1 into s2, each step costing one distance point.
func Levenshtein(s1, s2 string) (distance int) {
	r1 := []byte(s1)
	r2 := []byte(s2)

	// Two-row dynamic program over the edit distance matrix.
	prev := make([]int, len(r2)+1)
	cur := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(r1); i++ {
		cur[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			minValue := prev[j-1] + cost
			if down := prev[j] + 1; down < minValue {
				minValue = down
			}
			if right := cur[j-1] + 1; right < minValue {
				minValue = right
			}
			cur[j] = minValue
		}
		prev, cur = cur, prev
	}
	return prev[len(r2)]
}
