package umi

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/grailbio/base/log"
	"github.com/spatialomics/stcount/util"
)

var alphabetMap = map[byte]bool{
	'A': true,
	'C': true,
	'G': true,
	'T': true,
	'N': true,
}

// Corrector implements "snap" correction of UMIs against a whitelist
// of known tags.  An observed UMI is snappable if exactly one known
// UMI is closer to it than all others, in terms of Levenshtein edit
// distance, and that distance is within maxDist.  Ambiguous or distant
// UMIs pass through unchanged.
type Corrector struct {
	known   []string
	k       int
	maxDist int

	mu    sync.Mutex
	cache map[string]string
}

// NewCorrector creates a corrector from whitelist, a \n separated list
// of known UMIs (identical to the file content of a UMI list, one UMI
// per line, characters ACGTN).  maxDist bounds how far an observed UMI
// may snap.
func NewCorrector(whitelist []byte, maxDist int) (*Corrector, error) {
	scanner := bufio.NewScanner(bytes.NewReader(whitelist))
	known := []string{}
	k := -1
	for scanner.Scan() {
		tag := strings.ToUpper(strings.TrimSpace(scanner.Text()))
		if tag == "" {
			continue
		}
		if k < 0 {
			k = len(tag)
		}
		if len(tag) != k {
			return nil, fmt.Errorf("umi %s has length %d, other umis have length %d", tag, len(tag), k)
		}
		if err := validateUMI(tag); err != nil {
			return nil, err
		}
		known = append(known, tag)
	}
	if k < 0 {
		return nil, fmt.Errorf("no umis in whitelist")
	}
	log.Debug.Printf("snap corrector: %d known umis of length %d", len(known), k)
	return &Corrector{
		known:   known,
		k:       k,
		maxDist: maxDist,
		cache:   map[string]string{},
	}, nil
}

// Correct returns the known UMI that tag snaps to, or tag itself when
// no unique nearest known UMI exists within the distance bound.
// Results are memoized per distinct tag; Correct is safe for
// concurrent use.
func (c *Corrector) Correct(tag string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if snapped, ok := c.cache[tag]; ok {
		return snapped
	}
	snapped := c.correct(tag)
	c.cache[tag] = snapped
	return snapped
}

func (c *Corrector) correct(tag string) string {
	bestDist := c.maxDist + 1
	bestCount := 0
	best := ""
	for _, known := range c.known {
		d := util.Levenshtein(tag, known)
		switch {
		case d < bestDist:
			bestDist, bestCount, best = d, 1, known
		case d == bestDist:
			bestCount++
		}
	}
	if bestCount != 1 {
		return tag
	}
	if best != tag {
		log.Debug.Printf("%s snaps to %s with cost %d", tag, best, bestDist)
	}
	return best
}

func validateUMI(tag string) error {
	for i := 0; i < len(tag); i++ {
		if !alphabetMap[tag[i]] {
			return fmt.Errorf("invalid base %c in umi %v", tag[i], tag)
		}
	}
	return nil
}
