package keyword

import (
	"sort"
	"strings"
)

// Corrector rewrites misspelled query terms to the closest indexed title term.
type Corrector struct {
	vocab       map[string]int
	terms       []string
	maxDistance int
}

// NewCorrector builds a corrector over vocab (term -> document frequency).
// maxDistance <= 0 uses 2.
func NewCorrector(vocab map[string]int, maxDistance int) *Corrector {
	if maxDistance <= 0 {
		maxDistance = 2
	}
	terms := make([]string, 0, len(vocab))
	for t := range vocab {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return &Corrector{vocab: vocab, terms: terms, maxDistance: maxDistance}
}

// Correct returns the corrected query and whether any term changed.
// Terms already in the vocabulary, and terms with no close match, are kept.
func (c *Corrector) Correct(query string) (string, bool) {
	terms := tokenizeQuery(query)
	changed := false
	for i, term := range terms {
		if _, ok := c.vocab[term]; ok {
			continue
		}
		if best, ok := c.closest(term); ok {
			terms[i] = best
			changed = true
		}
	}
	return strings.Join(terms, " "), changed
}

// closest picks the lowest-distance term, preferring the more frequent one on ties.
func (c *Corrector) closest(term string) (string, bool) {
	best, bestDist, bestFreq := "", c.maxDistance+1, 0
	n := len([]rune(term))
	for _, cand := range c.terms {
		if abs(len([]rune(cand))-n) > c.maxDistance {
			continue
		}
		d := EditDistance(term, cand)
		if d > c.maxDistance {
			continue
		}
		if freq := c.vocab[cand]; d < bestDist || (d == bestDist && freq > bestFreq) {
			best, bestDist, bestFreq = cand, d, freq
		}
	}
	return best, best != ""
}

// EditDistance is the Damerau-Levenshtein (optimal string alignment) distance between a and b.
// Adjacent transpositions count as one edit, so "ipohne" is one edit from "iphone".
func EditDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	d := make([][]int, len(ra)+1)
	for i := range d {
		d[i] = make([]int, len(rb)+1)
		d[i][0] = i
	}
	for j := range d[0] {
		d[0][j] = j
	}
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			d[i][j] = min(d[i-1][j]+1, d[i][j-1]+1, d[i-1][j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				d[i][j] = min(d[i][j], d[i-2][j-2]+1)
			}
		}
	}
	return d[len(ra)][len(rb)]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
