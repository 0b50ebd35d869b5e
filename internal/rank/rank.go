// Package rank implements the subsequence fuzzy matcher used for the plain
// entry fallback. Ranking is recomputed from scratch on every keystroke; no
// state carries over between calls.
package rank

import (
	"sort"
	"strings"
)

// Candidate is one rankable string plus its original configuration index,
// which doubles as the stable tie-breaker.
type Candidate struct {
	Index int
	Text  string
}

// Match is a candidate that survived subsequence matching.
type Match struct {
	Candidate Candidate
	// LongestRun is the longest contiguous stretch of matched characters.
	LongestRun int
	// Start is the index of the first matched character.
	Start int
}

// Rank filters candidates to those containing every query character in
// order (case-insensitive) and sorts them best-first: longer contiguous
// runs, then earlier match starts, then shorter candidates, then original
// order. An empty query matches everything in configuration order.
func Rank(query string, candidates []Candidate) []Match {
	out := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		m, ok := matchOne(query, c)
		if !ok {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.LongestRun != b.LongestRun {
			return a.LongestRun > b.LongestRun
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if len(a.Candidate.Text) != len(b.Candidate.Text) {
			return len(a.Candidate.Text) < len(b.Candidate.Text)
		}
		return a.Candidate.Index < b.Candidate.Index
	})
	return out
}

// matchOne greedily matches query as a subsequence of the candidate text,
// always taking the left-most occurrence of each character.
func matchOne(query string, c Candidate) (Match, bool) {
	if query == "" {
		return Match{Candidate: c}, true
	}
	text := strings.ToLower(c.Text)
	q := strings.ToLower(query)

	start := -1
	longest := 0
	run := 0
	prev := -2
	from := 0
	for i := 0; i < len(q); i++ {
		j := strings.IndexByte(text[from:], q[i])
		if j < 0 {
			return Match{}, false
		}
		pos := from + j
		if start < 0 {
			start = pos
		}
		if pos == prev+1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = pos
		from = pos + 1
	}
	return Match{Candidate: c, LongestRun: longest, Start: start}, true
}
