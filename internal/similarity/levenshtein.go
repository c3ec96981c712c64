// Package similarity provides edit-distance and token-overlap comparisons for
// names and free-text descriptions.
package similarity

import "strings"

// LevenshteinDistance returns the minimum number of single-rune insertions,
// deletions, or substitutions needed to turn a into b.
func LevenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	runesA := []rune(a)
	runesB := []rune(b)
	if len(runesA) == 0 {
		return len(runesB)
	}
	if len(runesB) == 0 {
		return len(runesA)
	}

	// Two rows of the DP matrix are enough.
	prev := make([]int, len(runesB)+1)
	curr := make([]int, len(runesB)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(runesA); i++ {
		curr[0] = i
		for j := 1; j <= len(runesB); j++ {
			cost := 1
			if runesA[i-1] == runesB[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(runesB)]
}

// EditSimilarity returns 100*(1 - distance/maxLen) over runes. Two empty strings score 0.
func EditSimilarity(a, b string) float64 {
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 0
	}
	return (1 - float64(LevenshteinDistance(a, b))/float64(maxLen)) * 100
}

// Containment reports whether one string contains the other and, if so, the
// shorter-to-longer rune length ratio.
func Containment(a, b string) (ratio float64, ok bool) {
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 || lb == 0 {
		return 0, false
	}
	if !strings.Contains(a, b) && !strings.Contains(b, a) {
		return 0, false
	}
	return float64(min(la, lb)) / float64(max(la, lb)), true
}
