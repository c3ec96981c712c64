package similarity

import "strings"

// Tokens lower-cases s and splits it on whitespace into a set of words.
func Tokens(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = struct{}{}
	}
	return set
}

// Jaccard returns the Jaccard similarity of the word sets of a and b scaled to
// 0-100, and the number of shared words. An empty union scores 0.
func Jaccard(a, b string) (score float64, common int) {
	ta, tb := Tokens(a), Tokens(b)
	for w := range ta {
		if _, ok := tb[w]; ok {
			common++
		}
	}
	union := len(ta) + len(tb) - common
	if union == 0 {
		return 0, 0
	}
	return float64(common) / float64(union) * 100, common
}
