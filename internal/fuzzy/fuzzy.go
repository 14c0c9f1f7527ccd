// Package fuzzy suggests near matches for mistyped names.
package fuzzy

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Closest returns the candidate with the smallest case-insensitive edit
// distance to input, if that distance is at most threshold. An exact
// match means there is nothing to suggest, so it yields ok == false.
// Ties go to the earliest candidate.
func Closest(input string, candidates []string, threshold int) (match string, ok bool) {
	needle := strings.ToLower(input)
	best := threshold + 1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(c))
		if d < best {
			best, match = d, c
		}
	}
	if best > threshold || best == 0 {
		return "", false
	}
	return match, true
}
