package errors

import (
	"fmt"
	"strings"
)

// SuggestName offers the closest candidate to an unknown name.
// It returns "" when there is nothing useful to suggest.
func SuggestName(unknown string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}

	minDistance := -1
	var bestMatch string
	for _, c := range candidates {
		dist := levenshteinDistance(strings.ToLower(unknown), strings.ToLower(c))
		if minDistance < 0 || dist < minDistance {
			minDistance = dist
			bestMatch = c
		}
	}

	// Only suggest if the distance is reasonable (< 4 edits)
	if minDistance < 4 {
		return fmt.Sprintf("Did you mean '%s'?", bestMatch)
	}

	if len(candidates) > 5 {
		return fmt.Sprintf("Known names include: %s, ...", strings.Join(candidates[:5], ", "))
	}
	return fmt.Sprintf("Known names: %s", strings.Join(candidates, ", "))
}

// levenshteinDistance computes the edit distance between two strings, rune-wise.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	r1, r2 := []rune(s1), []rune(s2)
	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // Deletion
				curr[j-1]+1,    // Insertion
				prev[j-1]+cost, // Substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}
