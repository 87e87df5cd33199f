// Package similarity provides the text similarity measures used by the
// template matching engine.
package similarity

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Blend weights combining the fuzzy index score with edit-distance similarity.
// The primary match leans on edit similarity for stability; the suggestion
// list favors broader fuzzy recall. These constants are contractual.
const (
	PrimaryIndexWeight = 0.6
	PrimaryEditWeight  = 0.4

	SuggestionIndexWeight = 0.7
	SuggestionEditWeight  = 0.3
)

// Similarity returns a normalized edit-distance similarity between two
// strings: 1 means identical, 0 means completely dissimilar. Two empty
// strings are identical by definition.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}

	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1
	}

	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

// BlendPrimary combines an index score and an edit similarity for the primary
// fuzzy match decision.
func BlendPrimary(indexScore, editSim float64) float64 {
	return PrimaryIndexWeight*indexScore + PrimaryEditWeight*editSim
}

// BlendSuggestion combines an index score and an edit similarity when ranking
// alternative suggestions.
func BlendSuggestion(indexScore, editSim float64) float64 {
	return SuggestionIndexWeight*indexScore + SuggestionEditWeight*editSim
}
