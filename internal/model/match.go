package model

// MatchKind identifies which stage of the template engine produced a match.
type MatchKind string

// Match kinds.
const (
	MatchExato  MatchKind = "exato"
	MatchRegex  MatchKind = "regex"
	MatchFuzzy  MatchKind = "fuzzy"
	MatchManual MatchKind = "manual"
)

// TemplateSuggestion is a ranked alternative template for a description,
// attached to a MatchResult alongside the primary match.
type TemplateSuggestion struct {
	Template *ImportTemplate `json:"template"`
	Reason   string          `json:"reason"`
	Score    float64         `json:"score"`
}

// MatchResult is the outcome of classifying one transaction description
// against the active template set.
//
// Invariant: Kind == MatchManual if and only if Template == nil, which happens
// exactly when no exact/regex hit was found and no fuzzy candidate cleared its
// confidence threshold.
type MatchResult struct {
	Template    *ImportTemplate      `json:"template"`
	Kind        MatchKind            `json:"kind"`
	Suggestions []TemplateSuggestion `json:"suggestions,omitempty"`
	Score       float64              `json:"score"`
}

// Matched reports whether a template was selected by any stage.
func (r *MatchResult) Matched() bool {
	return r.Template != nil
}
