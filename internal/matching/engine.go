// Package matching implements the template match engine: it classifies raw
// imported transaction descriptions against reusable import templates by
// exact, regex or fuzzy match, and produces ranked alternative suggestions.
package matching

import (
	"log/slog"
	"regexp"
	"sort"
	"sync/atomic"

	"github.com/concilia-dev/concilia/internal/fuzzyindex"
	"github.com/concilia-dev/concilia/internal/model"
	"github.com/concilia-dev/concilia/internal/similarity"
	"github.com/concilia-dev/concilia/internal/textnorm"
)

// Match scores by stage.
const (
	exactScore = 1.0
	regexScore = 0.95

	// suggestionFloor is the lowest score an alternative suggestion may have.
	suggestionFloor = 0.3
)

// Suggestion reason strings shown to the bookkeeper.
const (
	reasonHighTextSimilarity = "Alta similaridade textual"
	reasonPartialKeywords    = "Correspondência parcial de palavras-chave"
	reasonTextSimilarity     = "Similaridade de texto"
)

// Options controls a single Match call.
type Options struct {
	// MinConfidence is the lowest blended score the fuzzy stage may accept.
	MinConfidence float64
	// MaxSuggestions caps the ranked alternative list.
	MaxSuggestions int
	// IncludeSuggestions attaches ranked alternatives to the result.
	IncludeSuggestions bool
}

// DefaultOptions returns the standard matching options.
func DefaultOptions() Options {
	return Options{
		MinConfidence:      0.7,
		MaxSuggestions:     3,
		IncludeSuggestions: true,
	}
}

// snapshot is an immutable view of the active template set and the structures
// derived from it. Engine swaps whole snapshots so readers never observe a
// half-updated index.
type snapshot struct {
	regexes   map[int64]*regexp.Regexp
	index     *fuzzyindex.Index
	templates []model.ImportTemplate
}

// Engine matches transaction descriptions against import templates. It is
// safe for concurrent use under a single-writer discipline: any number of
// Match calls may run while one UpdateTemplates replaces the snapshot.
type Engine struct {
	snap atomic.Pointer[snapshot]
}

// NewEngine creates an engine over the given template list. Inactive
// templates are filtered out.
func NewEngine(templates []model.ImportTemplate) *Engine {
	e := &Engine{}
	e.UpdateTemplates(templates)
	return e
}

// UpdateTemplates replaces the stored template list and rebuilds the fuzzy
// index and regex cache atomically. Callers never observe a stale index after
// it returns.
func (e *Engine) UpdateTemplates(templates []model.ImportTemplate) {
	active := make([]model.ImportTemplate, 0, len(templates))
	for _, t := range templates {
		if t.Active {
			active = append(active, t)
		}
	}

	regexes := make(map[int64]*regexp.Regexp, len(active))
	docs := make([]fuzzyindex.Doc, 0, len(active))
	for _, t := range active {
		if t.Regex != "" {
			re, err := regexp.Compile("(?i)" + t.Regex)
			if err != nil {
				slog.Warn("Skipping invalid template regex",
					"template_id", t.ID,
					"template_name", t.Name,
					"regex", t.Regex,
					"error", err)
			} else {
				regexes[t.ID] = re
			}
		}
		docs = append(docs, fuzzyindex.Doc{ID: t.ID, Pattern: t.Pattern, Name: t.Name})
	}

	e.snap.Store(&snapshot{
		templates: active,
		regexes:   regexes,
		index:     fuzzyindex.New(docs),
	})
}

// Templates returns the active template set of the current snapshot.
func (e *Engine) Templates() []model.ImportTemplate {
	return e.snap.Load().templates
}

// Match classifies a transaction description. Stages run in order: exact
// pattern equality, case-insensitive regex, fuzzy index search; if none
// produces a hit above its threshold the result is a manual match with a nil
// template. Scan order is template list order and the first hit wins.
func (e *Engine) Match(description string, opts Options) model.MatchResult {
	snap := e.snap.Load()
	normDesc := textnorm.Normalize(description)

	result := model.MatchResult{Kind: model.MatchManual}

	// Exact stage.
	for i := range snap.templates {
		if textnorm.Normalize(snap.templates[i].Pattern) == normDesc && normDesc != "" {
			result = model.MatchResult{
				Template: &snap.templates[i],
				Kind:     model.MatchExato,
				Score:    exactScore,
			}
			break
		}
	}

	// Regex stage.
	if result.Template == nil {
		for i := range snap.templates {
			re, ok := snap.regexes[snap.templates[i].ID]
			if !ok {
				continue
			}
			if re.MatchString(normDesc) {
				result = model.MatchResult{
					Template: &snap.templates[i],
					Kind:     model.MatchRegex,
					Score:    regexScore,
				}
				break
			}
		}
	}

	// Fuzzy stage.
	if result.Template == nil {
		if tmpl, score, ok := snap.fuzzyMatch(normDesc, opts.MinConfidence); ok {
			result = model.MatchResult{
				Template: tmpl,
				Kind:     model.MatchFuzzy,
				Score:    score,
			}
		}
	}

	if opts.IncludeSuggestions {
		result.Suggestions = snap.suggest(normDesc, result.Template, opts.MaxSuggestions)
	}

	return result
}

// fuzzyMatch takes the top fuzzy hit and accepts it when the blended score
// clears both the caller's minimum and the template's own confidence limit.
func (s *snapshot) fuzzyMatch(normDesc string, minConfidence float64) (*model.ImportTemplate, float64, bool) {
	hits := s.index.Search(normDesc)
	if len(hits) == 0 {
		return nil, 0, false
	}

	top := hits[0]
	tmpl := s.templateByID(top.Doc.ID)
	if tmpl == nil {
		return nil, 0, false
	}

	indexScore := 1 - top.Distance
	editSim := similarity.Similarity(normDesc, textnorm.Normalize(tmpl.Pattern))
	score := similarity.BlendPrimary(indexScore, editSim)

	if score < minConfidence || score < tmpl.MinConfidence {
		return nil, 0, false
	}

	return tmpl, score, true
}

// suggest builds the ranked alternative list, excluding whichever template was
// already selected as the primary result.
func (s *snapshot) suggest(normDesc string, primary *model.ImportTemplate, maxSuggestions int) []model.TemplateSuggestion {
	if maxSuggestions <= 0 {
		return nil
	}

	var suggestions []model.TemplateSuggestion
	for _, hit := range s.index.Search(normDesc) {
		if primary != nil && hit.Doc.ID == primary.ID {
			continue
		}
		tmpl := s.templateByID(hit.Doc.ID)
		if tmpl == nil {
			continue
		}

		indexScore := 1 - hit.Distance
		editSim := similarity.Similarity(normDesc, textnorm.Normalize(tmpl.Pattern))
		score := similarity.BlendSuggestion(indexScore, editSim)
		if score < suggestionFloor {
			continue
		}

		suggestions = append(suggestions, model.TemplateSuggestion{
			Template: tmpl,
			Score:    score,
			Reason:   suggestionReason(editSim, indexScore),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}

// suggestionReason maps the sub-scores behind a suggestion to a short
// explanation.
func suggestionReason(editSim, indexScore float64) string {
	switch {
	case editSim > 0.8:
		return reasonHighTextSimilarity
	case indexScore > 0.7:
		return reasonPartialKeywords
	default:
		return reasonTextSimilarity
	}
}

// templateByID finds a template in the snapshot by ID.
func (s *snapshot) templateByID(id int64) *model.ImportTemplate {
	for i := range s.templates {
		if s.templates[i].ID == id {
			return &s.templates[i]
		}
	}
	return nil
}
