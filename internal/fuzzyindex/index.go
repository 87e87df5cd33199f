// Package fuzzyindex implements a small token-weighted fuzzy string index
// over import templates. A search key is matched against two weighted fields
// (the template's match pattern and its display name); the position of a
// match inside the text never affects the score.
package fuzzyindex

import (
	"sort"
	"strings"

	"github.com/concilia-dev/concilia/internal/similarity"
	"github.com/concilia-dev/concilia/internal/textnorm"
)

// Index tuning constants. The minimum token length, distance threshold and
// field weights are contractual.
const (
	// MinTokenLength is the shortest substring considered matchable.
	MinTokenLength = 3

	// DistanceThreshold is the largest normalized distance a hit may have;
	// anything above it is not returned.
	DistanceThreshold = 0.6

	patternWeight = 0.8
	nameWeight    = 0.2
)

// Doc is one indexable document: a template's pattern and display name.
type Doc struct {
	Pattern string
	Name    string
	ID      int64
}

// Hit is a search result. Distance is normalized to [0, 1] with 0 meaning a
// perfect match.
type Hit struct {
	Doc      Doc
	Distance float64
}

// indexedDoc caches the normalized field text and tokens for one document.
type indexedDoc struct {
	doc           Doc
	normPattern   string
	normName      string
	patternTokens []string
	nameTokens    []string
}

// Index is an immutable fuzzy search structure. Rebuilding after the document
// set changes means constructing a new Index with New.
type Index struct {
	docs []indexedDoc
}

// New builds an index over the given documents.
func New(docs []Doc) *Index {
	indexed := make([]indexedDoc, 0, len(docs))
	for _, d := range docs {
		normPattern := textnorm.Normalize(d.Pattern)
		normName := textnorm.Normalize(d.Name)
		indexed = append(indexed, indexedDoc{
			doc:           d,
			normPattern:   normPattern,
			normName:      normName,
			patternTokens: matchableTokens(normPattern),
			nameTokens:    matchableTokens(normName),
		})
	}
	return &Index{docs: indexed}
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	return len(ix.docs)
}

// Search matches the query against every document and returns hits within the
// distance threshold, best first. Ties keep document insertion order.
func (ix *Index) Search(query string) []Hit {
	normQuery := textnorm.Normalize(query)
	if normQuery == "" {
		return nil
	}
	queryTokens := matchableTokens(normQuery)

	var hits []Hit
	for _, d := range ix.docs {
		dist := ix.docDistance(normQuery, queryTokens, d)
		if dist <= DistanceThreshold {
			hits = append(hits, Hit{Doc: d.doc, Distance: dist})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	return hits
}

// docDistance combines the per-field distances using the field weights,
// skipping empty fields.
func (ix *Index) docDistance(query string, queryTokens []string, d indexedDoc) float64 {
	var weighted, weightSum float64

	if d.normPattern != "" {
		weighted += patternWeight * fieldDistance(query, queryTokens, d.normPattern, d.patternTokens)
		weightSum += patternWeight
	}
	if d.normName != "" {
		weighted += nameWeight * fieldDistance(query, queryTokens, d.normName, d.nameTokens)
		weightSum += nameWeight
	}

	if weightSum == 0 {
		return 1
	}
	return weighted / weightSum
}

// fieldDistance computes the normalized distance between a query and one
// field's text. Full containment in either direction counts as a perfect
// match since match location is ignored.
func fieldDistance(query string, queryTokens []string, field string, fieldTokens []string) float64 {
	if query == field {
		return 0
	}

	shorter, longer := query, field
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) >= MinTokenLength && strings.Contains(longer, shorter) {
		return 0
	}

	sim := similarity.Similarity(query, field)
	if tokenSim := tokenSimilarity(queryTokens, fieldTokens); tokenSim > sim {
		sim = tokenSim
	}

	return 1 - sim
}

// tokenSimilarity averages, over the query tokens, the best match each token
// finds among the field tokens.
func tokenSimilarity(queryTokens, fieldTokens []string) float64 {
	if len(queryTokens) == 0 || len(fieldTokens) == 0 {
		return 0
	}

	var total float64
	for _, qt := range queryTokens {
		var best float64
		for _, ft := range fieldTokens {
			var sim float64
			if strings.Contains(qt, ft) || strings.Contains(ft, qt) {
				sim = 1
			} else {
				sim = similarity.Similarity(qt, ft)
			}
			if sim > best {
				best = sim
				if best == 1 {
					break
				}
			}
		}
		total += best
	}

	return total / float64(len(queryTokens))
}

// matchableTokens splits normalized text on whitespace and keeps tokens long
// enough to be matchable.
func matchableTokens(s string) []string {
	if s == "" {
		return nil
	}

	fields := strings.Fields(s)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= MinTokenLength {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
