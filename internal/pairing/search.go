package pairing

import (
	"sort"

	"github.com/concilia-dev/concilia/internal/model"
)

// SearchOptions controls a pairing search.
type SearchOptions struct {
	// MinConfidence drops candidates scoring below it.
	MinConfidence float64
	// MaxResults truncates the ranked candidate list.
	MaxResults int
}

// DefaultSearchOptions returns the standard search configuration.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		MinConfidence: 0.5,
		MaxResults:    50,
	}
}

// Summary counts the returned candidates per confidence tier. Reporting only;
// it never feeds back into filtering.
type Summary struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// SearchResult is the ranked outcome of one pairing search.
type SearchResult struct {
	Candidates []model.PairingCandidate `json:"candidates"`
	Summary    Summary                  `json:"summary"`
}

// Search scores the full cartesian product of bank transactions and
// accounting entries, keeps candidates at or above the confidence floor,
// ranks them best first and truncates to the result limit. Ties keep
// enumeration order (outer loop over transactions, inner over entries).
//
// Cost is O(n*m); callers are expected to pre-filter both lists to
// unreconciled records within a bounded date window.
func Search(txns []model.BankTransaction, entries []model.AccountingEntry, opts SearchOptions) SearchResult {
	var candidates []model.PairingCandidate

	for _, txn := range txns {
		for _, entry := range entries {
			c := Score(txn, entry)
			if c.Score >= opts.MinConfidence {
				candidates = append(candidates, c)
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if opts.MaxResults > 0 && len(candidates) > opts.MaxResults {
		candidates = candidates[:opts.MaxResults]
	}

	result := SearchResult{Candidates: candidates}
	for _, c := range candidates {
		switch c.Tier() {
		case model.TierHigh:
			result.Summary.High++
		case model.TierMedium:
			result.Summary.Medium++
		case model.TierLow:
			result.Summary.Low++
		}
	}

	return result
}
