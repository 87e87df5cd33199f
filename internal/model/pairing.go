package model

// ConfidenceTier buckets a pairing score into high/medium/low bands for
// summary reporting only; it never drives filtering.
type ConfidenceTier string

// Confidence tiers.
const (
	TierHigh   ConfidenceTier = "high"
	TierMedium ConfidenceTier = "medium"
	TierLow    ConfidenceTier = "low"
)

// Tier thresholds.
const (
	tierHighMin   = 0.8
	tierMediumMin = 0.6
)

// TierFor returns the confidence tier for a score.
func TierFor(score float64) ConfidenceTier {
	switch {
	case score >= tierHighMin:
		return TierHigh
	case score >= tierMediumMin:
		return TierMedium
	default:
		return TierLow
	}
}

// ScoreBreakdown carries the numeric sub-scores behind a pairing candidate,
// formatted for presentation: currency and percentages to 2 decimals, day
// counts to 1 decimal.
type ScoreBreakdown struct {
	AmountDiff    string `json:"amount_diff"`
	AmountPctDiff string `json:"amount_pct_diff"`
	DayDiff       string `json:"day_diff"`
}

// PairingCandidate pairs one bank transaction with one accounting entry and
// the computed confidence for that pairing. Candidates are ephemeral: they are
// built fresh on each search and never persisted by the engine.
//
// Invariant: Score == min(Points, 100) / 100.
type PairingCandidate struct {
	Transaction BankTransaction `json:"transaction"`
	Entry       AccountingEntry `json:"entry"`
	Reasons     []string        `json:"reasons"`
	Breakdown   ScoreBreakdown  `json:"breakdown"`
	Points      int             `json:"points"`
	Score       float64         `json:"score"`
}

// Tier returns the reporting tier for this candidate's score.
func (c *PairingCandidate) Tier() ConfidenceTier {
	return TierFor(c.Score)
}
