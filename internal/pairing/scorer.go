// Package pairing implements the reconciliation pairing engine: scoring a
// bank transaction against a candidate accounting entry and searching a
// candidate set for the best pairings.
package pairing

import (
	"fmt"
	"math"
	"strings"

	"github.com/concilia-dev/concilia/internal/model"
	"github.com/concilia-dev/concilia/internal/textnorm"
)

// Factor point budgets. The four factors sum to a raw total out of 100.
const (
	amountMaxPoints      = 40
	dateMaxPoints        = 30
	descriptionMaxPoints = 20
	kindMaxPoints        = 10
)

// pctDiffSentinel is reported when the bank amount is exactly zero, meaning
// "fully different" rather than a division by zero.
const pctDiffSentinel = 100.0

// Score computes the pairing confidence between one bank transaction and one
// accounting entry. Pure and deterministic; safe for concurrent use.
func Score(txn model.BankTransaction, entry model.AccountingEntry) model.PairingCandidate {
	var points int
	var reasons []string

	amountPts, amountDiff, pctDiff := amountPoints(txn, entry)
	points += amountPts
	if msg := amountReason(amountPts); msg != "" {
		reasons = append(reasons, msg)
	}

	dayDiff := math.Abs(txn.PostedAt.Sub(entry.Date).Hours()) / 24
	datePts := datePoints(dayDiff)
	points += datePts
	if msg := dateReason(datePts, dayDiff); msg != "" {
		reasons = append(reasons, msg)
	}

	descPts, descPct := descriptionPoints(txn.Memo, entry.Description)
	points += descPts
	if msg := descriptionReason(descPts, descPct); msg != "" {
		reasons = append(reasons, msg)
	}

	if kindCompatible(txn, entry) {
		points += kindMaxPoints
		reasons = append(reasons, "Tipo de lançamento compatível")
	}

	score := float64(points) / 100
	if score > 1 {
		score = 1
	}

	return model.PairingCandidate{
		Transaction: txn,
		Entry:       entry,
		Points:      points,
		Score:       score,
		Reasons:     reasons,
		Breakdown: model.ScoreBreakdown{
			AmountDiff:    fmt.Sprintf("%.2f", amountDiff),
			AmountPctDiff: fmt.Sprintf("%.2f", pctDiff),
			DayDiff:       fmt.Sprintf("%.1f", dayDiff),
		},
	}
}

// amountPoints awards up to 40 points based on how close the absolute amounts
// are, in absolute and percentage terms.
func amountPoints(txn model.BankTransaction, entry model.AccountingEntry) (pts int, diff, pctDiff float64) {
	diff = math.Abs(math.Abs(txn.Amount) - math.Abs(entry.Amount))

	if txn.Amount == 0 {
		pctDiff = pctDiffSentinel
	} else {
		pctDiff = diff / math.Abs(txn.Amount) * 100
	}

	switch {
	case diff == 0:
		pts = amountMaxPoints
	case pctDiff <= 1:
		pts = 35
	case pctDiff <= 5:
		pts = 25
	case pctDiff <= 10:
		pts = 15
	}
	return pts, diff, pctDiff
}

// amountReason maps an amount tier to its rationale line. A zero award adds
// no line.
func amountReason(pts int) string {
	switch pts {
	case amountMaxPoints:
		return "Valor exato"
	case 35:
		return "Valor muito próximo"
	case 25:
		return "Valor próximo"
	case 15:
		return "Valor relativamente próximo"
	default:
		return ""
	}
}

// datePoints awards up to 30 points based on the day distance between the
// bank posting date and the entry date. Fractional day differences are
// allowed; tiers sit on whole-day boundaries.
func datePoints(dayDiff float64) int {
	switch {
	case dayDiff == 0:
		return dateMaxPoints
	case dayDiff <= 1:
		return 25
	case dayDiff <= 3:
		return 20
	case dayDiff <= 7:
		return 10
	case dayDiff <= 15:
		return 5
	default:
		return 0
	}
}

// dateReason maps a date tier to its rationale line.
func dateReason(pts int, dayDiff float64) string {
	switch pts {
	case dateMaxPoints:
		return "Data exata"
	case 25:
		return fmt.Sprintf("Data muito próxima (%.1f dia(s))", dayDiff)
	case 20:
		return fmt.Sprintf("Data próxima (%.1f dias)", dayDiff)
	case 10:
		return fmt.Sprintf("Diferença de %.1f dias", dayDiff)
	case 5:
		return fmt.Sprintf("Datas distantes (%.1f dias)", dayDiff)
	default:
		return ""
	}
}

// descriptionPoints awards up to 20 points based on token overlap between the
// normalized descriptions. Empty descriptions on either side contribute
// nothing rather than erroring.
func descriptionPoints(memo, description string) (pts int, pct float64) {
	normMemo := textnorm.Normalize(memo)
	normDesc := textnorm.Normalize(description)
	if normMemo == "" || normDesc == "" {
		return 0, 0
	}

	memoTokens := strings.Fields(normMemo)
	descTokens := strings.Fields(normDesc)

	shared := 0
	for _, mt := range memoTokens {
		if len(mt) <= 2 {
			continue
		}
		for _, dt := range descTokens {
			if strings.Contains(dt, mt) || strings.Contains(mt, dt) {
				shared++
				break
			}
		}
	}

	maxTokens := len(memoTokens)
	if len(descTokens) > maxTokens {
		maxTokens = len(descTokens)
	}
	pct = float64(shared) / float64(maxTokens) * 100

	switch {
	case pct >= 70:
		pts = descriptionMaxPoints
	case pct >= 50:
		pts = 15
	case pct >= 30:
		pts = 10
	case pct > 0:
		pts = 5
	}
	return pts, pct
}

// descriptionReason maps a description tier to its rationale line.
func descriptionReason(pts int, pct float64) string {
	switch pts {
	case descriptionMaxPoints:
		return fmt.Sprintf("Descrições muito semelhantes (%.2f%%)", pct)
	case 15:
		return fmt.Sprintf("Descrições semelhantes (%.2f%%)", pct)
	case 10:
		return fmt.Sprintf("Alguma semelhança nas descrições (%.2f%%)", pct)
	case 5:
		return fmt.Sprintf("Pouca semelhança nas descrições (%.2f%%)", pct)
	default:
		return ""
	}
}

// kindCompatible reports whether the transaction direction agrees with the
// entry kind: credits pair with receitas, debits with despesas.
func kindCompatible(txn model.BankTransaction, entry model.AccountingEntry) bool {
	if txn.IsCredit() {
		return entry.Kind == model.KindReceita
	}
	return entry.Kind == model.KindDespesa
}
