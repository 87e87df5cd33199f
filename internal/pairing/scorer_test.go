package pairing

import (
	"testing"
	"time"

	"github.com/concilia-dev/concilia/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestScoreStrongMatch(t *testing.T) {
	txn := model.BankTransaction{
		ID:       "t1",
		Amount:   -150.00,
		PostedAt: date(2024, time.March, 10),
		Memo:     "PAGAMENTO FORNECEDOR ABC",
	}
	entry := model.AccountingEntry{
		ID:          "e1",
		Amount:      150.00,
		Date:        date(2024, time.March, 10),
		Description: "Pagamento Fornecedor ABC Ltda",
		Kind:        model.KindDespesa,
	}

	c := Score(txn, entry)

	assert.GreaterOrEqual(t, c.Points, 95)
	assert.GreaterOrEqual(t, c.Score, 0.95)
	assert.Contains(t, c.Reasons, "Valor exato")
	assert.Contains(t, c.Reasons, "Data exata")
	assert.Contains(t, c.Reasons, "Tipo de lançamento compatível")
}

func TestScoreDateOnlyMatch(t *testing.T) {
	txn := model.BankTransaction{
		Amount:   100.00,
		PostedAt: date(2024, time.March, 10),
		Memo:     "saque caixa eletronico",
	}
	entry := model.AccountingEntry{
		Amount:      300.00,
		Date:        date(2024, time.March, 10),
		Description: "pagamento boleto energia",
		Kind:        model.KindDespesa,
	}

	c := Score(txn, entry)

	assert.Equal(t, 30, c.Points)
	assert.InDelta(t, 0.30, c.Score, 1e-9)
	assert.Equal(t, []string{"Data exata"}, c.Reasons)
}

func TestScoreAmountTiers(t *testing.T) {
	tests := []struct {
		name        string
		txnAmount   float64
		entryAmount float64
		wantPoints  int
		wantReason  string
	}{
		{"exact", -100.00, 100.00, 40, "Valor exato"},
		{"within one percent", -100.00, 100.50, 35, "Valor muito próximo"},
		{"within five percent", -100.00, 104.00, 25, "Valor próximo"},
		{"within ten percent", -100.00, 108.00, 15, "Valor relativamente próximo"},
		{"too far", -100.00, 150.00, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Dates far apart, no descriptions and incompatible kinds so
			// only the amount factor contributes.
			txn := model.BankTransaction{
				Amount:   tt.txnAmount,
				PostedAt: date(2024, time.January, 1),
			}
			entry := model.AccountingEntry{
				Amount: tt.entryAmount,
				Date:   date(2024, time.June, 1),
				Kind:   model.KindReceita,
			}

			c := Score(txn, entry)
			assert.Equal(t, tt.wantPoints, c.Points)
			if tt.wantReason != "" {
				assert.Contains(t, c.Reasons, tt.wantReason)
			} else {
				assert.Empty(t, c.Reasons)
			}
		})
	}
}

func TestScoreZeroBankAmountSentinel(t *testing.T) {
	txn := model.BankTransaction{
		Amount:   0,
		PostedAt: date(2024, time.January, 1),
	}
	entry := model.AccountingEntry{
		Amount: 50.00,
		Date:   date(2024, time.June, 1),
		Kind:   model.KindDespesa,
	}

	c := Score(txn, entry)

	assert.Equal(t, "100.00", c.Breakdown.AmountPctDiff)
	assert.Equal(t, 0, c.Points)
}

func TestScoreDateTiers(t *testing.T) {
	tests := []struct {
		name       string
		entryDate  time.Time
		wantPoints int
	}{
		{"same day", date(2024, time.March, 10), 30},
		{"one day", date(2024, time.March, 11), 25},
		{"three days", date(2024, time.March, 13), 20},
		{"seven days", date(2024, time.March, 17), 10},
		{"fifteen days", date(2024, time.March, 25), 5},
		{"sixteen days", date(2024, time.March, 26), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := model.BankTransaction{
				Amount:   100.00,
				PostedAt: date(2024, time.March, 10),
			}
			entry := model.AccountingEntry{
				Amount: 999999.00,
				Date:   tt.entryDate,
				Kind:   model.KindDespesa,
			}

			c := Score(txn, entry)
			assert.Equal(t, tt.wantPoints, c.Points)
		})
	}
}

func TestScoreFractionalDayDiff(t *testing.T) {
	txn := model.BankTransaction{
		Amount:   100.00,
		PostedAt: time.Date(2024, time.March, 10, 18, 0, 0, 0, time.UTC),
	}
	entry := model.AccountingEntry{
		Amount: 999999.00,
		Date:   time.Date(2024, time.March, 10, 6, 0, 0, 0, time.UTC),
		Kind:   model.KindDespesa,
	}

	c := Score(txn, entry)

	// Half a day apart lands in the one-day tier.
	assert.Equal(t, 25, c.Points)
	assert.Equal(t, "0.5", c.Breakdown.DayDiff)
}

func TestScoreEmptyDescriptions(t *testing.T) {
	tests := []struct {
		name  string
		memo  string
		descr string
	}{
		{"both empty", "", ""},
		{"memo empty", "", "pagamento fornecedor"},
		{"entry empty", "pagamento fornecedor", ""},
		{"memo normalizes to empty", "***", "pagamento fornecedor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := model.BankTransaction{
				Amount:   100.00,
				PostedAt: date(2024, time.January, 1),
				Memo:     tt.memo,
			}
			entry := model.AccountingEntry{
				Amount:      999999.00,
				Date:        date(2024, time.June, 1),
				Description: tt.descr,
				Kind:        model.KindDespesa,
			}

			c := Score(txn, entry)
			assert.Equal(t, 0, c.Points)
			assert.Empty(t, c.Reasons)
		})
	}
}

func TestScoreDescriptionTokenOverlap(t *testing.T) {
	txn := model.BankTransaction{
		Amount:   100.00,
		PostedAt: date(2024, time.January, 1),
		Memo:     "PIX JOAO DA SILVA",
	}
	entry := model.AccountingEntry{
		Amount:      999999.00,
		Date:        date(2024, time.June, 1),
		Description: "Recebimento PIX Joao",
		Kind:        model.KindDespesa,
	}

	// Shared tokens: pix, joao, silva is unmatched, "da" too short.
	// 2 shared / max(4, 3) tokens = 50%.
	c := Score(txn, entry)
	assert.Equal(t, 15, c.Points)
	require.Len(t, c.Reasons, 1)
	assert.Contains(t, c.Reasons[0], "50.00%")
}

func TestScoreKindCompatibility(t *testing.T) {
	tests := []struct {
		name       string
		amount     float64
		kind       model.EntryKind
		wantPoints int
	}{
		{"credit with receita", 100.00, model.KindReceita, 10},
		{"debit with despesa", -100.00, model.KindDespesa, 10},
		{"credit with despesa", 100.00, model.KindDespesa, 0},
		{"debit with receita", -100.00, model.KindReceita, 0},
		{"credit with transferencia", 100.00, model.KindTransferencia, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := model.BankTransaction{
				Amount:   tt.amount,
				PostedAt: date(2024, time.January, 1),
			}
			entry := model.AccountingEntry{
				Amount: 999999.00,
				Date:   date(2024, time.June, 1),
				Kind:   tt.kind,
			}

			c := Score(txn, entry)
			assert.Equal(t, tt.wantPoints, c.Points)
		})
	}
}

func TestScoreInvariants(t *testing.T) {
	amounts := []float64{-150.00, 0, 99.99, 150.00}
	dates := []time.Time{
		date(2024, time.March, 10),
		date(2024, time.March, 14),
		date(2024, time.May, 1),
	}
	memos := []string{"", "PAGAMENTO FORNECEDOR ABC", "PIX RECEBIDO"}

	for _, amount := range amounts {
		for _, d := range dates {
			for _, memo := range memos {
				txn := model.BankTransaction{Amount: amount, PostedAt: d, Memo: memo}
				entry := model.AccountingEntry{
					Amount:      150.00,
					Date:        date(2024, time.March, 10),
					Description: "Pagamento Fornecedor ABC Ltda",
					Kind:        model.KindDespesa,
				}

				c := Score(txn, entry)

				assert.GreaterOrEqual(t, c.Score, 0.0)
				assert.LessOrEqual(t, c.Score, 1.0)

				want := float64(c.Points) / 100
				if want > 1 {
					want = 1
				}
				assert.InDelta(t, want, c.Score, 1e-9)
			}
		}
	}
}

func TestScoreBreakdownFormatting(t *testing.T) {
	txn := model.BankTransaction{
		Amount:   -100.00,
		PostedAt: date(2024, time.March, 10),
		Memo:     "tarifa",
	}
	entry := model.AccountingEntry{
		Amount:      104.00,
		Date:        date(2024, time.March, 12),
		Description: "tarifa bancaria",
		Kind:        model.KindDespesa,
	}

	c := Score(txn, entry)

	assert.Equal(t, "4.00", c.Breakdown.AmountDiff)
	assert.Equal(t, "4.00", c.Breakdown.AmountPctDiff)
	assert.Equal(t, "2.0", c.Breakdown.DayDiff)
}
