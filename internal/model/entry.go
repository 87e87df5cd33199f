package model

import "time"

// EntryKind classifies an accounting entry (lançamento).
type EntryKind string

// Entry kinds.
const (
	KindReceita       EntryKind = "receita"
	KindDespesa       EntryKind = "despesa"
	KindTransferencia EntryKind = "transferencia"
)

// EntryStatus tracks whether an entry has been reconciled against a bank
// transaction.
type EntryStatus string

// Entry statuses.
const (
	StatusPendente   EntryStatus = "pendente"
	StatusConciliado EntryStatus = "conciliado"
)

// AccountingEntry represents an internally recorded financial entry, produced
// by manual bookkeeping or by the import pipeline. The pairing engine consumes
// it read-only.
type AccountingEntry struct {
	Date        time.Time   `json:"date"`
	ID          string      `json:"id"`
	Description string      `json:"description"`
	Kind        EntryKind   `json:"kind"`
	Status      EntryStatus `json:"status"`
	Amount      float64     `json:"amount"`
	// TemplateID links a draft entry back to the import template that
	// classified it, so reconciliation outcomes can feed the template's
	// usage counters. Zero for manually recorded entries.
	TemplateID int64 `json:"template_id,omitempty"`
}
