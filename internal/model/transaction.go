// Package model defines the core data structures for the concilia application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// ReconState tracks where a bank transaction sits in the reconciliation workflow.
type ReconState string

// Reconciliation states.
const (
	StateUnreconciled ReconState = "unreconciled"
	StateSuggested    ReconState = "suggested"
	StateConfirmed    ReconState = "confirmed"
	StateTransfer     ReconState = "transfer"
	StateIgnored      ReconState = "ignored"
)

// BankTransaction represents a single statement movement from any source
// (OFX/CSV file import or a bank feed). Positive amounts are credits,
// negative amounts are debits.
type BankTransaction struct {
	PostedAt  time.Time  `json:"posted_at"`
	ID        string     `json:"id"`
	AccountID string     `json:"account_id"`
	Memo      string     `json:"memo"`
	FitID     string     `json:"fit_id,omitempty"`
	State     ReconState `json:"state"`
	Hash      string     `json:"hash"`
	Amount    float64    `json:"amount"`
}

// IsCredit reports whether the transaction moves money into the account.
func (t *BankTransaction) IsCredit() bool {
	return t.Amount >= 0
}

// GenerateHash creates a unique hash for duplicate detection on import.
func (t *BankTransaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.PostedAt.Format("2006-01-02"),
		t.Amount,
		t.Memo,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
