// Package service defines the interfaces between the reconciliation engines
// and the surrounding application.
package service

import (
	"context"
	"time"

	"github.com/concilia-dev/concilia/internal/model"
)

// DateRange bounds a query to a reconciliation window.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Storage defines the contract for the persistence layer supplying records to
// the engines and persisting workflow outcomes.
type Storage interface {
	// Bank transaction operations
	SaveTransactions(ctx context.Context, txns []model.BankTransaction) error
	GetTransaction(ctx context.Context, id string) (*model.BankTransaction, error)
	GetUnreconciledTransactions(ctx context.Context, accountID string, window DateRange) ([]model.BankTransaction, error)
	GetRecentTransactions(ctx context.Context, accountID string, limit int) ([]model.BankTransaction, error)
	UpdateTransactionState(ctx context.Context, id string, state model.ReconState) error

	// Accounting entry operations
	SaveEntry(ctx context.Context, entry *model.AccountingEntry) error
	GetEntry(ctx context.Context, id string) (*model.AccountingEntry, error)
	GetPendingEntries(ctx context.Context, window DateRange) ([]model.AccountingEntry, error)
	UpdateEntryStatus(ctx context.Context, id string, status model.EntryStatus) error

	// Import template operations
	CreateTemplate(ctx context.Context, tmpl *model.ImportTemplate) error
	GetTemplate(ctx context.Context, id int64) (*model.ImportTemplate, error)
	GetActiveTemplates(ctx context.Context) ([]model.ImportTemplate, error)
	GetAllTemplates(ctx context.Context) ([]model.ImportTemplate, error)
	UpdateTemplate(ctx context.Context, tmpl *model.ImportTemplate) error
	DeleteTemplate(ctx context.Context, id int64) error
	// RecordTemplateUse is the feedback sink: it bumps the usage counter
	// and folds an accepted/rejected outcome into the success rate. The
	// engines only ever read those counters.
	RecordTemplateUse(ctx context.Context, id int64, accepted bool) error

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
}

// ImportStats shows the results of one statement import run.
type ImportStats struct {
	Total      int
	Imported   int
	Duplicates int
	Classified int
	Manual     int
	Duration   time.Duration
}
