package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/concilia-dev/concilia/internal/model"
	"github.com/concilia-dev/concilia/internal/service"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidTransaction = errors.New("invalid bank transaction")
	ErrInvalidEntry       = errors.New("invalid accounting entry")
	ErrInvalidState       = errors.New("invalid reconciliation state")
	ErrInvalidStatus      = errors.New("invalid entry status")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of bank transactions.
func validateTransactions(txns []model.BankTransaction) error {
	if txns == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(txns) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i := range txns {
		if err := validateTransaction(&txns[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single bank transaction.
func validateTransaction(txn *model.BankTransaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.PostedAt.IsZero() {
		return fmt.Errorf("%w: missing posted date", ErrInvalidTransaction)
	}
	if txn.AccountID == "" {
		return fmt.Errorf("%w: missing account ID", ErrInvalidTransaction)
	}
	return validateState(txn.State)
}

// validateState validates a reconciliation state.
func validateState(state model.ReconState) error {
	switch state {
	case model.StateUnreconciled,
		model.StateSuggested,
		model.StateConfirmed,
		model.StateTransfer,
		model.StateIgnored:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidState, state)
	}
}

// validateEntry validates an accounting entry.
func validateEntry(entry *model.AccountingEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry", ErrNilParameter)
	}
	if entry.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidEntry)
	}
	if entry.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidEntry)
	}

	switch entry.Kind {
	case model.KindReceita, model.KindDespesa, model.KindTransferencia:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEntry, entry.Kind)
	}

	return validateStatus(entry.Status)
}

// validateStatus validates an entry status.
func validateStatus(status model.EntryStatus) error {
	switch status {
	case model.StatusPendente, model.StatusConciliado:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
}

// validateDateRange ensures a window is ordered. Zero bounds mean "open".
func validateDateRange(window service.DateRange) error {
	if !window.Start.IsZero() && !window.End.IsZero() && window.Start.After(window.End) {
		return ErrInvalidDateRange
	}
	return nil
}
