package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/concilia-dev/concilia/internal/common"
	"github.com/concilia-dev/concilia/internal/model"
	"github.com/concilia-dev/concilia/internal/service"
)

// SaveTransactions persists imported bank transactions. Records whose dedup
// hash already exists are skipped so re-importing a statement is safe.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, txns []model.BankTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(txns); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bank_transactions (id, hash, fit_id, account_id, posted_at, memo, amount, state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range txns {
		t := &txns[i]
		if t.Hash == "" {
			t.Hash = t.GenerateHash()
		}
		if t.State == "" {
			t.State = model.StateUnreconciled
		}

		if _, err := stmt.ExecContext(ctx,
			t.ID, t.Hash, t.FitID, t.AccountID, t.PostedAt, t.Memo, t.Amount, t.State); err != nil {
			return fmt.Errorf("failed to save transaction %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transactions: %w", err)
	}
	return nil
}

// GetTransaction fetches one bank transaction by ID.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id string) (*model.BankTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, hash, fit_id, account_id, posted_at, memo, amount, state
		FROM bank_transactions WHERE id = ?
	`, id)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// GetUnreconciledTransactions returns unreconciled transactions for an
// account within a date window, oldest first.
func (s *SQLiteStorage) GetUnreconciledTransactions(ctx context.Context, accountID string, window service.DateRange) ([]model.BankTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return nil, err
	}
	if err := validateDateRange(window); err != nil {
		return nil, err
	}

	query := `
		SELECT id, hash, fit_id, account_id, posted_at, memo, amount, state
		FROM bank_transactions
		WHERE account_id = ? AND state = ?
	`
	args := []any{accountID, model.StateUnreconciled}

	if !window.Start.IsZero() {
		query += ` AND posted_at >= ?`
		args = append(args, window.Start)
	}
	if !window.End.IsZero() {
		query += ` AND posted_at <= ?`
		args = append(args, window.End)
	}
	query += ` ORDER BY posted_at, id`

	return s.queryTransactions(ctx, query, args...)
}

// GetRecentTransactions returns the most recently posted transactions for an
// account, newest first.
func (s *SQLiteStorage) GetRecentTransactions(ctx context.Context, accountID string, limit int) ([]model.BankTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	return s.queryTransactions(ctx, `
		SELECT id, hash, fit_id, account_id, posted_at, memo, amount, state
		FROM bank_transactions
		WHERE account_id = ?
		ORDER BY posted_at DESC, id DESC
		LIMIT ?
	`, accountID, limit)
}

// UpdateTransactionState moves a transaction through the reconciliation
// workflow.
func (s *SQLiteStorage) UpdateTransactionState(ctx context.Context, id string, state model.ReconState) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	if err := validateState(state); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE bank_transactions SET state = ? WHERE id = ?`, state, id)
	if err != nil {
		return fmt.Errorf("failed to update transaction state: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// queryTransactions runs a query returning bank transaction rows.
func (s *SQLiteStorage) queryTransactions(ctx context.Context, query string, args ...any) ([]model.BankTransaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.BankTransaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}

// rowScanner abstracts sql.Row and sql.Rows for scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTransaction reads one bank transaction row.
func scanTransaction(row rowScanner) (*model.BankTransaction, error) {
	var txn model.BankTransaction
	var fitID sql.NullString
	var memo sql.NullString
	var postedAt time.Time

	if err := row.Scan(&txn.ID, &txn.Hash, &fitID, &txn.AccountID,
		&postedAt, &memo, &txn.Amount, &txn.State); err != nil {
		return nil, err
	}

	txn.FitID = fitID.String
	txn.Memo = memo.String
	txn.PostedAt = postedAt
	return &txn, nil
}
