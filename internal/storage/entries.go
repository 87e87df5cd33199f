package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/concilia-dev/concilia/internal/common"
	"github.com/concilia-dev/concilia/internal/model"
	"github.com/concilia-dev/concilia/internal/service"
)

// SaveEntry inserts or replaces an accounting entry.
func (s *SQLiteStorage) SaveEntry(ctx context.Context, entry *model.AccountingEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if entry != nil && entry.Status == "" {
		entry.Status = model.StatusPendente
	}
	if err := validateEntry(entry); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounting_entries (id, date, description, kind, status, amount, template_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			description = excluded.description,
			kind = excluded.kind,
			status = excluded.status,
			amount = excluded.amount,
			template_id = excluded.template_id
	`, entry.ID, entry.Date, entry.Description, entry.Kind, entry.Status, entry.Amount, entry.TemplateID)
	if err != nil {
		return fmt.Errorf("failed to save entry %s: %w", entry.ID, err)
	}
	return nil
}

// GetEntry fetches one accounting entry by ID.
func (s *SQLiteStorage) GetEntry(ctx context.Context, id string) (*model.AccountingEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, date, description, kind, status, amount, template_id
		FROM accounting_entries WHERE id = ?
	`, id)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entry %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return entry, nil
}

// GetPendingEntries returns entries still awaiting reconciliation within a
// date window, oldest first.
func (s *SQLiteStorage) GetPendingEntries(ctx context.Context, window service.DateRange) ([]model.AccountingEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateDateRange(window); err != nil {
		return nil, err
	}

	query := `
		SELECT id, date, description, kind, status, amount, template_id
		FROM accounting_entries
		WHERE status = ?
	`
	args := []any{model.StatusPendente}

	if !window.Start.IsZero() {
		query += ` AND date >= ?`
		args = append(args, window.Start)
	}
	if !window.End.IsZero() {
		query += ` AND date <= ?`
		args = append(args, window.End)
	}
	query += ` ORDER BY date, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.AccountingEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}
	return entries, nil
}

// UpdateEntryStatus marks an entry as reconciled or pending.
func (s *SQLiteStorage) UpdateEntryStatus(ctx context.Context, id string, status model.EntryStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	if err := validateStatus(status); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE accounting_entries SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update entry status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("entry %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// scanEntry reads one accounting entry row.
func scanEntry(row rowScanner) (*model.AccountingEntry, error) {
	var entry model.AccountingEntry
	var description sql.NullString

	if err := row.Scan(&entry.ID, &entry.Date, &description,
		&entry.Kind, &entry.Status, &entry.Amount, &entry.TemplateID); err != nil {
		return nil, err
	}

	entry.Description = description.String
	return &entry, nil
}
