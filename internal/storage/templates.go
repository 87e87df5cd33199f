package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/concilia-dev/concilia/internal/common"
	"github.com/concilia-dev/concilia/internal/model"
)

// CreateTemplate inserts a new import template and sets its generated ID.
func (s *SQLiteStorage) CreateTemplate(ctx context.Context, tmpl *model.ImportTemplate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if tmpl == nil {
		return fmt.Errorf("%w: template", ErrNilParameter)
	}
	if err := tmpl.Validate(); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO import_templates
			(name, pattern, regex, category, min_confidence, use_count, success_rate, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, tmpl.Name, tmpl.Pattern, tmpl.Regex, tmpl.Category, tmpl.MinConfidence,
		tmpl.UseCount, tmpl.SuccessRate, tmpl.Active, now, now)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read template ID: %w", err)
	}
	tmpl.ID = id
	tmpl.CreatedAt = now
	tmpl.UpdatedAt = now
	return nil
}

// GetTemplate fetches one template by ID.
func (s *SQLiteStorage) GetTemplate(ctx context.Context, id int64) (*model.ImportTemplate, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, pattern, regex, category, min_confidence, use_count, success_rate, active, created_at, updated_at
		FROM import_templates WHERE id = ?
	`, id)

	tmpl, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("template %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return tmpl, nil
}

// GetActiveTemplates returns active templates in creation order, the order
// the match engine scans them in.
func (s *SQLiteStorage) GetActiveTemplates(ctx context.Context) ([]model.ImportTemplate, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryTemplates(ctx, `
		SELECT id, name, pattern, regex, category, min_confidence, use_count, success_rate, active, created_at, updated_at
		FROM import_templates WHERE active = 1 ORDER BY id
	`)
}

// GetAllTemplates returns every template, active or not.
func (s *SQLiteStorage) GetAllTemplates(ctx context.Context) ([]model.ImportTemplate, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryTemplates(ctx, `
		SELECT id, name, pattern, regex, category, min_confidence, use_count, success_rate, active, created_at, updated_at
		FROM import_templates ORDER BY id
	`)
}

// UpdateTemplate replaces a template's editable fields.
func (s *SQLiteStorage) UpdateTemplate(ctx context.Context, tmpl *model.ImportTemplate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if tmpl == nil {
		return fmt.Errorf("%w: template", ErrNilParameter)
	}
	if err := tmpl.Validate(); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE import_templates
		SET name = ?, pattern = ?, regex = ?, category = ?, min_confidence = ?, active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, tmpl.Name, tmpl.Pattern, tmpl.Regex, tmpl.Category, tmpl.MinConfidence, tmpl.Active, tmpl.ID)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("template %d: %w", tmpl.ID, common.ErrNotFound)
	}
	return nil
}

// DeleteTemplate removes a template.
func (s *SQLiteStorage) DeleteTemplate(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM import_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("template %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// RecordTemplateUse folds one accepted/rejected match outcome into the
// template's usage counters. The matching engine never writes these; this is
// the feedback sink the workflow calls after the bookkeeper decides.
func (s *SQLiteStorage) RecordTemplateUse(ctx context.Context, id int64, accepted bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	outcome := 0.0
	if accepted {
		outcome = 1.0
	}

	// success_rate is a running average over use_count samples.
	res, err := s.db.ExecContext(ctx, `
		UPDATE import_templates
		SET success_rate = (success_rate * use_count + ?) / (use_count + 1),
		    use_count = use_count + 1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, outcome, id)
	if err != nil {
		return fmt.Errorf("failed to record template use: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("template %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// queryTemplates runs a query returning template rows.
func (s *SQLiteStorage) queryTemplates(ctx context.Context, query string, args ...any) ([]model.ImportTemplate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var templates []model.ImportTemplate
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, *tmpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate templates: %w", err)
	}
	return templates, nil
}

// scanTemplate reads one template row.
func scanTemplate(row rowScanner) (*model.ImportTemplate, error) {
	var tmpl model.ImportTemplate
	var regex, category sql.NullString

	if err := row.Scan(&tmpl.ID, &tmpl.Name, &tmpl.Pattern, &regex, &category,
		&tmpl.MinConfidence, &tmpl.UseCount, &tmpl.SuccessRate, &tmpl.Active,
		&tmpl.CreatedAt, &tmpl.UpdatedAt); err != nil {
		return nil, err
	}

	tmpl.Regex = regex.String
	tmpl.Category = category.String
	return &tmpl, nil
}
