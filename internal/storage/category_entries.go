package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

// ListCategoryEntries returns stored entries, most recently changed first.
func (s *SQLiteStorage) ListCategoryEntries(ctx context.Context) ([]model.CategoryEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, state, updated_at
		FROM category_entries
		ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query category entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.CategoryEntry
	for rows.Next() {
		var entry model.CategoryEntry
		if err := rows.Scan(&entry.ID, &entry.Label, &entry.State, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category entries: %w", err)
	}

	slog.Debug("retrieved category entries", "count", len(entries))
	return entries, nil
}

// SaveCategoryEntry inserts or replaces an unconfirmed entry.
func (s *SQLiteStorage) SaveCategoryEntry(ctx context.Context, entry model.CategoryEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategoryEntry(entry); err != nil {
		return err
	}

	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO category_entries (id, label, state, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label,
			state = excluded.state,
			updated_at = excluded.updated_at`,
		entry.ID, entry.Label, string(entry.State), entry.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save category entry: %w", err)
	}
	return nil
}

// DeleteCategoryEntry removes an entry. Deleting a missing entry is not an
// error.
func (s *SQLiteStorage) DeleteCategoryEntry(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM category_entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete category entry: %w", err)
	}
	return nil
}
