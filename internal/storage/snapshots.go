package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

// LoadSnapshot returns the stored transaction list in fetch order.
func (s *SQLiteStorage) LoadSnapshot(ctx context.Context) ([]model.Transaction, bool, error) {
	if err := validateContext(ctx); err != nil {
		return nil, false, err
	}

	var (
		fetchedAt time.Time
		rowCount  int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT fetched_at, row_count FROM snapshot_meta WHERE id = 1`,
	).Scan(&fetchedAt, &rowCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query snapshot: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM snapshot_transactions ORDER BY position`)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query snapshot rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	transactions := make([]model.Transaction, 0, rowCount)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, false, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		var txn model.Transaction
		if err := json.Unmarshal([]byte(payload), &txn); err != nil {
			return nil, false, fmt.Errorf("failed to decode snapshot row: %w", err)
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("error iterating snapshot: %w", err)
	}

	if len(transactions) != rowCount {
		slog.Warn("snapshot is incomplete, ignoring it",
			"expected", rowCount,
			"found", len(transactions))
		return nil, false, nil
	}

	slog.Debug("loaded transaction snapshot",
		"count", len(transactions),
		"fetched_at", fetchedAt)
	return transactions, true, nil
}

// SaveSnapshot replaces the stored transaction list.
func (s *SQLiteStorage) SaveSnapshot(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_transactions`); err != nil {
		return fmt.Errorf("failed to clear snapshot rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO snapshot_transactions (position, transaction_id, payload) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, txn := range transactions {
		payload, err := json.Marshal(txn)
		if err != nil {
			return fmt.Errorf("failed to encode transaction %q: %w", txn.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, i, txn.ID, string(payload)); err != nil {
			return fmt.Errorf("failed to insert snapshot row: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshot_meta (id, fetched_at, row_count) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET fetched_at = excluded.fetched_at, row_count = excluded.row_count`,
		time.Now().UTC(), len(transactions))
	if err != nil {
		return fmt.Errorf("failed to update snapshot metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// ClearSnapshot removes the stored transaction list.
func (s *SQLiteStorage) ClearSnapshot(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, query := range []string{
		`DELETE FROM snapshot_meta`,
		`DELETE FROM snapshot_transactions`,
	} {
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to clear snapshot: %w", err)
		}
	}

	return tx.Commit()
}
