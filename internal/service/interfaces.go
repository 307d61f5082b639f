// Package service defines the interfaces shared between the application's
// components.
package service

import (
	"context"

	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

// CategoryGateway is the remote contract for "type/project" categories.
type CategoryGateway interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	// CreateCategory returns nil when the server accepted the write but sent
	// back nothing recognizable as a category.
	CreateCategory(ctx context.Context, label string) (*model.Category, error)
	UpdateCategory(ctx context.Context, id, label string) error
	DeleteCategory(ctx context.Context, id string) error
}

// TransactionGateway is the remote contract for transactions and totals.
type TransactionGateway interface {
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
	CreateTransaction(ctx context.Context, draft model.TransactionDraft) error
	UpdateTransaction(ctx context.Context, id string, draft model.TransactionDraft) error
	DeleteTransaction(ctx context.Context, id string) error
	// Totals returns the server aggregate for filter, which is either
	// model.FilterAll or a category id.
	Totals(ctx context.Context, filter string) (model.Totals, error)
}

// Gateway is the full remote API.
type Gateway interface {
	CategoryGateway
	TransactionGateway
}

// TransactionCache holds the last full transaction list.
type TransactionCache interface {
	Get(ctx context.Context, forceReload bool) ([]model.Transaction, error)
	Invalidate(ctx context.Context)
}

// Confirmer asks the user to acknowledge a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Notifier receives user-facing outcomes of workflows.
type Notifier interface {
	Success(message string)
	Failure(err error)
}

// NopNotifier discards every notification.
type NopNotifier struct{}

// Success implements Notifier.
func (NopNotifier) Success(string) {}

// Failure implements Notifier.
func (NopNotifier) Failure(error) {}

// SnapshotStore persists the cached transaction list between runs.
type SnapshotStore interface {
	// LoadSnapshot returns the stored list and whether one exists. An empty
	// stored list is still a snapshot.
	LoadSnapshot(ctx context.Context) ([]model.Transaction, bool, error)
	SaveSnapshot(ctx context.Context, transactions []model.Transaction) error
	ClearSnapshot(ctx context.Context) error
}

// CategoryStore persists category entries that the server has not
// confirmed yet.
type CategoryStore interface {
	ListCategoryEntries(ctx context.Context) ([]model.CategoryEntry, error)
	SaveCategoryEntry(ctx context.Context, entry model.CategoryEntry) error
	DeleteCategoryEntry(ctx context.Context, id string) error
}
