package history

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/service"
)

// Remote is the part of the gateway the engine reads from.
type Remote interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	Totals(ctx context.Context, filter string) (model.Totals, error)
}

// View is a consistent snapshot of the history state.
type View struct {
	TotalsErr    error
	Filter       string
	FilterLabel  string
	Transactions []model.Transaction
	Categories   []model.Category
	Totals       model.Totals
}

// Entries prepares the view's transactions for display.
func (v View) Entries() []Entry {
	return Entries(v.Transactions, v.Categories)
}

// Engine keeps the sorted transaction list, the category list, the active
// filter and the totals for that filter. Network calls run without the
// lock held.
type Engine struct {
	cache        service.TransactionCache
	remote       Remote
	logger       *slog.Logger
	totalsErr    error
	filter       string
	sorted       []model.Transaction
	categories   []model.Category
	totals       model.Totals
	totalsSerial uint64
	mu           sync.RWMutex
}

// NewEngine creates an engine showing every category.
func NewEngine(cache service.TransactionCache, remote Remote, logger *slog.Logger) *Engine {
	return &Engine{
		cache:  cache,
		remote: remote,
		logger: common.LoggerOrDefault(logger),
		filter: model.FilterAll,
	}
}

// Load fetches categories, transactions and the totals for the active
// filter. A forced load bypasses the transaction cache. Every part is
// attempted; the first error is returned.
func (e *Engine) Load(ctx context.Context, force bool) error {
	catErr := e.ReloadCategories(ctx)
	txErr := e.ReloadTransactions(ctx, force)
	_, totalsErr := e.RefreshTotals(ctx)
	return errors.Join(catErr, txErr, totalsErr)
}

// Refresh reloads everything from the server.
func (e *Engine) Refresh(ctx context.Context) error {
	return e.Load(ctx, true)
}

// ReloadCategories replaces the category list from the server. On failure
// the previous list is kept.
func (e *Engine) ReloadCategories(ctx context.Context) error {
	categories, err := e.remote.ListCategories(ctx)
	if err != nil {
		e.logger.Warn("failed to load categories", "error", err)
		return err
	}
	e.SetCategories(categories)
	return nil
}

// SetCategories replaces the category list used for label resolution.
func (e *Engine) SetCategories(categories []model.Category) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.categories = slices.Clone(categories)
}

// ReloadTransactions reads the transaction list through the cache and
// re-sorts it. On failure the previous list is kept.
func (e *Engine) ReloadTransactions(ctx context.Context, force bool) error {
	txs, err := e.cache.Get(ctx, force)
	if err != nil {
		return err
	}

	sorted := Sort(txs)
	e.mu.Lock()
	e.sorted = sorted
	e.mu.Unlock()
	return nil
}

// SetFilter selects model.FilterAll or a category id and fetches the
// totals scoped to it. Totals are always requested from the server, never
// summed from the filtered list.
func (e *Engine) SetFilter(ctx context.Context, filter string) (model.Totals, error) {
	if filter == "" {
		filter = model.FilterAll
	}

	e.mu.Lock()
	e.filter = filter
	e.mu.Unlock()

	return e.RefreshTotals(ctx)
}

// RefreshTotals fetches the totals for the active filter. On failure the
// totals read as zero and the error is kept in the view. A response for a
// filter that is no longer active is discarded.
func (e *Engine) RefreshTotals(ctx context.Context) (model.Totals, error) {
	e.mu.Lock()
	filter := e.filter
	e.totalsSerial++
	serial := e.totalsSerial
	e.mu.Unlock()

	totals, err := e.remote.Totals(ctx, filter)

	e.mu.Lock()
	defer e.mu.Unlock()
	if serial != e.totalsSerial {
		e.logger.Debug("discarding stale totals", "filter", filter)
		return totals, err
	}
	if err != nil {
		e.logger.Warn("failed to fetch totals", "filter", filter, "error", err)
		e.totals, e.totalsErr = model.Totals{}, err
		return model.Totals{}, err
	}
	e.totals, e.totalsErr = totals, nil
	return totals, nil
}

// Filter returns the active filter.
func (e *Engine) Filter() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.filter
}

// Categories returns a copy of the category list.
func (e *Engine) Categories() []model.Category {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.categories)
}

// View returns the filtered history with its totals.
func (e *Engine) View() View {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return View{
		Filter:       e.filter,
		FilterLabel:  FilterLabel(e.filter, e.categories),
		Transactions: Filter(e.sorted, e.filter),
		Categories:   slices.Clone(e.categories),
		Totals:       e.totals,
		TotalsErr:    e.totalsErr,
	}
}
