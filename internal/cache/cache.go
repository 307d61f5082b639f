// Package cache holds the last full transaction list fetched from the
// gateway so that screens can be rendered without a round trip.
package cache

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/service"
)

// Source fetches the full transaction list.
type Source interface {
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
}

// TransactionCache is a single-slot cache of the transaction list. A held
// list, even an empty one, is served until it is invalidated or a reload is
// forced. A failed fetch never clears a held list.
//
// The lock is not held across the fetch, so two concurrent forced reloads
// both reach the server and the last one to finish wins.
type TransactionCache struct {
	source          Source
	store           service.SnapshotStore
	logger          *slog.Logger
	held            []model.Transaction
	mu              sync.RWMutex
	loaded          bool
	snapshotChecked bool
}

var _ service.TransactionCache = (*TransactionCache)(nil)

// Option configures a TransactionCache.
type Option func(*TransactionCache)

// WithSnapshotStore persists the held list so separate runs can share it.
func WithSnapshotStore(store service.SnapshotStore) Option {
	return func(c *TransactionCache) {
		c.store = store
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *TransactionCache) {
		c.logger = logger
	}
}

// New creates an empty cache over source.
func New(source Source, opts ...Option) *TransactionCache {
	c := &TransactionCache{source: source}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = common.LoggerOrDefault(c.logger)
	return c
}

// Get returns the held list, fetching it when nothing is held or when
// forceReload is set. Callers receive their own copy.
func (c *TransactionCache) Get(ctx context.Context, forceReload bool) ([]model.Transaction, error) {
	if !forceReload {
		if txs, ok := c.cached(ctx); ok {
			return txs, nil
		}
	}

	txs, err := c.source.ListTransactions(ctx)
	if err != nil {
		c.logger.Warn("transaction fetch failed, keeping cached list", "error", err)
		return nil, err
	}

	c.mu.Lock()
	c.held = slices.Clone(txs)
	c.loaded = true
	c.snapshotChecked = true
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.SaveSnapshot(ctx, txs); err != nil {
			c.logger.Warn("failed to persist transaction snapshot", "error", err)
		}
	}

	return slices.Clone(txs), nil
}

// cached returns the held list, loading a persisted snapshot the first time
// nothing is held in memory.
func (c *TransactionCache) cached(ctx context.Context) ([]model.Transaction, bool) {
	c.mu.RLock()
	if c.loaded {
		txs := slices.Clone(c.held)
		c.mu.RUnlock()
		return txs, true
	}
	checked := c.snapshotChecked
	c.mu.RUnlock()

	if c.store == nil || checked {
		return nil, false
	}

	txs, found, err := c.store.LoadSnapshot(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshotChecked = true
	if err != nil {
		c.logger.Warn("failed to load transaction snapshot", "error", err)
		return nil, false
	}
	if !found || c.loaded {
		return nil, false
	}

	c.held = txs
	c.loaded = true
	c.logger.Debug("serving transactions from snapshot", "count", len(txs))
	return slices.Clone(txs), true
}

// Invalidate drops the held list and any persisted snapshot.
func (c *TransactionCache) Invalidate(ctx context.Context) {
	c.mu.Lock()
	c.held = nil
	c.loaded = false
	c.snapshotChecked = true
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.ClearSnapshot(ctx); err != nil {
			c.logger.Warn("failed to clear transaction snapshot", "error", err)
		}
	}
}

// Held reports whether a list is currently held in memory.
func (c *TransactionCache) Held() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}
