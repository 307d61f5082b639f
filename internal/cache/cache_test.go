package cache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/gateway"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

// memorySnapshots is an in-memory SnapshotStore.
type memorySnapshots struct {
	err     error
	txs     []model.Transaction
	saves   int
	clears  int
	loads   int
	present bool
	mu      sync.Mutex
}

func (m *memorySnapshots) LoadSnapshot(_ context.Context) ([]model.Transaction, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.err != nil {
		return nil, false, m.err
	}
	return m.txs, m.present, nil
}

func (m *memorySnapshots) SaveSnapshot(_ context.Context, txs []model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.txs, m.present = txs, true
	return nil
}

func (m *memorySnapshots) ClearSnapshot(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	m.txs, m.present = nil, false
	return nil
}

func sampleTransactions(ids ...string) []model.Transaction {
	txs := make([]model.Transaction, 0, len(ids))
	for _, id := range ids {
		txs = append(txs, model.Transaction{ID: id, CategoryID: "1"})
	}
	return txs
}

func TestGet_ServesHeldListWithoutNetwork(t *testing.T) {
	gw := gateway.NewMockGateway(nil, sampleTransactions("a", "b"))
	c := New(gw)
	ctx := context.Background()

	first, err := c.Get(ctx, false)
	require.NoError(t, err)
	assert.Len(t, first, 2)
	assert.Equal(t, 1, gw.ListTxCalls)

	second, err := c.Get(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, gw.ListTxCalls, "held list must be served from memory")
	assert.True(t, c.Held())
}

func TestGet_ForceReloadFetches(t *testing.T) {
	gw := gateway.NewMockGateway(nil, sampleTransactions("a"))
	c := New(gw)
	ctx := context.Background()

	_, err := c.Get(ctx, false)
	require.NoError(t, err)

	gw.SetTransactions(sampleTransactions("a", "b", "c"))
	txs, err := c.Get(ctx, true)
	require.NoError(t, err)
	assert.Len(t, txs, 3)
	assert.Equal(t, 2, gw.ListTxCalls)
}

func TestGet_EmptyListIsHeld(t *testing.T) {
	gw := gateway.NewMockGateway(nil, nil)
	c := New(gw)
	ctx := context.Background()

	_, err := c.Get(ctx, false)
	require.NoError(t, err)
	_, err = c.Get(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, 1, gw.ListTxCalls)
}

func TestGet_FailureKeepsCache(t *testing.T) {
	gw := gateway.NewMockGateway(nil, sampleTransactions("a", "b"))
	c := New(gw)
	ctx := context.Background()

	_, err := c.Get(ctx, false)
	require.NoError(t, err)

	fetchErr := &common.NetworkError{Op: "list transactions", Err: errors.New("connection refused")}
	gw.ListTransactionsFn = func(context.Context) ([]model.Transaction, error) {
		return nil, fetchErr
	}

	_, err = c.Get(ctx, true)
	require.Error(t, err)
	assert.True(t, common.IsNetwork(err))

	txs, err := c.Get(ctx, false)
	require.NoError(t, err)
	assert.Len(t, txs, 2, "a failed reload must not clear the held list")
}

func TestGet_FailureWithNothingHeld(t *testing.T) {
	gw := gateway.NewMockGateway(nil, nil)
	gw.ListTransactionsFn = func(context.Context) ([]model.Transaction, error) {
		return nil, errors.New("down")
	}
	c := New(gw)

	_, err := c.Get(context.Background(), false)
	require.Error(t, err)
	assert.False(t, c.Held())
}

func TestInvalidate_NextGetFetches(t *testing.T) {
	gw := gateway.NewMockGateway(nil, sampleTransactions("a"))
	c := New(gw)
	ctx := context.Background()

	_, err := c.Get(ctx, false)
	require.NoError(t, err)

	c.Invalidate(ctx)
	assert.False(t, c.Held())

	_, err = c.Get(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, gw.ListTxCalls)
}

func TestGet_ReturnsCopies(t *testing.T) {
	gw := gateway.NewMockGateway(nil, sampleTransactions("a"))
	c := New(gw)
	ctx := context.Background()

	txs, err := c.Get(ctx, false)
	require.NoError(t, err)
	txs[0].ID = "mutated"

	again, err := c.Get(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].ID)
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("served before network", func(t *testing.T) {
		store := &memorySnapshots{txs: sampleTransactions("s1", "s2"), present: true}
		gw := gateway.NewMockGateway(nil, sampleTransactions("live"))
		c := New(gw, WithSnapshotStore(store))

		txs, err := c.Get(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, "s1", txs[0].ID)
		assert.Zero(t, gw.ListTxCalls)
	})

	t.Run("forced reload skips and rewrites snapshot", func(t *testing.T) {
		store := &memorySnapshots{txs: sampleTransactions("s1"), present: true}
		gw := gateway.NewMockGateway(nil, sampleTransactions("live"))
		c := New(gw, WithSnapshotStore(store))

		txs, err := c.Get(ctx, true)
		require.NoError(t, err)
		assert.Equal(t, "live", txs[0].ID)
		assert.Equal(t, 1, store.saves)
		assert.Equal(t, "live", store.txs[0].ID)
	})

	t.Run("load error falls through to network", func(t *testing.T) {
		store := &memorySnapshots{err: errors.New("corrupt")}
		gw := gateway.NewMockGateway(nil, sampleTransactions("live"))
		c := New(gw, WithSnapshotStore(store))

		txs, err := c.Get(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, "live", txs[0].ID)
		assert.Equal(t, 1, gw.ListTxCalls)
	})

	t.Run("invalidate clears snapshot", func(t *testing.T) {
		store := &memorySnapshots{txs: sampleTransactions("s1"), present: true}
		gw := gateway.NewMockGateway(nil, sampleTransactions("live"))
		c := New(gw, WithSnapshotStore(store))

		_, err := c.Get(ctx, false)
		require.NoError(t, err)
		c.Invalidate(ctx)
		assert.Equal(t, 1, store.clears)
		assert.False(t, store.present)

		txs, err := c.Get(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, "live", txs[0].ID)
		assert.Equal(t, 1, store.loads, "snapshot is consulted only once")
	})
}
