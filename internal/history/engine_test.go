package history

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-ledger-must-balance/internal/cache"
	"github.com/Veraticus/the-ledger-must-balance/internal/gateway"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

func newTestEngine(t *testing.T) (*Engine, *gateway.MockGateway) {
	t.Helper()

	gw := gateway.NewMockGateway(
		[]model.Category{{ID: "1", Label: "Rumah"}, {ID: "2", Label: "Kantor"}},
		[]model.Transaction{
			dated("a", "2024-01-01"),
			dated("b", "2024-03-01"),
			dated("c", "2024-02-01"),
		},
	)
	gw.Transactions[0].CategoryID = "1"
	gw.Transactions[1].CategoryID = "2"
	gw.Transactions[2].CategoryID = "1"

	gw.TotalsByKey[model.FilterAll] = model.Totals{In: decimal.NewFromInt(300), Balance: decimal.NewFromInt(300)}
	gw.TotalsByKey["1"] = model.Totals{In: decimal.NewFromInt(100), Balance: decimal.NewFromInt(100)}

	return NewEngine(cache.New(gw), gw, nil), gw
}

func TestEngine_Load(t *testing.T) {
	engine, gw := newTestEngine(t)

	require.NoError(t, engine.Load(context.Background(), false))

	view := engine.View()
	assert.Equal(t, model.FilterAll, view.Filter)
	assert.Equal(t, AllLabel, view.FilterLabel)
	assert.Equal(t, []string{"b", "c", "a"}, ids(view.Transactions))
	assert.Len(t, view.Categories, 2)
	assert.True(t, view.Totals.In.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, []string{model.FilterAll}, gw.TotalsCalls)
}

func TestEngine_SetFilterFetchesScopedTotals(t *testing.T) {
	engine, gw := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, engine.Load(ctx, false))

	totals, err := engine.SetFilter(ctx, "1")
	require.NoError(t, err)
	assert.True(t, totals.In.Equal(decimal.NewFromInt(100)))

	view := engine.View()
	assert.Equal(t, []string{"c", "a"}, ids(view.Transactions))
	assert.Equal(t, "Rumah", view.FilterLabel)

	// The totals come from the server even when they disagree with the
	// filtered rows.
	assert.True(t, view.Totals.In.Equal(decimal.NewFromInt(100)))

	_, err = engine.SetFilter(ctx, "2")
	require.NoError(t, err)
	_, err = engine.SetFilter(ctx, model.FilterAll)
	require.NoError(t, err)

	assert.Equal(t, []string{model.FilterAll, "1", "2", model.FilterAll}, gw.TotalsCalls)
	assert.Equal(t, 1, gw.ListTxCalls, "changing the filter must not refetch transactions")
}

func TestEngine_TotalsFailureShowsZero(t *testing.T) {
	engine, gw := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, engine.Load(ctx, false))

	gw.TotalsFn = func(context.Context, string) (model.Totals, error) {
		return model.Totals{}, errors.New("timeout")
	}

	_, err := engine.SetFilter(ctx, "1")
	require.Error(t, err)

	view := engine.View()
	assert.True(t, view.Totals.In.IsZero())
	assert.True(t, view.Totals.Balance.IsZero())
	assert.Error(t, view.TotalsErr)
	assert.Len(t, view.Transactions, 2, "rows still render when totals fail")
}

func TestEngine_LoadKeepsPreviousStateOnFailure(t *testing.T) {
	engine, gw := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, engine.Load(ctx, false))

	gw.ListCategoriesFn = func(context.Context) ([]model.Category, error) {
		return nil, errors.New("down")
	}
	gw.ListTransactionsFn = func(context.Context) ([]model.Transaction, error) {
		return nil, errors.New("down")
	}

	err := engine.Refresh(ctx)
	require.Error(t, err)

	view := engine.View()
	assert.Len(t, view.Categories, 2)
	assert.Len(t, view.Transactions, 3)
}

func TestEngine_RefreshBypassesCache(t *testing.T) {
	engine, gw := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, engine.Load(ctx, false))

	gw.SetTransactions([]model.Transaction{dated("z", "2025-01-01")})
	require.NoError(t, engine.Refresh(ctx))

	assert.Equal(t, []string{"z"}, ids(engine.View().Transactions))
	assert.Equal(t, 2, gw.ListCatCalls)
}
