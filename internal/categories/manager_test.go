package categories

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/gateway"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/testutil"
)

var errOffline = &common.NetworkError{Op: "test", Err: errors.New("offline")}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return "id" + strconv.Itoa(n)
	}
}

func newTestManager(t *testing.T, opts ...Option) (*Manager, *gateway.MockGateway) {
	t.Helper()
	gw := gateway.NewMockGateway(testutil.Categories(), nil)
	opts = append([]Option{WithIDGenerator(sequentialIDs())}, opts...)
	m := New(gw, opts...)
	require.NoError(t, m.Load(context.Background()))
	return m, gw
}

func states(entries []model.CategoryEntry) map[string]model.SyncState {
	out := make(map[string]model.SyncState, len(entries))
	for _, e := range entries {
		out[e.ID] = e.State
	}
	return out
}

func TestCreate_Confirmed(t *testing.T) {
	m, gw := newTestManager(t)
	gw.CreateCategoryFn = func(_ context.Context, label string) (*model.Category, error) {
		return &model.Category{ID: "9", Label: label}, nil
	}

	entry, err := m.Create(context.Background(), "  Kebun ")
	require.NoError(t, err)

	assert.Equal(t, "9", entry.ID)
	assert.Equal(t, "Kebun", entry.Label)
	assert.Equal(t, model.SyncSynced, entry.State)

	entries := m.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "9", entries[0].ID, "new categories appear first")
	for _, e := range entries {
		assert.False(t, e.IsPlaceholder())
	}
}

func TestCreate_Validation(t *testing.T) {
	m, gw := newTestManager(t)

	_, err := m.Create(context.Background(), "   ")
	assert.True(t, common.IsValidation(err))
	assert.Zero(t, gw.CallCount("CreateCategory"))
	assert.Len(t, m.Entries(), 2)
}

func TestCreate_FailureKeepsUnsyncedPlaceholder(t *testing.T) {
	m, gw := newTestManager(t)
	gw.CreateCategoryFn = func(context.Context, string) (*model.Category, error) {
		return nil, errOffline
	}

	entry, err := m.Create(context.Background(), "Kebun")
	require.Error(t, err)
	assert.True(t, common.IsNetwork(err))

	assert.Equal(t, model.PlaceholderPrefix+"id1", entry.ID)
	assert.Equal(t, model.SyncUnsynced, entry.State)

	entries := m.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, entry.ID, entries[0].ID)
	assert.Equal(t, "Kebun", entries[0].Label)
	assert.Equal(t, 1, m.Unsynced())
}

func TestCreate_UnusableResponseReloads(t *testing.T) {
	m, gw := newTestManager(t)
	gw.CreateCategoryFn = func(_ context.Context, label string) (*model.Category, error) {
		gw.Categories = append(gw.Categories, model.Category{ID: "3", Label: label})
		return nil, nil
	}

	entry, err := m.Create(context.Background(), "Kebun")
	require.NoError(t, err)
	assert.Equal(t, "3", entry.ID)

	assert.Equal(t, 2, gw.CallCount("ListCategories"))
	for _, e := range m.Entries() {
		assert.False(t, e.IsPlaceholder())
		assert.Equal(t, model.SyncSynced, e.State)
	}
}

func TestUpdate(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		m, gw := newTestManager(t)

		require.NoError(t, m.Update(context.Background(), "1", "Rumah Baru"))
		assert.Equal(t, 1, gw.CallCount("UpdateCategory"))
		assert.Equal(t, "Rumah Baru", m.Categories()[0].Label)
		assert.Equal(t, model.SyncSynced, m.Entries()[0].State)
	})

	t.Run("failure keeps local label", func(t *testing.T) {
		m, gw := newTestManager(t)
		gw.UpdateCategoryFn = func(context.Context, string, string) error { return errOffline }

		err := m.Update(context.Background(), "1", "Rumah Baru")
		require.Error(t, err)

		entries := m.Entries()
		assert.Equal(t, "Rumah Baru", entries[0].Label)
		assert.Equal(t, model.SyncUnsynced, entries[0].State)
	})

	t.Run("unknown id", func(t *testing.T) {
		m, _ := newTestManager(t)
		assert.ErrorIs(t, m.Update(context.Background(), "404", "x"), common.ErrNotFound)
	})

	t.Run("placeholder stays local", func(t *testing.T) {
		m, gw := newTestManager(t)
		gw.CreateCategoryFn = func(context.Context, string) (*model.Category, error) { return nil, errOffline }
		entry, _ := m.Create(context.Background(), "Kebun")

		require.NoError(t, m.Update(context.Background(), entry.ID, "Ladang"))
		assert.Zero(t, gw.CallCount("UpdateCategory"))
		assert.Equal(t, "Ladang", m.Entries()[0].Label)
	})
}

func TestDelete(t *testing.T) {
	t.Run("server id", func(t *testing.T) {
		m, gw := newTestManager(t)

		require.NoError(t, m.Delete(context.Background(), "2"))
		assert.Equal(t, 1, gw.CallCount("DeleteCategory"))
		assert.Len(t, m.Entries(), 1)
	})

	t.Run("placeholder never reaches server", func(t *testing.T) {
		m, gw := newTestManager(t)
		gw.CreateCategoryFn = func(context.Context, string) (*model.Category, error) { return nil, errOffline }
		entry, _ := m.Create(context.Background(), "Kebun")

		require.NoError(t, m.Delete(context.Background(), entry.ID))
		assert.Zero(t, gw.CallCount("DeleteCategory"))
		assert.Len(t, m.Entries(), 2)
	})

	t.Run("failure resyncs from server", func(t *testing.T) {
		m, gw := newTestManager(t)
		gw.DeleteCategoryFn = func(context.Context, string) error { return errOffline }

		err := m.Delete(context.Background(), "2")
		require.Error(t, err)
		assert.Equal(t, 2, gw.CallCount("ListCategories"))
		assert.Len(t, m.Entries(), 2, "the server still has the category")
	})
}

func TestSync(t *testing.T) {
	m, gw := newTestManager(t)
	ctx := context.Background()

	gw.CreateCategoryFn = func(context.Context, string) (*model.Category, error) { return nil, errOffline }
	gw.UpdateCategoryFn = func(context.Context, string, string) error { return errOffline }
	_, _ = m.Create(ctx, "Kebun")
	_ = m.Update(ctx, "2", "Kantor Pusat")
	require.Equal(t, 2, m.Unsynced())

	synced, err := m.Sync(ctx)
	assert.Error(t, err)
	assert.Zero(t, synced)
	assert.Equal(t, 2, m.Unsynced())

	gw.CreateCategoryFn = func(_ context.Context, label string) (*model.Category, error) {
		return &model.Category{ID: "7", Label: label}, nil
	}
	gw.UpdateCategoryFn = nil

	synced, err = m.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, synced)
	assert.Zero(t, m.Unsynced())

	got := states(m.Entries())
	assert.Equal(t, model.SyncSynced, got["7"])
	assert.Equal(t, model.SyncSynced, got["2"])
}

func TestLoad_ServerFailureKeepsList(t *testing.T) {
	m, gw := newTestManager(t)
	gw.ListCategoriesFn = func(context.Context) ([]model.Category, error) { return nil, errOffline }

	require.Error(t, m.Load(context.Background()))
	assert.Len(t, m.Entries(), 2)
}

func TestPersistence_SurvivesRestart(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx := context.Background()

	first, gw := newTestManager(t, WithStore(store))
	gw.CreateCategoryFn = func(context.Context, string) (*model.Category, error) { return nil, errOffline }
	gw.UpdateCategoryFn = func(context.Context, string, string) error { return errOffline }

	placeholder, err := first.Create(ctx, "Kebun")
	require.Error(t, err)
	require.Error(t, first.Update(ctx, "1", "Rumah Lama"))

	// A new process sees the same unconfirmed edits.
	second := New(gw, WithStore(store))
	require.NoError(t, second.Load(ctx))

	entries := second.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, placeholder.ID, entries[0].ID)
	assert.Equal(t, model.SyncUnsynced, entries[0].State)
	got := states(entries)
	assert.Equal(t, model.SyncUnsynced, got["1"])
	assert.Equal(t, "Rumah Lama", entries[1].Label)

	gw.CreateCategoryFn = nil
	gw.UpdateCategoryFn = nil
	synced, err := second.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, synced)

	stored, err := store.ListCategoryEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored, "confirmed entries leave the store")
}

func TestLoad_InterruptedRequestsBecomeUnsynced(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCategoryEntry(ctx, model.CategoryEntry{
		Category: model.Category{ID: model.PlaceholderPrefix + "lost", Label: "Kebun"},
		State:    model.SyncPending,
	}))
	require.NoError(t, store.SaveCategoryEntry(ctx, model.CategoryEntry{
		Category: model.Category{ID: "2", Label: "Kantor Pusat"},
		State:    model.SyncPending,
	}))

	m, gw := newTestManager(t, WithStore(store))

	got := states(m.Entries())
	assert.Equal(t, model.SyncUnsynced, got[model.PlaceholderPrefix+"lost"])
	assert.Equal(t, model.SyncUnsynced, got["2"])
	assert.Equal(t, 2, m.Unsynced())

	synced, err := m.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, synced)
	assert.Equal(t, 1, gw.CallCount("CreateCategory"))
	assert.Equal(t, 1, gw.CallCount("UpdateCategory"))

	stored, err := store.ListCategoryEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestLoad_DropsEditsOfDeletedCategories(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCategoryEntry(ctx, model.CategoryEntry{
		Category: model.Category{ID: "99", Label: "Hilang"},
		State:    model.SyncUnsynced,
	}))

	m, _ := newTestManager(t, WithStore(store))
	assert.Len(t, m.Entries(), 2)

	stored, err := store.ListCategoryEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}
