package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return client
}

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr error
	}{
		{name: "missing", baseURL: "", wantErr: common.ErrMissingConfig},
		{name: "bad scheme", baseURL: "ftp://example.com", wantErr: common.ErrInvalidConfig},
		{name: "valid", baseURL: "https://api.example.com/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(Config{BaseURL: tt.baseURL})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestListTransactions_NormalizesLegacyShapes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/acc", r.URL.Path)
		_, _ = io.WriteString(w, `{"data":[
			{"id": 7, "uang_masuk": "5000.00", "uang_keluar": null, "tanggal_uang_masuk": "2024-03-01T10:00:00Z",
			 "tipe_keuangan": 2, "keterangan": "gaji", "created_at": "2024-03-01T10:00:00.000Z"},
			{"_id": "abc", "uang_keluar": 3000, "tipe": "5", "tanggal": "2024-02-01"},
			{"id": "x", "jumlah": 1000, "proyek": "9"},
			{"id": "y", "jumlah": "750", "jenis": "masuk"}
		]}`)
	})

	txs, err := client.ListTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 4)

	first := txs[0]
	assert.Equal(t, "7", first.ID)
	assert.Equal(t, "2", first.CategoryID)
	assert.Equal(t, "gaji", first.Note)
	assert.Equal(t, model.DirectionIn, first.Direction())
	assert.True(t, first.In().Equal(decimal.NewFromInt(5000)))
	require.NotNil(t, first.InAt)
	assert.False(t, first.InAt.DateOnly)
	assert.Nil(t, first.AmountOut)

	second := txs[1]
	assert.Equal(t, "abc", second.ID)
	assert.Equal(t, "5", second.CategoryID)
	assert.Equal(t, model.DirectionOut, second.Direction())
	require.NotNil(t, second.Date)
	assert.True(t, second.Date.DateOnly)

	third := txs[2]
	assert.Equal(t, "9", third.CategoryID)
	assert.True(t, third.DisplayAmount().Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, model.DirectionOut, third.Direction())

	// A generic amount books as money out whatever else the record says.
	generic := txs[3]
	assert.Equal(t, model.DirectionOut, generic.Direction())
	assert.True(t, generic.DisplayAmount().Equal(decimal.NewFromInt(750)))
	assert.Nil(t, generic.AmountIn)
}

func TestCreateTransaction_PayloadShape(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})

	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	err := client.CreateTransaction(context.Background(), model.TransactionDraft{
		Direction:  model.DirectionOut,
		Amount:     decimal.RequireFromString("2500.5"),
		At:         model.Stamp{Time: at},
		CategoryID: "3",
	})
	require.NoError(t, err)

	assert.Nil(t, got["uang_masuk"])
	assert.Nil(t, got["tanggal_uang_masuk"])
	assert.Equal(t, 2500.5, got["uang_keluar"])
	assert.Equal(t, "2024-05-06T07:08:09Z", got["tanggal_uang_keluar"])
	assert.Equal(t, "3", got["tipe_keuangan"])
	assert.Contains(t, got, "keterangan")
	assert.Nil(t, got["keterangan"])
}

func TestUpdateTransaction_DateOnlyAndEscaping(t *testing.T) {
	var (
		path string
		got  map[string]any
	)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	})

	err := client.UpdateTransaction(context.Background(), "a/b", model.TransactionDraft{
		Direction:  model.DirectionIn,
		Amount:     decimal.NewFromInt(10),
		At:         model.Stamp{Time: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), DateOnly: true},
		CategoryID: "1",
		Note:       "  fix  ",
	})
	require.NoError(t, err)

	assert.Equal(t, "/acc/a%2Fb", path)
	assert.Equal(t, "2024-01-02", got["tanggal_uang_masuk"])
	assert.Equal(t, "fix", got["keterangan"])
}

func TestTotals_ScopedPath(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = io.WriteString(w, `{"data":{"total_masuk":"10000","total_keluar":2500,"balance":7500}}`)
	})

	all, err := client.Totals(context.Background(), model.FilterAll)
	require.NoError(t, err)
	assert.True(t, all.Balance.Equal(decimal.NewFromInt(7500)))
	assert.True(t, all.In.Equal(decimal.NewFromInt(10000)))

	_, err = client.Totals(context.Background(), "4")
	require.NoError(t, err)

	assert.Equal(t, []string{"/acc/totals", "/acc/totals/4"}, paths)
}

func TestCreateCategory_ResponseShapes(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantID string
	}{
		{name: "data object", body: `{"data":{"id":5,"tipe":"Kebun"}}`, wantID: "5"},
		{name: "data array", body: `{"data":[{"id":"6","tipe":"Kebun"}]}`, wantID: "6"},
		{name: "bare object", body: `{"id":7,"tipe":"Kebun"}`, wantID: "7"},
		{name: "unusable", body: `{"message":"ok"}`},
		{name: "empty", body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				var payload map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
				assert.Equal(t, "Kebun", payload["tipe"])
				_, _ = io.WriteString(w, tt.body)
			})

			cat, err := client.CreateCategory(context.Background(), "Kebun")
			require.NoError(t, err)
			if tt.wantID == "" {
				assert.Nil(t, cat)
				return
			}
			require.NotNil(t, cat)
			assert.Equal(t, tt.wantID, cat.ID)
			assert.Equal(t, "Kebun", cat.Label)
		})
	}
}

func TestListCategories_BareArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"tipe":"Rumah"},{"id":2,"name":"Kantor"}]`)
	})

	cats, err := client.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Category{{ID: "1", Label: "Rumah"}, {ID: "2", Label: "Kantor"}}, cats)
}

func TestClient_ErrorsAreNetworkErrors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})

		_, err := client.ListTransactions(context.Background())
		require.Error(t, err)
		assert.True(t, common.IsNetwork(err))

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	})

	t.Run("not found", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		err := client.DeleteTransaction(context.Background(), "1")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		t.Cleanup(func() {
			close(release)
			srv.Close()
		})

		client, err := NewClient(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond})
		require.NoError(t, err)

		_, err = client.Totals(context.Background(), model.FilterAll)
		var netErr *common.NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.True(t, netErr.Timeout())
	})
}

func TestParseStamp(t *testing.T) {
	tests := []struct {
		value    string
		wantOK   bool
		dateOnly bool
	}{
		{value: "2024-01-01", wantOK: true, dateOnly: true},
		{value: "2024-01-01T10:00:00Z", wantOK: true},
		{value: "2024-01-01 10:00:00", wantOK: true},
		{value: "1704103200000", wantOK: true},
		{value: "1704103200", wantOK: true},
		{value: "kemarin", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			s, ok := parseStamp(tt.value)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.dateOnly, s.DateOnly)
				assert.Equal(t, 2024, s.Time.Year())
			}
		})
	}
}
