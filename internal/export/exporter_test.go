package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

var exportTime = time.UnixMilli(1700000000000)

func newTestExporter(t *testing.T, opts ...Option) (*Exporter, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "exports")
	opts = append([]Option{WithClock(func() time.Time { return exportTime })}, opts...)
	e, err := NewExporter(Config{Dir: dir}, opts...)
	require.NoError(t, err)
	return e, dir
}

func sampleRequest() Request {
	return Request{
		FilterKey:    model.FilterAll,
		FilterLabel:  "All",
		Transactions: sampleTransactions(),
		Categories:   sampleCategories,
		Totals:       model.Totals{In: decimal.NewFromInt(5000), Out: decimal.NewFromInt(4000), Balance: decimal.NewFromInt(1000)},
	}
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}

// readRows re-reads a workbook the way a spreadsheet user sees it.
func readRows(t *testing.T, data []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return rows
}

func TestExport_NothingToExport(t *testing.T) {
	writer := &MockWriter{}
	e, dir := newTestExporter(t, WithWriters(writer, writer))

	_, err := e.Export(context.Background(), Request{FilterKey: model.FilterAll})

	var exportErr *common.ExportError
	require.ErrorAs(t, err, &exportErr)
	assert.ErrorIs(t, err, common.ErrNothingToExport)
	assert.Equal(t, "Nothing to export", common.Describe(err))
	assert.Zero(t, writer.Calls())
	assert.Empty(t, dirEntries(t, dir))
}

func TestExport_PrimaryWriter(t *testing.T) {
	e, dir := newTestExporter(t)

	outcome, err := e.Export(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, "excelize", outcome.Writer)
	assert.Equal(t, filepath.Join(dir, "ACC_export_all_1700000000000.xlsx"), outcome.Path)
	assert.Equal(t, 3, outcome.Rows)
	assert.Equal(t, SharedViaPath, outcome.SharedVia)
	require.NotNil(t, outcome.Unshared())
	assert.Equal(t, outcome.Path, outcome.Unshared().Path)
	assert.Equal(t, []string{"ACC_export_all_1700000000000.xlsx"}, dirEntries(t, dir))

	data, err := os.ReadFile(outcome.Path)
	require.NoError(t, err)
	rows := readRows(t, data)

	require.Len(t, rows, 7)
	assert.Equal(t, []string{"Laporan Keuangan - All"}, rows[0])
	assert.Equal(t, Headers[:], rows[1])
	assert.Equal(t, []string{BalanceLabel, "", "1000"}, rows[2])
	assert.Equal(t, []string{TotalLabel, "", "5000", "", "", "4000"}, rows[3])
	assert.Equal(t, []string{"2024-03-01", "gaji", "5000"}, rows[4])
	assert.Equal(t, []string{"", "", "", "2024-02-01", "Kantor", "3000"}, rows[5])
}

func TestExport_WritersProduceSameRows(t *testing.T) {
	doc := NewDocument(BuildRows(sampleTransactions(), sampleCategories), sampleRequest().Totals, "All")

	var styled, plain bytes.Buffer
	require.NoError(t, ExcelizeWriter{}.Write(&styled, doc))
	require.NoError(t, PlainWriter{}.Write(&plain, doc))

	assert.Equal(t, readRows(t, styled.Bytes()), readRows(t, plain.Bytes()))
}

func TestExport_FallbackOnPrimaryFailure(t *testing.T) {
	tests := []struct {
		name    string
		primary *MockWriter
	}{
		{
			name: "error",
			primary: &MockWriter{WriterID: "broken", Fn: func(io.Writer, Document) error {
				return errors.New("style table corrupt")
			}},
		},
		{
			name: "panic",
			primary: &MockWriter{WriterID: "panicky", Fn: func(io.Writer, Document) error {
				panic("nil map")
			}},
		},
		{
			name: "empty output",
			primary: &MockWriter{WriterID: "silent", Fn: func(io.Writer, Document) error {
				return nil
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestExporter(t, WithWriters(tt.primary, PlainWriter{}))

			outcome, err := e.Export(context.Background(), sampleRequest())
			require.NoError(t, err)
			assert.Equal(t, "xlsx", outcome.Writer)
			assert.Equal(t, 1, tt.primary.Calls())

			data, err := os.ReadFile(outcome.Path)
			require.NoError(t, err)

			var reference bytes.Buffer
			doc := NewDocument(BuildRows(sampleTransactions(), sampleCategories), sampleRequest().Totals, "All")
			require.NoError(t, ExcelizeWriter{}.Write(&reference, doc))

			got := readRows(t, data)
			assert.Equal(t, Headers[:], got[1])
			assert.Equal(t, readRows(t, reference.Bytes()), got)
		})
	}
}

func TestExport_BothWritersFail(t *testing.T) {
	failing := func(id string) *MockWriter {
		return &MockWriter{WriterID: id, Fn: func(w io.Writer, _ Document) error {
			_, _ = io.WriteString(w, "partial")
			return errors.New(id + " failed")
		}}
	}
	e, dir := newTestExporter(t, WithWriters(failing("a"), failing("b")))

	_, err := e.Export(context.Background(), sampleRequest())

	var exportErr *common.ExportError
	require.ErrorAs(t, err, &exportErr)
	assert.Equal(t, "write", exportErr.Stage)
	assert.ErrorContains(t, err, "a failed")
	assert.ErrorContains(t, err, "b failed")
	assert.Empty(t, dirEntries(t, dir), "no partial file may be left behind")
}

func TestExport_ShareChain(t *testing.T) {
	tests := []struct {
		name     string
		sharers  []*MockSharer
		wantVia  string
		wantLink string
		wantHits []int
	}{
		{
			name: "native succeeds",
			sharers: []*MockSharer{
				{SharerID: "drive", Link: "https://drive.example/file"},
				{SharerID: "open"},
			},
			wantVia:  "drive",
			wantLink: "https://drive.example/file",
			wantHits: []int{1, 0},
		},
		{
			name: "native unavailable, generic succeeds",
			sharers: []*MockSharer{
				{SharerID: "drive", Err: ErrShareUnavailable},
				{SharerID: "open"},
			},
			wantVia:  "open",
			wantHits: []int{1, 1},
		},
		{
			name: "every layer fails",
			sharers: []*MockSharer{
				{SharerID: "drive", Err: errors.New("quota")},
				{SharerID: "open", Err: errors.New("no display")},
			},
			wantVia:  SharedViaPath,
			wantHits: []int{1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sharers := make([]Sharer, len(tt.sharers))
			for i, s := range tt.sharers {
				sharers[i] = s
			}
			e, _ := newTestExporter(t, WithSharers(sharers...))

			outcome, err := e.Export(context.Background(), sampleRequest())
			require.NoError(t, err, "share failures never fail the export")

			assert.Equal(t, tt.wantVia, outcome.SharedVia)
			assert.Equal(t, tt.wantLink, outcome.Link)
			for i, s := range tt.sharers {
				assert.Len(t, s.Paths, tt.wantHits[i], s.SharerID)
				if tt.wantHits[i] > 0 {
					assert.Equal(t, outcome.Path, s.Paths[0])
				}
			}
			_, statErr := os.Stat(outcome.Path)
			assert.NoError(t, statErr)
		})
	}
}

func TestNewExporter_RequiresDir(t *testing.T) {
	_, err := NewExporter(Config{})
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}
