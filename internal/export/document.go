// Package export renders the filtered transaction history as an .xlsx
// ledger and hands the file to a share target.
package export

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/the-ledger-must-balance/internal/history"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

// Ledger text. The tracker's users keep their books in Indonesian.
const (
	SheetName    = "Ledger"
	TitlePrefix  = "Laporan Keuangan - "
	BalanceLabel = "Saldo Saat Ini"
	TotalLabel   = "Total"
)

// Headers are the six ledger columns, money in on the left and money out
// on the right.
var Headers = [6]string{
	"Tanggal Masuk", "Keterangan Masuk", "Uang Masuk",
	"Tanggal Keluar", "Keterangan Keluar", "Uang Keluar",
}

// Sheet layout, 1-based rows.
const (
	TitleRow   = 1
	HeaderRow  = 2
	SummaryRow = 3
	TotalsRow  = 4
	FirstData  = 5
	Columns    = len(Headers)
)

// Side is one half of a ledger row.
type Side struct {
	Date        string
	Description string
	Amount      decimal.Decimal
	Present     bool
}

// Row is one transaction laid out across both ledger halves.
type Row struct {
	In  Side
	Out Side
}

// BuildRows derives ledger rows. Each half is computed on its own, so a
// malformed record with both amounts positive fills both halves. A record
// with only the legacy generic amount is booked as money out.
func BuildRows(transactions []model.Transaction, categories []model.Category) []Row {
	rows := make([]Row, 0, len(transactions))
	for _, t := range transactions {
		description := t.Note
		if description == "" {
			description = history.Label(t, categories)
		}

		in, out := t.In(), t.Out()
		if !in.IsPositive() && !out.IsPositive() && t.Amount != nil {
			out = *t.Amount
		}

		var row Row
		if in.IsPositive() {
			row.In = Side{
				Date:        sideDate(t, model.DirectionIn),
				Description: description,
				Amount:      in,
				Present:     true,
			}
		}
		if out.IsPositive() {
			row.Out = Side{
				Date:        sideDate(t, model.DirectionOut),
				Description: description,
				Amount:      out,
				Present:     true,
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// sideDate formats the date of one side, falling back to the creation and
// generic dates.
func sideDate(t model.Transaction, dir model.Direction) string {
	for _, s := range []*model.Stamp{t.SideStamp(dir), t.CreatedAt, t.Date} {
		if s == nil {
			continue
		}
		if s.DateOnly {
			return s.Time.Format(time.DateOnly)
		}
		return s.Time.Local().Format(time.DateOnly)
	}
	return ""
}

// Document is the full ledger ready for a writer.
type Document struct {
	Title    string
	Rows     []Row
	Balance  decimal.Decimal
	TotalIn  decimal.Decimal
	TotalOut decimal.Decimal
}

// NewDocument assembles the ledger. The balance comes from the server
// totals; the totals row sums the rows being exported.
func NewDocument(rows []Row, totals model.Totals, filterLabel string) Document {
	doc := Document{
		Title:   TitlePrefix + filterLabel,
		Rows:    rows,
		Balance: totals.Balance,
	}
	for _, r := range rows {
		if r.In.Present {
			doc.TotalIn = doc.TotalIn.Add(r.In.Amount)
		}
		if r.Out.Present {
			doc.TotalOut = doc.TotalOut.Add(r.Out.Amount)
		}
	}
	return doc
}

// Cell is a single value in the sheet grid: nil, a string or a float64.
type Cell any

func amountCell(d decimal.Decimal) Cell {
	return d.InexactFloat64()
}

func sideCells(s Side) []Cell {
	if !s.Present {
		return []Cell{nil, nil, nil}
	}
	return []Cell{s.Date, s.Description, amountCell(s.Amount)}
}

// Grid returns the sheet's cell values row by row, six cells per row. Both
// writers lay out exactly this grid.
func (d Document) Grid() [][]Cell {
	grid := make([][]Cell, 0, FirstData-1+len(d.Rows))

	title := make([]Cell, Columns)
	title[0] = d.Title
	grid = append(grid, title)

	header := make([]Cell, Columns)
	for i, h := range Headers {
		header[i] = h
	}
	grid = append(grid, header)

	grid = append(grid, []Cell{BalanceLabel, nil, amountCell(d.Balance), nil, nil, nil})
	grid = append(grid, []Cell{TotalLabel, nil, amountCell(d.TotalIn), nil, nil, amountCell(d.TotalOut)})

	for _, r := range d.Rows {
		grid = append(grid, append(sideCells(r.In), sideCells(r.Out)...))
	}
	return grid
}
