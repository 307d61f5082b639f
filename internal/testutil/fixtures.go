package testutil

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/the-ledger-must-balance/internal/gateway"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

// Amount returns a pointer to v as a decimal, the shape of wire amounts.
func Amount(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// Day returns a date-only stamp for a YYYY-MM-DD string. It panics on a
// malformed date.
func Day(s string) *model.Stamp {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return &model.Stamp{Time: t, DateOnly: true}
}

// Categories returns the standard two-category list.
func Categories() []model.Category {
	return []model.Category{
		{ID: "1", Label: "Rumah"},
		{ID: "2", Label: "Kantor"},
	}
}

// Transactions returns one money-in and one money-out record. The money-in
// record, t1, is the newer one.
func Transactions() []model.Transaction {
	return []model.Transaction{
		{ID: "t1", CategoryID: "1", AmountIn: Amount(5000), CreatedAt: Day("2024-03-01"), Note: "gaji"},
		{ID: "t2", CategoryID: "2", AmountOut: Amount(3000), CreatedAt: Day("2024-02-01")},
	}
}

// Totals returns the server totals matching Transactions.
func Totals() model.Totals {
	return model.Totals{
		In:      decimal.NewFromInt(5000),
		Out:     decimal.NewFromInt(3000),
		Balance: decimal.NewFromInt(2000),
	}
}

// NewGateway returns a mock gateway serving the standard fixtures, with
// totals for every transaction.
func NewGateway() *gateway.MockGateway {
	gw := gateway.NewMockGateway(Categories(), Transactions())
	gw.TotalsByKey[model.FilterAll] = Totals()
	return gw
}
