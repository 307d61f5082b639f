package model

import "github.com/shopspring/decimal"

// Totals is the server-computed aggregate for all categories or for one.
// It is never derived client-side.
type Totals struct {
	In      decimal.Decimal `json:"total_in"`
	Out     decimal.Decimal `json:"total_out"`
	Balance decimal.Decimal `json:"balance"`
}
