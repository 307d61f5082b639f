package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction says whether money came in or went out.
type Direction string

const (
	// DirectionIn is money received ("uang masuk").
	DirectionIn Direction = "in"
	// DirectionOut is money spent ("uang keluar").
	DirectionOut Direction = "out"
)

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == DirectionIn {
		return DirectionOut
	}
	return DirectionIn
}

// Stamp is a point in time as reported by the API. DateOnly records that the
// source value carried no time-of-day component.
type Stamp struct {
	Time     time.Time `json:"time"`
	DateOnly bool      `json:"date_only,omitempty"`
}

// Day truncates the stamp to its calendar date in the stamp's location.
func (s Stamp) Day() time.Time {
	y, m, d := s.Time.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.Time.Location())
}

// Transaction is the canonical shape of one money-in or money-out event.
// Every legacy wire shape is mapped into it at the gateway boundary.
type Transaction struct {
	CreatedAt     *Stamp           `json:"created_at,omitempty"`
	InAt          *Stamp           `json:"in_at,omitempty"`
	OutAt         *Stamp           `json:"out_at,omitempty"`
	Date          *Stamp           `json:"date,omitempty"`
	AmountIn      *decimal.Decimal `json:"amount_in,omitempty"`
	AmountOut     *decimal.Decimal `json:"amount_out,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"` // legacy generic amount
	ID            string           `json:"id"`
	CategoryID    string           `json:"category_id,omitempty"`
	CategoryLabel string           `json:"category_label,omitempty"` // server-provided label
	Note          string           `json:"note,omitempty"`
}

func valueOf(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// In returns the money-in amount, zero when absent.
func (t Transaction) In() decimal.Decimal { return valueOf(t.AmountIn) }

// Out returns the money-out amount, zero when absent.
func (t Transaction) Out() decimal.Decimal { return valueOf(t.AmountOut) }

// Direction classifies the transaction. A positive in-amount wins; anything
// else is treated as outgoing.
func (t Transaction) Direction() Direction {
	if t.In().IsPositive() {
		return DirectionIn
	}
	return DirectionOut
}

// DisplayAmount is the amount shown next to the transaction: the in-amount
// for incoming records, otherwise the out-amount, falling back to the legacy
// generic amount.
func (t Transaction) DisplayAmount() decimal.Decimal {
	if t.Direction() == DirectionIn {
		return t.In()
	}
	if out := t.Out(); out.IsPositive() {
		return out
	}
	return valueOf(t.Amount)
}

// SortTime is the instant used to order the history: the creation stamp,
// then the generic date, then the Unix epoch.
func (t Transaction) SortTime() time.Time {
	switch {
	case t.CreatedAt != nil:
		return t.CreatedAt.Time
	case t.Date != nil:
		return t.Date.Time
	default:
		return time.Unix(0, 0).UTC()
	}
}

// DisplayStamp is the stamp shown in lists: creation, in date, out date,
// generic date. It returns nil when none is present.
func (t Transaction) DisplayStamp() *Stamp {
	for _, s := range []*Stamp{t.CreatedAt, t.InAt, t.OutAt, t.Date} {
		if s != nil {
			return s
		}
	}
	return nil
}

// SideStamp returns the date recorded for the given side, or nil.
func (t Transaction) SideStamp(dir Direction) *Stamp {
	if dir == DirectionIn {
		return t.InAt
	}
	return t.OutAt
}

// EditStamp is the date loaded into the edit form: the date of the
// transaction's own side, then the generic date, then the creation stamp.
func (t Transaction) EditStamp() *Stamp {
	for _, s := range []*Stamp{t.SideStamp(t.Direction()), t.Date, t.CreatedAt} {
		if s != nil {
			return s
		}
	}
	return nil
}

// TransactionDraft is the write payload for creating or updating a
// transaction. Exactly one side is populated, chosen by Direction.
type TransactionDraft struct {
	At         Stamp
	Amount     decimal.Decimal
	Direction  Direction
	CategoryID string
	Note       string
}
