package gateway

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/money"
)

// flex holds a JSON scalar that may arrive as a string or a number.
// Other JSON types leave it unset rather than failing the whole record.
type flex struct {
	value string
	set   bool
}

func (f *flex) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f.value, f.set = s, true
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return nil
	}
	f.value, f.set = n.String(), true
	return nil
}

func (f flex) present() bool {
	return f.set && strings.TrimSpace(f.value) != ""
}

// first returns the first present value.
func first(candidates ...flex) (string, bool) {
	for _, c := range candidates {
		if c.present() {
			return strings.TrimSpace(c.value), true
		}
	}
	return "", false
}

func (f flex) amount() *decimal.Decimal {
	if !f.present() {
		return nil
	}
	d := money.Loose(f.value)
	return &d
}

func (f flex) stamp() *model.Stamp {
	if !f.present() {
		return nil
	}
	s, ok := parseStamp(strings.TrimSpace(f.value))
	if !ok {
		slog.Debug("ignoring unparsable date", "value", f.value)
		return nil
	}
	return &s
}

var stampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// parseStamp accepts the date shapes the API has produced over time:
// RFC 3339 timestamps, zone-less timestamps, bare dates and Unix epochs.
func parseStamp(value string) (model.Stamp, bool) {
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return model.Stamp{Time: t, DateOnly: true}, true
	}
	for _, layout := range stampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return model.Stamp{Time: t}, true
		}
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		// Twelve or more digits cannot be seconds for any plausible date.
		if len(value) >= 12 {
			return model.Stamp{Time: time.UnixMilli(n).UTC()}, true
		}
		return model.Stamp{Time: time.Unix(n, 0).UTC()}, true
	}
	return model.Stamp{}, false
}

// wireTransaction accepts every historical shape of a transaction record.
type wireTransaction struct {
	ID         flex `json:"id"`
	LegacyID   flex `json:"_id"`
	AmountIn   flex `json:"uang_masuk"`
	AmountOut  flex `json:"uang_keluar"`
	Amount     flex `json:"jumlah"`
	InDate     flex `json:"tanggal_uang_masuk"`
	OutDate    flex `json:"tanggal_uang_keluar"`
	Date       flex `json:"tanggal"`
	CreatedAt  flex `json:"created_at"`
	Category   flex `json:"tipe_keuangan"`
	LegacyType flex `json:"tipe"`
	Project    flex `json:"proyek"`
	Label      flex `json:"tipe_label"`
	Note       flex `json:"keterangan"`
}

// normalize maps a wire record into the canonical transaction.
func (w wireTransaction) normalize() model.Transaction {
	id, _ := first(w.ID, w.LegacyID)
	category, _ := first(w.Category, w.LegacyType, w.Project)
	label, _ := first(w.Label)
	note, _ := first(w.Note)

	return model.Transaction{
		ID:            id,
		AmountIn:      w.AmountIn.amount(),
		AmountOut:     w.AmountOut.amount(),
		Amount:        w.Amount.amount(),
		InAt:          w.InDate.stamp(),
		OutAt:         w.OutDate.stamp(),
		Date:          w.Date.stamp(),
		CreatedAt:     w.CreatedAt.stamp(),
		CategoryID:    category,
		CategoryLabel: label,
		Note:          note,
	}
}

type wireCategory struct {
	ID    flex `json:"id"`
	Label flex `json:"tipe"`
	Name  flex `json:"name"`
}

func (w wireCategory) normalize() (model.Category, bool) {
	id, ok := first(w.ID)
	label, hasLabel := first(w.Label, w.Name)
	if !ok && !hasLabel {
		return model.Category{}, false
	}
	return model.Category{ID: id, Label: label}, true
}

type wireTotals struct {
	In      flex `json:"total_masuk"`
	Out     flex `json:"total_keluar"`
	Balance flex `json:"balance"`
}

func (w wireTotals) normalize() model.Totals {
	return model.Totals{
		In:      money.Loose(w.In.value),
		Out:     money.Loose(w.Out.value),
		Balance: money.Loose(w.Balance.value),
	}
}

// envelope is the `{ "data": ... }` wrapper used by every endpoint.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// unwrap returns the payload inside a data envelope, or the body itself
// when the server answered without one.
func unwrap(body []byte) []byte {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return body
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return body
	}
	return env.Data
}

type categoryPayload struct {
	Label string `json:"tipe"`
}

// transactionPayload is the write body. Nil pointers encode as explicit
// nulls for the side that is not populated.
type transactionPayload struct {
	AmountIn  *json.Number `json:"uang_masuk"`
	AmountOut *json.Number `json:"uang_keluar"`
	InDate    *string      `json:"tanggal_uang_masuk"`
	OutDate   *string      `json:"tanggal_uang_keluar"`
	Note      *string      `json:"keterangan"`
	Category  string       `json:"tipe_keuangan"`
}

func encodeStamp(s model.Stamp) string {
	if s.DateOnly {
		return s.Time.Format(time.DateOnly)
	}
	return s.Time.UTC().Format(time.RFC3339)
}

func newTransactionPayload(d model.TransactionDraft) transactionPayload {
	amount := json.Number(d.Amount.String())
	date := encodeStamp(d.At)

	p := transactionPayload{Category: d.CategoryID}
	if d.Direction == model.DirectionIn {
		p.AmountIn, p.InDate = &amount, &date
	} else {
		p.AmountOut, p.OutDate = &amount, &date
	}
	if note := strings.TrimSpace(d.Note); note != "" {
		p.Note = &note
	}
	return p
}
