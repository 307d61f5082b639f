// Package main runs the ledger browser against generated in-memory data.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/the-ledger-must-balance/internal/cache"
	"github.com/Veraticus/the-ledger-must-balance/internal/editor"
	"github.com/Veraticus/the-ledger-must-balance/internal/export"
	"github.com/Veraticus/the-ledger-must-balance/internal/gateway"
	"github.com/Veraticus/the-ledger-must-balance/internal/history"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/money"
	"github.com/Veraticus/the-ledger-must-balance/internal/tui"
	"github.com/Veraticus/the-ledger-must-balance/internal/tui/themes"
)

var notes = []string{
	"Gaji bulanan",
	"Belanja pasar",
	"Listrik PLN",
	"Bensin",
	"Makan siang",
	"Pulsa",
	"Servis motor",
	"Honor proyek",
	"Sewa kantor",
	"",
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Logs would draw over the alternate screen.
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	gw := demoGateway(100)
	txCache := cache.New(gw)
	engine := history.NewEngine(txCache, gw, nil)

	dir, err := os.MkdirTemp("", "ledger-demo-")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error creating export dir: %v\n", err)
		os.Exit(1)
	}
	exporter, err := export.NewExporter(export.Config{Dir: dir})
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error creating exporter: %v\n", err)
		os.Exit(1)
	}

	err = tui.Run(ctx, tui.Deps{
		History:   engine,
		Exporter:  exporter,
		Formatter: money.NewFormatter("id", "Rp"),
		Theme:     themes.Default,
		NewEditor: func(n *tui.Notices) *editor.Editor {
			return editor.New(gw, txCache, engine, editor.WithNotifier(n))
		},
	})
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// demoLedger is the server-side list behind the demo gateway. Writes are
// applied to it so the browser reflects them after a refresh.
type demoLedger struct {
	transactions []model.Transaction
	mu           sync.Mutex
}

func (l *demoLedger) list(context.Context) ([]model.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.transactions), nil
}

func (l *demoLedger) totals(_ context.Context, filter string) (model.Totals, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var totals model.Totals
	for _, tx := range history.Filter(l.transactions, filter) {
		totals.In = totals.In.Add(tx.In())
		totals.Out = totals.Out.Add(tx.Out())
	}
	totals.Balance = totals.In.Sub(totals.Out)
	return totals, nil
}

func (l *demoLedger) create(_ context.Context, draft model.TransactionDraft) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transactions = append(l.transactions, draftTransaction(strconv.Itoa(len(l.transactions)+1), draft))
	return nil
}

func (l *demoLedger) update(_ context.Context, id string, draft model.TransactionDraft) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, tx := range l.transactions {
		if tx.ID == id {
			l.transactions[i] = draftTransaction(id, draft)
		}
	}
	return nil
}

func (l *demoLedger) remove(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transactions = slices.DeleteFunc(l.transactions, func(tx model.Transaction) bool {
		return tx.ID == id
	})
	return nil
}

// demoGateway serves n generated transactions.
func demoGateway(n int) *gateway.MockGateway {
	categories := []model.Category{
		{ID: "1", Label: "Rumah"},
		{ID: "2", Label: "Kantor"},
		{ID: "3", Label: "Transportasi"},
		{ID: "4", Label: "Makan"},
	}

	rng := rand.New(rand.NewPCG(1, 2))
	start := time.Now().AddDate(0, -6, 0)
	ledger := &demoLedger{transactions: make([]model.Transaction, 0, n)}
	for i := range n {
		amount := decimal.NewFromInt(int64(rng.IntN(500)+1) * 1000)
		at := &model.Stamp{Time: start.Add(time.Duration(rng.IntN(180*24)) * time.Hour)}
		tx := model.Transaction{
			ID:         strconv.Itoa(i + 1),
			CategoryID: categories[rng.IntN(len(categories))].ID,
			Note:       notes[rng.IntN(len(notes))],
			CreatedAt:  at,
		}
		if rng.IntN(4) == 0 {
			tx.AmountIn, tx.InAt = &amount, at
		} else {
			tx.AmountOut, tx.OutAt = &amount, at
		}
		ledger.transactions = append(ledger.transactions, tx)
	}

	gw := gateway.NewMockGateway(categories, nil)
	gw.ListTransactionsFn = ledger.list
	gw.TotalsFn = ledger.totals
	gw.CreateTransactionFn = ledger.create
	gw.UpdateTransactionFn = ledger.update
	gw.DeleteTransactionFn = ledger.remove
	return gw
}

func draftTransaction(id string, draft model.TransactionDraft) model.Transaction {
	amount := draft.Amount
	at := draft.At
	tx := model.Transaction{ID: id, CategoryID: draft.CategoryID, Note: draft.Note, CreatedAt: &at}
	if draft.Direction == model.DirectionIn {
		tx.AmountIn, tx.InAt = &amount, &at
	} else {
		tx.AmountOut, tx.OutAt = &amount, &at
	}
	return tx
}
