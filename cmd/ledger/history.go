package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-ledger-must-balance/internal/cli"
	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/history"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/money"
)

func historyCmd(rt *runtime) *cobra.Command {
	var (
		filter  string
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the transaction history",
		Long: `Show transactions newest first with the totals reported by the server.

Use --filter with a category id to narrow the list; the totals follow the
filter.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := rt.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			view, err := loadView(ctx, a, filter, refresh)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(w, cli.FormatTitle(view.FilterLabel))
			printTotals(w, a.formatter, view)
			_, _ = fmt.Fprintln(w)

			entries := view.Entries()
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(w, cli.SubtleStyle.Render("No transactions yet. Use 'ledger tx add' to record one."))
				return nil
			}
			return printEntries(w, a.formatter, entries)
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", model.FilterAll, "category id to show, or \"all\"")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the transaction cache")

	return cmd
}

func totalsCmd(rt *runtime) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Show money in, money out and balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := rt.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if err := a.history.ReloadCategories(ctx); err != nil {
				return err
			}
			if err := checkFilter(filter, a.history.Categories()); err != nil {
				return err
			}
			if _, err := a.history.SetFilter(ctx, filter); err != nil {
				return err
			}

			view := a.history.View()
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(w, cli.FormatTitle(view.FilterLabel))
			printTotals(w, a.formatter, view)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", model.FilterAll, "category id to total, or \"all\"")

	return cmd
}

// loadView loads the history and applies filter. Only a failed transaction
// load fails the command: a category failure keeps the previous labels and
// a totals failure is left in the view.
func loadView(ctx context.Context, a *app, filter string, refresh bool) (history.View, error) {
	if err := a.history.ReloadCategories(ctx); err != nil {
		slog.Warn("Showing history without fresh categories", "error", err)
	}
	if err := a.history.ReloadTransactions(ctx, refresh); err != nil {
		return history.View{}, err
	}
	if err := checkFilter(filter, a.history.Categories()); err != nil {
		return history.View{}, err
	}
	if filter == "" {
		filter = model.FilterAll
	}
	if filter != a.history.Filter() {
		_, _ = a.history.SetFilter(ctx, filter)
	} else {
		_, _ = a.history.RefreshTotals(ctx)
	}
	return a.history.View(), nil
}

func checkFilter(filter string, categories []model.Category) error {
	if filter == "" || filter == model.FilterAll || history.CategoryIndex(categories, filter) >= 0 {
		return nil
	}
	return common.NewValidationError("filter", fmt.Sprintf("unknown category %q", filter))
}

func printTotals(w io.Writer, f money.Formatter, view history.View) {
	line := fmt.Sprintf("%s   %s   %s",
		cli.InStyle.Render("In "+f.Currency(view.Totals.In)),
		cli.OutStyle.Render("Out "+f.Currency(view.Totals.Out)),
		"Balance "+f.Currency(view.Totals.Balance))
	_, _ = fmt.Fprintln(w, line)
	if view.TotalsErr != nil {
		_, _ = fmt.Fprintln(w, cli.FormatWarning("Totals unavailable: "+common.Describe(view.TotalsErr)))
	}
}

func printEntries(w io.Writer, f money.Formatter, entries []history.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", "DATE", "CATEGORY", "AMOUNT", "NOTE", "ID")
	_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("-", 10), strings.Repeat("-", 8), strings.Repeat("-", 6),
		strings.Repeat("-", 4), strings.Repeat("-", 2))
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.DateText(), e.Label, f.Signed(e.Direction, e.Transaction.DisplayAmount()),
			e.Transaction.Note, e.Transaction.ID)
	}
	return tw.Flush()
}
