package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-ledger-must-balance/internal/cli"
	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/export"
	"github.com/Veraticus/the-ledger-must-balance/internal/history"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

func exportCmd(rt *runtime) *cobra.Command {
	var (
		filter  string
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the history to a spreadsheet",
		Long: `Write the visible history to an .xlsx workbook and share it.

The workbook goes to export.dir. It is uploaded to Google Drive when
'ledger auth drive' has been run, otherwise opened with the system viewer
when share.open is set.`,
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

			exporter, err := a.exporter(ctx)
			if err != nil {
				return err
			}
			outcome, err := exporter.Export(ctx, exportRequest(view))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if view.TotalsErr != nil {
				_, _ = fmt.Fprintln(w, cli.FormatWarning("Totals unavailable, exported as zero: "+common.Describe(view.TotalsErr)))
			}
			_, _ = fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Exported %d rows with %s", outcome.Rows, outcome.Writer)))
			switch {
			case outcome.Link != "":
				_, _ = fmt.Fprintln(w, cli.FormatInfo("Shared via "+outcome.SharedVia+": "+outcome.Link))
			case outcome.Unshared() != nil:
				_, _ = fmt.Fprintln(w, cli.FormatInfo(outcome.Unshared().Error()))
			default:
				_, _ = fmt.Fprintln(w, cli.FormatInfo("Opened "+outcome.Path))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", model.FilterAll, "category id to export, or \"all\"")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the transaction cache")

	return cmd
}

func exportRequest(view history.View) export.Request {
	return export.Request{
		FilterKey:    view.Filter,
		FilterLabel:  view.FilterLabel,
		Transactions: view.Transactions,
		Categories:   view.Categories,
		Totals:       view.Totals,
	}
}
