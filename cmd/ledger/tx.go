package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-ledger-must-balance/internal/cli"
	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/editor"
	"github.com/Veraticus/the-ledger-must-balance/internal/history"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

func txCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transaction"},
		Short:   "Add, edit or delete transactions",
	}

	cmd.AddCommand(addTxCmd(rt))
	cmd.AddCommand(editTxCmd(rt))
	cmd.AddCommand(deleteTxCmd(rt))

	return cmd
}

// txFlags are the form fields settable from the command line.
type txFlags struct {
	amount   string
	category string
	note     string
	date     string
	in       bool
	out      bool
}

func (f *txFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.amount, "amount", "a", "", "amount without thousands separators, e.g. 12500 or 12,5")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "category id")
	cmd.Flags().StringVarP(&f.note, "note", "n", "", "free-text note")
	cmd.Flags().BoolVar(&f.in, "in", false, "money in")
	cmd.Flags().BoolVar(&f.out, "out", false, "money out")
	cmd.MarkFlagsMutuallyExclusive("in", "out")
}

// apply copies every flag the user set into the open form.
func (f *txFlags) apply(cmd *cobra.Command, ed *editor.Editor, categories []model.Category) error {
	changed := cmd.Flags().Changed

	switch {
	case f.in:
		if err := ed.SetDirection(model.DirectionIn); err != nil {
			return err
		}
	case f.out:
		if err := ed.SetDirection(model.DirectionOut); err != nil {
			return err
		}
	}
	if changed("amount") {
		if err := ed.SetAmount(f.amount); err != nil {
			return err
		}
	}
	if changed("category") {
		if history.CategoryIndex(categories, f.category) < 0 {
			return common.NewValidationError("category", "unknown category "+f.category)
		}
		if err := ed.SetCategory(f.category); err != nil {
			return err
		}
	}
	if changed("note") {
		if err := ed.SetNote(f.note); err != nil {
			return err
		}
	}
	if changed("date") {
		day, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(f.date), time.Local)
		if err != nil {
			return common.NewValidationError("date", "use YYYY-MM-DD")
		}
		if err := ed.SetDate(day); err != nil {
			return err
		}
	}
	return nil
}

func addTxCmd(rt *runtime) *cobra.Command {
	var flags txFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Long: `Record a transaction dated now. Money in is the default; the category
defaults to the first one.

Examples:
  ledger tx add --amount 12500 --note "lunch" --out
  ledger tx add --amount "Rp 5000000" --category 3 --in
  ledger tx add --amount 12,5 --note "parking"`,
		Args: cobra.NoArgs,
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
			categories := a.history.Categories()

			ed := a.editor(cli.NewNotifier(cmd.OutOrStdout()))
			if err := ed.OpenForCreate(categories); err != nil {
				return err
			}
			if err := flags.apply(cmd, ed, categories); err != nil {
				return err
			}
			return ed.Submit(ctx)
		},
	}

	flags.register(cmd)
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func editTxCmd(rt *runtime) *cobra.Command {
	var flags txFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a transaction",
		Long: `Change a transaction. Only the flags you pass are changed; switching
direction moves the amount to the other side.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := rt.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if err := a.history.ReloadCategories(ctx); err != nil {
				return err
			}
			tx, err := a.findTransaction(ctx, args[0])
			if err != nil {
				return err
			}
			categories := a.history.Categories()

			ed := a.editor(cli.NewNotifier(cmd.OutOrStdout()))
			if err := ed.OpenForEdit(tx, categories); err != nil {
				return err
			}
			if err := flags.apply(cmd, ed, categories); err != nil {
				return err
			}
			return ed.Submit(ctx)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&flags.date, "date", "", "date as YYYY-MM-DD")

	return cmd
}

func deleteTxCmd(rt *runtime) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := rt.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			tx, err := a.findTransaction(ctx, args[0])
			if err != nil {
				return err
			}

			ed := a.editor(cli.NewNotifier(cmd.OutOrStdout()))
			if err := ed.OpenForEdit(tx, a.history.Categories()); err != nil {
				return err
			}
			prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout(), yes)
			if err := ed.Delete(ctx, prompter); err != nil {
				return err
			}
			if ed.State() != editor.StateClosed {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing deleted"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")

	return cmd
}
