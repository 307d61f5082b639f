package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-ledger-must-balance/internal/categories"
	"github.com/Veraticus/the-ledger-must-balance/internal/cli"
	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

func categoriesCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "Manage categories",
		Long: `List, add, rename and delete categories.

Changes are applied locally first. A change the server did not accept is
kept and marked unsynced; run 'ledger categories sync' to retry it.`,
	}

	cmd.AddCommand(listCategoriesCmd(rt))
	cmd.AddCommand(addCategoryCmd(rt))
	cmd.AddCommand(updateCategoryCmd(rt))
	cmd.AddCommand(deleteCategoryCmd(rt))
	cmd.AddCommand(syncCategoriesCmd(rt))

	return cmd
}

// withCategories opens the app, loads the manager and runs fn. A server
// failure while loading still leaves local entries available.
func withCategories(cmd *cobra.Command, rt *runtime, fn func(ctx context.Context, m *categories.Manager) error) error {
	ctx := cmd.Context()

	a, err := rt.open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	m := a.categories()
	if err := m.Load(ctx); err != nil {
		slog.Warn("could not load categories from the server", "error", err)
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning(common.Describe(err)))
	}
	return fn(ctx, m)
}

func listCategoriesCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCategories(cmd, rt, func(_ context.Context, m *categories.Manager) error {
				w := cmd.OutOrStdout()
				entries := m.Entries()
				if len(entries) == 0 {
					_, _ = fmt.Fprintln(w, cli.InfoStyle.Render("No categories found. Use 'ledger categories add' to create one."))
					return nil
				}
				if err := printCategories(w, entries); err != nil {
					return err
				}
				if n := m.Unsynced(); n > 0 {
					_, _ = fmt.Fprintln(w)
					_, _ = fmt.Fprintln(w, cli.FormatWarning(fmt.Sprintf("%d unsynced, run 'ledger categories sync'", n)))
				}
				return nil
			})
		},
	}
}

func printCategories(w io.Writer, entries []model.CategoryEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", "ID", "LABEL", "STATE")
	_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", strings.Repeat("-", 4), strings.Repeat("-", 20), strings.Repeat("-", 8))
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID, e.Label, e.State)
	}
	return tw.Flush()
}

func addCategoryCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "add <label>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCategories(cmd, rt, func(ctx context.Context, m *categories.Manager) error {
				entry, err := m.Create(ctx, args[0])
				if err != nil {
					if entry.ID != "" {
						_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning(
							fmt.Sprintf("%q kept locally as unsynced", entry.Label)))
					}
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
					fmt.Sprintf("Added category %q (id %s)", entry.Label, entry.ID)))
				return nil
			})
		},
	}
}

func updateCategoryCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "update <id> <label>",
		Aliases: []string{"rename"},
		Short:   "Rename a category",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCategories(cmd, rt, func(ctx context.Context, m *categories.Manager) error {
				if err := m.Update(ctx, args[0], args[1]); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Category renamed"))
				return nil
			})
		},
	}
}

func deleteCategoryCmd(rt *runtime) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCategories(cmd, rt, func(ctx context.Context, m *categories.Manager) error {
				prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout(), yes)
				ok, err := prompter.Confirm(ctx, fmt.Sprintf("Delete category %s?", args[0]))
				if err != nil {
					return err
				}
				if !ok {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing deleted"))
					return nil
				}
				if err := m.Delete(ctx, args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Category deleted"))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")

	return cmd
}

func syncCategoriesCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Retry unsynced category changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCategories(cmd, rt, func(ctx context.Context, m *categories.Manager) error {
				synced, err := m.Sync(ctx)
				if synced > 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%d synced", synced)))
				}
				if err != nil {
					return err
				}
				if synced == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing to sync"))
				}
				return nil
			})
		},
	}
}
