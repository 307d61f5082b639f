package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-ledger-must-balance/internal/cli"
	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/history"
	"github.com/Veraticus/the-ledger-must-balance/internal/ofx"
)

func importCmd(rt *runtime) *cobra.Command {
	var (
		category string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "import <files...>",
		Short: "Import transactions from OFX/QFX files",
		Long: `Post the transactions of OFX or QFX statements exported from your bank.

Credits become money in and debits money out, dated on the posted day with
the payee as note. Every imported transaction goes to --category.

Examples:
  ledger import --category 2 ~/Downloads/bank_jan_2024.qfx
  ledger import --category 2 --dry-run ~/Downloads/*.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			a, err := rt.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if err := a.history.ReloadCategories(ctx); err != nil {
				return err
			}
			if history.CategoryIndex(a.history.Categories(), category) < 0 {
				return common.NewValidationError("category", fmt.Sprintf("unknown category %q", category))
			}

			entries, err := parseFiles(ctx, files, category)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(w, cli.FormatWarning("No transactions found"))
				return nil
			}

			if dryRun {
				_, _ = fmt.Fprintln(w, cli.FormatInfo(fmt.Sprintf("Dry run: %d transactions would be imported", len(entries))))
				return printImport(cmd, a, entries)
			}

			posted, failed := postEntries(ctx, cmd, a, entries)
			a.cache.Invalidate(ctx)

			_, _ = fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Imported %d of %d transactions", posted, len(entries))))
			if failed > 0 {
				return fmt.Errorf("%d transactions could not be imported", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "category id for imported transactions")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "preview without posting")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

// expandFiles resolves globs; a pattern matching nothing is kept when it
// names an existing file.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}
	if len(files) == 0 {
		return nil, errors.New("no files found to import")
	}
	return files, nil
}

// parseFiles reads every file, dropping statement lines already seen in an
// earlier file.
func parseFiles(ctx context.Context, files []string, category string) ([]ofx.Entry, error) {
	parser := ofx.NewParser(slog.Default())
	seen := make(map[string]bool)

	var entries []ofx.Entry
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		parsed, err := parser.ParseFile(ctx, f, category)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}

		added := 0
		for _, e := range parsed {
			key := e.Account + "/" + e.FITID
			if e.FITID != "" && seen[key] {
				continue
			}
			seen[key] = true
			entries = append(entries, e)
			added++
		}
		slog.Info("Parsed statement",
			"file", filepath.Base(path),
			"found", len(parsed),
			"added", added)
	}
	return entries, nil
}

func postEntries(ctx context.Context, cmd *cobra.Command, a *app, entries []ofx.Entry) (posted, failed int) {
	interrupt := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Import")
	interrupt.Watch(ctx, func() string {
		return fmt.Sprintf("%d of %d transactions were posted before stopping.", posted, len(entries))
	})
	defer interrupt.Stop()

	progress := cli.NewProgress(cmd.ErrOrStderr(), len(entries), "Importing")
	defer progress.Done()

	for _, e := range entries {
		if ctx.Err() != nil {
			failed += len(entries) - posted - failed
			break
		}
		if err := a.gateway.CreateTransaction(ctx, e.Draft); err != nil {
			slog.Warn("failed to import transaction", "fitid", e.FITID, "error", err)
			failed++
		} else {
			posted++
		}
		progress.Step()
	}
	return posted, failed
}

func printImport(cmd *cobra.Command, a *app, entries []ofx.Entry) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", "DATE", "AMOUNT", "NOTE", "ACCOUNT")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			e.Draft.At.Time.Format("2006-01-02"),
			a.formatter.Signed(e.Draft.Direction, e.Draft.Amount),
			e.Draft.Note,
			e.Account)
	}
	return tw.Flush()
}
