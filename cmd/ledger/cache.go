package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-ledger-must-balance/internal/cli"
)

func cacheCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local transaction cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop the cached transaction list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := rt.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			a.cache.Invalidate(ctx)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Cache cleared"))
			return nil
		},
	})

	return cmd
}
