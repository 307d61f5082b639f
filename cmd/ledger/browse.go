package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/the-ledger-must-balance/internal/editor"
	"github.com/Veraticus/the-ledger-must-balance/internal/tui"
	"github.com/Veraticus/the-ledger-must-balance/internal/tui/themes"
)

func browseCmd(rt *runtime) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse and edit the ledger interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := rt.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			exporter, err := a.exporter(ctx)
			if err != nil {
				return err
			}

			theme := themes.Default
			if plain {
				theme = themes.Plain
			}

			return tui.Run(ctx, tui.Deps{
				History:   a.history,
				Exporter:  exporter,
				Formatter: a.formatter,
				Theme:     theme,
				NewEditor: func(n *tui.Notices) *editor.Editor {
					return a.editor(n)
				},
			})
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "disable colors")

	return cmd
}
