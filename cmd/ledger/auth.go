package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-ledger-must-balance/internal/cli"
	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/config"
	"github.com/Veraticus/the-ledger-must-balance/internal/share"
)

func authCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with share targets",
		Long:  `Authenticate with the services exports can be shared to.`,
	}

	cmd.AddCommand(authDriveCmd(rt))
	cmd.AddCommand(authStatusCmd(rt))

	return cmd
}

func authDriveCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "drive",
		Short: "Authorize uploads to Google Drive",
		Long: `Authorize the ledger to upload exports to Google Drive.

This command will:
1. Start a local callback server
2. Print a Google sign-in URL to visit
3. Save the granted token to share.drive.token_file

Set share.drive.client_id and share.drive.client_secret first (or
GOOGLE_DRIVE_CLIENT_ID and GOOGLE_DRIVE_CLIENT_SECRET).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.LoadDriveConfig(rt.settings)
			if !cfg.Configured() {
				return fmt.Errorf("%w: share.drive.client_id and share.drive.client_secret", common.ErrMissingConfig)
			}

			if _, err := share.Authenticate(cmd.Context(), cfg); err != nil {
				return fmt.Errorf("drive authorization failed: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Google Drive authorized; exports will be uploaded"))
			return nil
		},
	}
}

func authStatusCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which share targets are ready",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			cfg := config.LoadDriveConfig(rt.settings)

			switch _, err := share.LoadToken(cfg.TokenFile); {
			case !cfg.Configured():
				_, _ = fmt.Fprintln(w, cli.FormatInfo("Google Drive: not configured"))
			case errors.Is(err, fs.ErrNotExist):
				_, _ = fmt.Fprintln(w, cli.FormatWarning("Google Drive: not authorized, run 'ledger auth drive'"))
			case err != nil:
				_, _ = fmt.Fprintln(w, cli.FormatError("Google Drive: "+err.Error()))
			default:
				_, _ = fmt.Fprintln(w, cli.FormatSuccess("Google Drive: authorized"))
			}

			if config.Load(rt.settings).Share.Open {
				_, _ = fmt.Fprintln(w, cli.FormatSuccess("System viewer: enabled"))
			} else {
				_, _ = fmt.Fprintln(w, cli.FormatInfo("System viewer: disabled"))
			}
			return nil
		},
	}
}
