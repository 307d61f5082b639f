package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/the-ledger-must-balance/internal/cli"
	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/config"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd(newRuntime()).ExecuteContext(ctx)
	cancel()

	if err != nil {
		slog.Debug("command failed", "error", err)
		fmt.Fprintln(os.Stderr, cli.FormatError(common.Describe(err)))
		os.Exit(1)
	}
}

func newRootCmd(rt *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:   "ledger",
		Short: "📒 Personal ledger client",
		Long: `the-ledger-must-balance: a terminal client for your finance tracker.

Browse money in and money out by category, keep the ledger up to date and
export it as a spreadsheet for whoever needs to see it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return rt.initConfig()
		},
	}
	root.SetIn(rt.in)
	root.SetOut(rt.out)
	root.SetErr(rt.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&rt.cfgFile, "config", "", "config file (default: $HOME/.config/ledger/config.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")

	_ = rt.settings.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = rt.settings.BindPFlag("logging.format", flags.Lookup("log-format"))

	root.AddCommand(historyCmd(rt))
	root.AddCommand(totalsCmd(rt))
	root.AddCommand(txCmd(rt))
	root.AddCommand(categoriesCmd(rt))
	root.AddCommand(exportCmd(rt))
	root.AddCommand(importCmd(rt))
	root.AddCommand(browseCmd(rt))
	root.AddCommand(cacheCmd(rt))
	root.AddCommand(authCmd(rt))
	root.AddCommand(versionCmd())

	return root
}

func (rt *runtime) initConfig() error {
	if rt.cfgFile != "" {
		rt.settings.SetConfigFile(rt.cfgFile)
	} else {
		dir, err := config.ConfigDir()
		if err != nil {
			return err
		}
		rt.settings.AddConfigPath(dir)
		rt.settings.AddConfigPath(".")
		rt.settings.SetConfigName("config")
		rt.settings.SetConfigType("yaml")
	}

	if err := rt.settings.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := common.SetupLogger(rt.errOut, rt.settings.GetString("logging.level"), rt.settings.GetString("logging.format")); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			slog.Debug("ledger version", "version", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ledger %s\n", version)
		},
	}
}
