package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/Veraticus/the-ledger-must-balance/internal/cache"
	"github.com/Veraticus/the-ledger-must-balance/internal/categories"
	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/config"
	"github.com/Veraticus/the-ledger-must-balance/internal/editor"
	"github.com/Veraticus/the-ledger-must-balance/internal/export"
	"github.com/Veraticus/the-ledger-must-balance/internal/gateway"
	"github.com/Veraticus/the-ledger-must-balance/internal/history"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/money"
	"github.com/Veraticus/the-ledger-must-balance/internal/service"
	"github.com/Veraticus/the-ledger-must-balance/internal/share"
	"github.com/Veraticus/the-ledger-must-balance/internal/storage"
)

// runtime carries what every command shares: settings, streams and the
// gateway constructor.
type runtime struct {
	settings   *viper.Viper
	in         io.Reader
	out        io.Writer
	errOut     io.Writer
	newGateway func(cfg config.Config) (service.Gateway, error)
	cfgFile    string
}

func newRuntime() *runtime {
	return &runtime{
		settings:   config.New(),
		in:         os.Stdin,
		out:        os.Stdout,
		errOut:     os.Stderr,
		newGateway: newClientGateway,
	}
}

func newClientGateway(cfg config.Config) (service.Gateway, error) {
	if err := cfg.ValidateAPI(); err != nil {
		return nil, err
	}
	return gateway.NewClient(gateway.Config{
		BaseURL:     cfg.API.BaseURL,
		Timeout:     cfg.API.Timeout,
		ListTimeout: cfg.API.ListTimeout,
		Logger:      slog.Default(),
	})
}

// app is the wired object graph for one command invocation.
type app struct {
	gateway   service.Gateway
	store     *storage.SQLiteStorage
	cache     *cache.TransactionCache
	history   *history.Engine
	settings  *viper.Viper
	formatter money.Formatter
	cfg       config.Config
}

func (rt *runtime) open(ctx context.Context) (*app, error) {
	cfg := config.Load(rt.settings)

	gw, err := rt.newGateway(cfg)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	var opts []cache.Option
	if cfg.Cache.Persist {
		opts = append(opts, cache.WithSnapshotStore(store))
	}
	txCache := cache.New(gw, opts...)

	return &app{
		cfg:       cfg,
		settings:  rt.settings,
		gateway:   gw,
		store:     store,
		cache:     txCache,
		history:   history.NewEngine(txCache, gw, slog.Default()),
		formatter: money.NewFormatter(cfg.Display.Locale, cfg.Display.Currency),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func (a *app) editor(n service.Notifier) *editor.Editor {
	return editor.New(a.gateway, a.cache, a.history,
		editor.WithNotifier(n),
		editor.WithLogger(slog.Default()))
}

func (a *app) categories() *categories.Manager {
	return categories.New(a.gateway,
		categories.WithStore(a.store),
		categories.WithLogger(slog.Default()))
}

// exporter builds the export pipeline with the share chain: Drive when
// authorized, then the system opener.
func (a *app) exporter(ctx context.Context) (*export.Exporter, error) {
	var sharers []export.Sharer

	driveCfg := config.LoadDriveConfig(a.settings)
	if driveCfg.Configured() {
		drive, err := share.NewDriveSharerFromConfig(ctx, driveCfg,
			share.WithConversion(a.cfg.Share.DriveConvert),
			share.WithDriveLogger(slog.Default()))
		switch {
		case errors.Is(err, share.ErrNotAuthorized):
			slog.Debug("drive sharing not authorized, run `ledger auth drive`")
		case err != nil:
			slog.Warn("drive sharing unavailable", "error", err)
		default:
			sharers = append(sharers, drive)
		}
	}
	if a.cfg.Share.Open {
		sharers = append(sharers, share.NewOpenSharer())
	}

	return export.NewExporter(export.Config{
		Dir:    a.cfg.Export.Dir,
		Prefix: a.cfg.Export.Prefix,
	}, export.WithSharers(sharers...), export.WithLogger(slog.Default()))
}

// findTransaction looks an id up in the loaded history.
func (a *app) findTransaction(ctx context.Context, id string) (model.Transaction, error) {
	if err := a.history.ReloadTransactions(ctx, false); err != nil {
		return model.Transaction{}, err
	}
	for _, tx := range a.history.View().Transactions {
		if tx.ID == id {
			return tx, nil
		}
	}
	return model.Transaction{}, fmt.Errorf("transaction %q: %w", id, common.ErrNotFound)
}
