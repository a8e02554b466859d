package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"spendbook/internal/config"
	"spendbook/internal/database"
	"spendbook/internal/export"
	spendbookHttp "spendbook/internal/http"
	accountHandler "spendbook/internal/http/account"
	expenseHandler "spendbook/internal/http/expense"
	exportHandler "spendbook/internal/http/export"
	importHandler "spendbook/internal/http/importcsv"
	suggestHandler "spendbook/internal/http/suggest"
	summaryHandler "spendbook/internal/http/summary"
	"spendbook/internal/importer"
	"spendbook/internal/kv/memory"
	kvpostgres "spendbook/internal/kv/postgres"
	kvsqlite "spendbook/internal/kv/sqlite"
	"spendbook/internal/ledger"
	"spendbook/internal/suggest"
	suggestStore "spendbook/internal/suggest/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	kvStore, cleanup, err := openStore(cfg)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ledgerService := ledger.NewService(kvStore)
	if err := ledgerService.Initialize(ctx); err != nil {
		slog.Error("failed to initialize ledger", "error", err)
		os.Exit(1)
	}

	var (
		suggestService = suggest.NewService(suggestStore.New(kvStore))
		importService  = importer.NewService()
		exportService  = export.NewService(ledgerService)
	)

	var (
		accountsH = accountHandler.NewHandler(ledgerService)
		expensesH = expenseHandler.NewHandler(ledgerService)
		summaryH  = summaryHandler.NewHandler(ledgerService)
		importH   = importHandler.NewHandler(importService, ledgerService, suggestService)
		suggestH  = suggestHandler.NewHandler(suggestService)
		exportH   = exportHandler.NewHandler(exportService)
	)

	router := spendbookHttp.New(accountsH, expensesH, summaryH, importH, suggestH, exportH, spendbookHttp.Options{
		AuthSecret:  cfg.Auth.Secret,
		CORSOrigins: cfg.CORS.Origins,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "name", cfg.App.Name, "addr", srv.Addr, "driver", cfg.Store.Driver)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func openStore(cfg *config.Config) (ledger.KV, func(), error) {
	noop := func() {}

	switch cfg.Store.Driver {
	case "memory":
		return memory.New(), noop, nil

	case "sqlite":
		db, err := database.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, noop, err
		}

		store, err := kvsqlite.New(db)
		if err != nil {
			db.Close()
			return nil, noop, err
		}

		return store, func() { db.Close() }, nil

	case "postgres":
		db, err := database.NewPostgres(cfg.ConnectionString())
		if err != nil {
			return nil, noop, err
		}

		store, err := kvpostgres.New(db)
		if err != nil {
			db.Close()
			return nil, noop, err
		}

		return store, func() { db.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}
