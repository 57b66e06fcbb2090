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

	"github.com/MrJamesThe3rd/daftar/internal/app"
	"github.com/MrJamesThe3rd/daftar/internal/config"
	daftarHttp "github.com/MrJamesThe3rd/daftar/internal/http"
	activityHandler "github.com/MrJamesThe3rd/daftar/internal/http/activity"
	aliasHandler "github.com/MrJamesThe3rd/daftar/internal/http/alias"
	"github.com/MrJamesThe3rd/daftar/internal/http/commands"
	importHandler "github.com/MrJamesThe3rd/daftar/internal/http/importcsv"
	ledgerHandler "github.com/MrJamesThe3rd/daftar/internal/http/ledger"
	"github.com/MrJamesThe3rd/daftar/internal/http/registry"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(logger)

	time.Local = cfg.Location()

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	router := daftarHttp.New(daftarHttp.Handlers{
		Commands: commands.NewHandler(a.Gate),
		Ledger:   ledgerHandler.NewHandler(a.Store),
		Registry: registry.NewHandler(a.Store),
		Import:   importHandler.NewHandler(a.Importer, a.Gate),
		Activity: activityHandler.NewHandler(a.Notifications, a.Audit),
		Aliases:  aliasHandler.NewHandler(a.Aliases, a.Store),
	}, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", "addr", srv.Addr, "app", cfg.App.Name)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
