// Package app builds the ledger store, the supporting services and the
// confirmation gate from configuration. The API server and the terminal
// client both run on top of it.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/MrJamesThe3rd/daftar/internal/alias"
	aliasStore "github.com/MrJamesThe3rd/daftar/internal/alias/store"
	"github.com/MrJamesThe3rd/daftar/internal/audit"
	auditStore "github.com/MrJamesThe3rd/daftar/internal/audit/store"
	"github.com/MrJamesThe3rd/daftar/internal/backup"
	"github.com/MrJamesThe3rd/daftar/internal/config"
	"github.com/MrJamesThe3rd/daftar/internal/database"
	"github.com/MrJamesThe3rd/daftar/internal/engine"
	engineStore "github.com/MrJamesThe3rd/daftar/internal/engine/store"
	"github.com/MrJamesThe3rd/daftar/internal/entity"
	"github.com/MrJamesThe3rd/daftar/internal/entity/memstore"
	entityStore "github.com/MrJamesThe3rd/daftar/internal/entity/store"
	"github.com/MrJamesThe3rd/daftar/internal/importer"
	"github.com/MrJamesThe3rd/daftar/internal/notify"
)

type App struct {
	Store         entity.Store
	Gate          *engine.Gate
	Aliases       *alias.Service
	Audit         *audit.Service
	Notifications *notify.Center
	Backups       *backup.Service
	Importer      *importer.Service

	db *sql.DB
}

type repositories struct {
	store   entity.Store
	aliases alias.Repository
	audit   audit.Repository
	slot    *engineStore.Slot
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{}

	repos, err := a.open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	uploader, err := newUploader(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Store = repos.store
	a.Aliases = alias.NewService(repos.aliases)
	a.Audit = audit.NewService(repos.audit)
	a.Notifications = notify.NewCenter(notify.DefaultCapacity)
	a.Backups = backup.NewService(uploader)
	a.Importer = importer.NewService()

	exec := engine.NewExecutor(engine.ExecutorConfig{
		Store:    a.Store,
		Audit:    a.Audit,
		Notifier: a.Notifications,
		Backups:  a.Backups,
		Logger:   logger,
	})

	var opts []engine.GateOption
	if repos.slot != nil {
		opts = append(opts, engine.WithSlot(repos.slot))
	}

	a.Gate = engine.NewGate(a.Store, exec, a.Aliases, logger, opts...)

	logger.Info("ledger ready", "driver", cfg.Store.Driver)

	return a, nil
}

func (a *App) open(ctx context.Context, cfg *config.Config) (*repositories, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		store, err := memoryStore(cfg.Store.Seed)
		if err != nil {
			return nil, err
		}

		return &repositories{
			store:   store,
			aliases: alias.NewMemoryRepository(),
			audit:   audit.NewMemoryRepository(),
		}, nil

	case config.DriverPostgres, "":
		db, err := database.New(cfg.ConnectionString())
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}

		a.db = db

		if err := database.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}

		return &repositories{
			store:   entityStore.New(db),
			aliases: aliasStore.New(db),
			audit:   auditStore.New(db),
			slot:    engineStore.NewSlot(db, cfg.Gate.ClaimTTL),
		}, nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func memoryStore(seed string) (*memstore.Store, error) {
	if seed == "" {
		return memstore.New(), nil
	}

	f, err := os.Open(seed)
	if err != nil {
		return nil, fmt.Errorf("opening seed: %w", err)
	}
	defer f.Close()

	snap, err := backup.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading seed %s: %w", seed, err)
	}

	return memstore.NewSeeded(snap), nil
}

func newUploader(ctx context.Context, cfg *config.Config) (backup.Uploader, error) {
	if cfg.Backup.Bucket == "" {
		return backup.DirUploader{Dir: cfg.Backup.Dir}, nil
	}

	u, err := backup.NewS3Uploader(ctx, backup.S3Config{
		Bucket:       cfg.Backup.Bucket,
		Region:       cfg.Backup.Region,
		Endpoint:     cfg.Backup.Endpoint,
		AccessKey:    cfg.Backup.AccessKey,
		SecretKey:    cfg.Backup.SecretKey,
		UsePathStyle: cfg.Backup.UsePathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring backup bucket: %w", err)
	}

	return u, nil
}

// Close releases the database connection, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}

	err := a.db.Close()
	a.db = nil

	return err
}
