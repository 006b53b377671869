// Package app wires configured backends into the services the binaries run.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/eventstock/eventstock/config"
	"github.com/eventstock/eventstock/internal/core/collection"
	"github.com/eventstock/eventstock/internal/core/validation"
	"github.com/eventstock/eventstock/internal/core/view"
	"github.com/eventstock/eventstock/internal/export"
	"github.com/eventstock/eventstock/internal/storage"
	"github.com/eventstock/eventstock/internal/storage/filestore"
	"github.com/eventstock/eventstock/internal/storage/minio"
	"github.com/eventstock/eventstock/internal/storage/postgres"
	"github.com/eventstock/eventstock/internal/storage/rediscache"
)

// App holds the opened backends. Close releases them.
type App struct {
	Config      *config.Config
	Logger      *zap.Logger
	Store       storage.Store
	Images      export.ImageSource
	Objects     *minio.Client // nil unless minio is enabled
	Collections *collection.Service

	closers []func() error
}

// Open connects the configured Data Store, optional Redis cache and image
// source, and builds the collection service on top.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	locale, err := language.Parse(cfg.Query.Locale)
	if err != nil {
		return nil, fmt.Errorf("query locale %q: %w", cfg.Query.Locale, err)
	}

	if err := a.openStore(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.openImages(ctx); err != nil {
		a.Close()
		return nil, err
	}

	views := view.NewRegistry(locale, view.Builtin()...)
	a.Collections = collection.NewService(a.Store, views, validation.NewValidator(), logger)
	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	cfg := a.Config
	switch cfg.Storage.Backend {
	case "postgres":
		db, err := postgres.NewClient(ctx, &cfg.Database)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, db.Close)
		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}
		a.Store = postgres.NewCollectionRepository(db)
		a.Logger.Info("using postgres data store", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Name))
	default:
		store, err := filestore.New(cfg.Storage.DataDir)
		if err != nil {
			return err
		}
		a.Store = store
		a.Logger.Info("using file data store", zap.String("dir", cfg.Storage.DataDir))
	}

	if !cfg.Storage.Cache {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	a.closers = append(a.closers, client.Close)
	if err := client.Ping(ctx).Err(); err != nil {
		// The cache is optional; run against the backing store alone.
		a.Logger.Warn("redis unavailable, collection cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		return nil
	}
	a.Store = rediscache.New(a.Store, client, cfg.Redis.KeyPrefix, cfg.Redis.TTL)
	a.Logger.Info("collection cache enabled", zap.String("addr", cfg.Redis.Addr))
	return nil
}

func (a *App) openImages(ctx context.Context) error {
	cfg := a.Config
	if !cfg.MinIO.Enabled {
		a.Images = export.DirSource{Root: cfg.Export.ImageDir}
		return nil
	}

	client, err := minio.NewClient(&cfg.MinIO)
	if err != nil {
		return err
	}
	if err := client.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("minio bucket %q: %w", cfg.MinIO.Bucket, err)
	}
	a.Objects = client
	a.Images = client
	a.Logger.Info("serving export images from object storage", zap.String("bucket", cfg.MinIO.Bucket))
	return nil
}

// Close releases backends in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
