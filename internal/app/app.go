package app

import (
	"fmt"

	"github.com/samvad-hq/mercari-items-client/internal/config"
	"github.com/samvad-hq/mercari-items-client/internal/logger"
	"github.com/samvad-hq/mercari-items-client/internal/storage"
	"github.com/samvad-hq/mercari-items-client/pkg/itemsapi"
	"github.com/samvad-hq/mercari-items-client/pkg/objecturl"
)

// App holds the long-lived pieces shared by every command: the local store,
// the ObjectURL registry on top of it and the items client.
type App struct {
	cfg    *config.Config
	log    logger.Logger
	store  storage.Store
	client *itemsapi.Client
}

// New builds the runtime from config.
func New(cfg *config.Config, log logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)

	storeOpts := storage.Options{
		BlobTTL:         cfg.BlobTTL,
		ItemTTL:         cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"blob_ttl_seconds":         int(cfg.BlobTTL.Seconds()),
		"item_ttl_seconds":         int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	client, err := itemsapi.New(cfg.BackendURL, itemsapi.Options{
		Registry:          objecturl.NewRegistry(cfg.BackendURL, store),
		Logger:            log,
		Timeout:           cfg.HTTPTimeout,
		EnrichConcurrency: cfg.EnrichConcurrency,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("init items client: %w", err)
	}

	return &App{
		cfg:    cfg,
		log:    log,
		store:  store,
		client: client,
	}, nil
}

// Client returns the items client bound to the configured backend.
func (a *App) Client() *itemsapi.Client { return a.client }

// Close closes the storage backend, logging any errors encountered.
func (a *App) Close() error {
	if a == nil || a.store == nil {
		return nil
	}
	if err := a.store.Close(); err != nil {
		a.log.ErrorObj("storage close failed", "error", err)
		return err
	}
	return nil
}
