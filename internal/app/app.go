// Package app wires configuration into a ready-to-use Glue metastore.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/arkilian/glue-metastore/internal/catalog"
	"github.com/arkilian/glue-metastore/internal/config"
	"github.com/arkilian/glue-metastore/internal/metastore"
	"github.com/arkilian/glue-metastore/internal/observability"
	"github.com/arkilian/glue-metastore/internal/storage"
)

// statsWindow is how long idle operations are kept in the call statistics.
const statsWindow = time.Hour

// App holds the metastore and the shared resources built for it.
type App struct {
	cfg       *config.Config
	logger    hclog.Logger
	stats     *observability.CallStats
	dataStore storage.ObjectStorage
	metastore *metastore.GlueMetastore
}

// New validates cfg and builds the Glue client, data store, call statistics
// and metastore. A nil logger is replaced by one built from cfg.Log.
func New(ctx context.Context, cfg *config.Config, logger hclog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	client, err := catalog.NewClient(ctx, catalog.Config{
		Region:          cfg.Glue.Region,
		Endpoint:        cfg.Glue.Endpoint,
		Profile:         cfg.Glue.Profile,
		MaxAttempts:     cfg.Glue.MaxAttempts,
		AccessKeyID:     cfg.Glue.AccessKeyID,
		SecretAccessKey: cfg.Glue.SecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create glue client: %w", err)
	}

	return NewWithClient(ctx, cfg, client, logger)
}

// NewWithClient is New over a pre-built Glue client.
func NewWithClient(ctx context.Context, cfg *config.Config, client catalog.Client, logger hclog.Logger) (*App, error) {
	if logger == nil {
		logger = NewLogger(cfg.Log, os.Stderr)
	}

	dataStore, err := NewDataStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	stats := observability.NewCallStats(statsWindow)
	m := metastore.NewGlueMetastore(client, metastore.Config{
		CatalogID:  cfg.Glue.CatalogID,
		PageSize:   cfg.Glue.PageSize,
		Logger:     logger,
		Stats:      stats,
		DataStore:  dataStore,
		DeleteData: cfg.Storage.DeleteData,
	})

	logger.Debug("metastore ready",
		"region", cfg.Glue.Region,
		"catalog_id", cfg.Glue.CatalogID,
		"page_size", cfg.Glue.PageSize,
		"delete_data", cfg.Storage.DeleteData,
		"storage", cfg.Storage.Type)

	return &App{
		cfg:       cfg,
		logger:    logger,
		stats:     stats,
		dataStore: dataStore,
		metastore: m,
	}, nil
}

// NewDefaultMetastore builds a metastore from the environment alone
// (GLUEMETA_* variables and the default AWS credential chain). The
// environment is read once, here.
func NewDefaultMetastore(ctx context.Context) (*metastore.GlueMetastore, error) {
	cfg := config.DefaultConfig()
	config.LoadFromEnv(cfg)

	a, err := New(ctx, cfg, nil)
	if err != nil {
		return nil, err
	}
	return a.Metastore(), nil
}

// Metastore returns the configured metastore.
func (a *App) Metastore() *metastore.GlueMetastore {
	return a.metastore
}

// Stats returns the remote call statistics of the metastore.
func (a *App) Stats() *observability.CallStats {
	return a.stats
}

// Logger returns the application logger.
func (a *App) Logger() hclog.Logger {
	return a.logger
}

// DataStore returns the storage used for data deletion, nil when disabled.
func (a *App) DataStore() storage.ObjectStorage {
	return a.dataStore
}

// NewLogger builds the application logger from the log configuration.
func NewLogger(cfg config.LogConfig, w io.Writer) hclog.Logger {
	level := hclog.LevelFromString(cfg.Level)
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       "gluemeta",
		Level:      level,
		Output:     w,
		JSONFormat: cfg.JSON,
	})
}

// NewDataStore creates the object storage used to delete managed data.
// It returns nil when data deletion is disabled.
func NewDataStore(ctx context.Context, cfg config.StorageConfig) (storage.ObjectStorage, error) {
	if !cfg.DeleteData {
		return nil, nil
	}

	switch cfg.Type {
	case "local":
		local, err := storage.NewLocalStorage(cfg.Path)
		if err != nil {
			return nil, err
		}
		return local, nil
	case "s3":
		s3Cfg := storage.DefaultS3Config()
		if cfg.S3.Region != "" {
			s3Cfg.Region = cfg.S3.Region
		}
		if cfg.S3.Endpoint != "" {
			s3Cfg.Endpoint = cfg.S3.Endpoint
		}
		s3Cfg.UsePathStyle = cfg.S3.UsePathStyle
		s3Store, err := storage.NewS3Storage(ctx, s3Cfg)
		if err != nil {
			return nil, err
		}
		return s3Store, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
