package metastore

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/arkilian/glue-metastore/internal/catalog"
	merrors "github.com/arkilian/glue-metastore/internal/errors"
	"github.com/arkilian/glue-metastore/internal/observability"
	"github.com/arkilian/glue-metastore/internal/storage"
)

const (
	// DefaultPageSize is the number of entries requested per listing page.
	DefaultPageSize = 100

	// batchGetPartitionLimit is the maximum number of keys per BatchGetPartition call.
	batchGetPartitionLimit = 1000

	// batchCreatePartitionLimit is the maximum number of partitions per BatchCreatePartition call.
	batchCreatePartitionLimit = 100

	// maxUnprocessedRounds bounds re-requests of keys Glue left unprocessed.
	maxUnprocessedRounds = 3
)

// Config holds configuration for the Glue metastore.
type Config struct {
	// CatalogID is the account id owning the catalog; empty means the caller's account.
	CatalogID string

	// PageSize caps the entries requested per listing page (1-100).
	PageSize int

	// Logger receives one Debug line per remote call. Defaults to a null logger.
	Logger hclog.Logger

	// Stats records per-operation call statistics when set.
	Stats *observability.CallStats

	// DataStore removes managed table and partition data when DeleteData is set.
	DataStore storage.ObjectStorage

	// DeleteData enables honoring the deleteData flag of drop operations.
	DeleteData bool
}

// DefaultConfig returns the default metastore configuration.
func DefaultConfig() Config {
	return Config{
		PageSize: DefaultPageSize,
	}
}

// GlueMetastore implements Metastore against the Glue Data Catalog.
// It is safe for concurrent use; it holds no state besides its dependencies.
type GlueMetastore struct {
	client     catalog.Client
	catalogID  *string
	pageSize   int32
	logger     hclog.Logger
	stats      *observability.CallStats
	dataStore  storage.ObjectStorage
	deleteData bool
}

var _ Metastore = (*GlueMetastore)(nil)

// NewGlueMetastore creates a metastore over an explicitly provided Glue client.
func NewGlueMetastore(client catalog.Client, cfg Config) *GlueMetastore {
	if cfg.PageSize <= 0 || cfg.PageSize > DefaultPageSize {
		cfg.PageSize = DefaultPageSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	m := &GlueMetastore{
		client:     client,
		pageSize:   int32(cfg.PageSize),
		logger:     logger.Named("glue-metastore"),
		stats:      cfg.Stats,
		dataStore:  cfg.DataStore,
		deleteData: cfg.DeleteData,
	}
	if cfg.CatalogID != "" {
		m.catalogID = aws.String(cfg.CatalogID)
	}
	return m
}

// call runs one remote request, classifies its error and records it.
func (m *GlueMetastore) call(ctx context.Context, op string, fn func(context.Context) error) error {
	requestID := uuid.NewString()
	start := time.Now()

	err := catalog.FromRemote(op, fn(ctx))
	elapsed := time.Since(start)

	if m.stats != nil {
		m.stats.RecordCall(op, elapsed, merrors.GetCode(err), err != nil)
	}

	switch {
	case err == nil:
		m.logger.Debug("glue call", "op", op, "request_id", requestID, "elapsed", elapsed)
	case catalog.IsEntityNotFound(err):
		m.logger.Debug("glue call: entity not found", "op", op, "request_id", requestID, "elapsed", elapsed)
	default:
		m.logger.Warn("glue call failed", "op", op, "request_id", requestID, "elapsed", elapsed, "error", err)
	}
	return err
}

// shouldDeleteData reports whether data under a managed entity's location
// must be removed on drop.
func (m *GlueMetastore) shouldDeleteData(deleteData bool) bool {
	return deleteData && m.deleteData && m.dataStore != nil
}

// removeData deletes every object under location from the data store.
func (m *GlueMetastore) removeData(ctx context.Context, entity, location string) error {
	if location == "" {
		m.logger.Warn("skipping data removal, no location", "entity", entity)
		return nil
	}
	deleted, err := storage.DeleteLocation(ctx, m.dataStore, location)
	if err != nil {
		return merrors.NewStorageError(merrors.CodeDeleteFailed,
			"failed to delete data of "+entity, err).
			WithDetails(map[string]interface{}{"location": location, "deleted": deleted})
	}
	m.logger.Info("deleted data", "entity", entity, "location", location, "objects", deleted)
	return nil
}
