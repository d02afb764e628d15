package metastore

import (
	"context"

	merrors "github.com/arkilian/glue-metastore/internal/errors"
	"github.com/arkilian/glue-metastore/pkg/types"
)

// Privileges and column statistics are not kept in Glue. These operations
// fail with HIVE_METASTORE_ERROR without contacting the catalog.

func (m *GlueMetastore) GetRoles(ctx context.Context, user string) ([]string, error) {
	return nil, merrors.NewNotSupportedError("GetRoles")
}

func (m *GlueMetastore) GetDatabasePrivileges(ctx context.Context, user, databaseName string) ([]types.PrivilegeInfo, error) {
	return nil, merrors.NewNotSupportedError("GetDatabasePrivileges")
}

func (m *GlueMetastore) GetTablePrivileges(ctx context.Context, user, databaseName, tableName string) ([]types.PrivilegeInfo, error) {
	return nil, merrors.NewNotSupportedError("GetTablePrivileges")
}

func (m *GlueMetastore) GrantTablePrivileges(ctx context.Context, databaseName, tableName, grantee string, privileges []types.PrivilegeInfo) error {
	return merrors.NewNotSupportedError("GrantTablePrivileges")
}

func (m *GlueMetastore) RevokeTablePrivileges(ctx context.Context, databaseName, tableName, grantee string, privileges []types.PrivilegeInfo) error {
	return merrors.NewNotSupportedError("RevokeTablePrivileges")
}

func (m *GlueMetastore) GetTableColumnStatistics(ctx context.Context, databaseName, tableName string, columnNames []string) (map[string]types.ColumnStatistics, error) {
	return nil, merrors.NewNotSupportedError("GetTableColumnStatistics")
}

func (m *GlueMetastore) GetPartitionColumnStatistics(ctx context.Context, databaseName, tableName string, partitionNames, columnNames []string) (map[string]map[string]types.ColumnStatistics, error) {
	return nil, merrors.NewNotSupportedError("GetPartitionColumnStatistics")
}
