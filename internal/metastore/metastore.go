// Package metastore implements the Hive metastore capability surface on top
// of the AWS Glue Data Catalog.
//
// Every operation is a fresh round trip (or a bounded sequence of them) to
// the catalog; nothing is cached between calls. Lookups of a single database,
// table or partition report absence through their boolean result instead of
// an error. Multi-step operations such as ReplaceTable and RenameTable are
// not atomic.
package metastore

import (
	"context"

	"github.com/arkilian/glue-metastore/pkg/types"
)

// Metastore is the metadata capability surface consumed by the query engine.
type Metastore interface {
	GetDatabase(ctx context.Context, databaseName string) (types.Database, bool, error)
	GetAllDatabases(ctx context.Context) ([]string, error)
	CreateDatabase(ctx context.Context, database types.Database) error
	RenameDatabase(ctx context.Context, databaseName, newDatabaseName string) error
	DropDatabase(ctx context.Context, databaseName string) error

	GetTable(ctx context.Context, databaseName, tableName string) (types.Table, bool, error)
	GetAllTables(ctx context.Context, databaseName string) ([]string, error)
	GetAllViews(ctx context.Context, databaseName string) ([]string, error)
	CreateTable(ctx context.Context, table types.Table, privileges types.PrincipalPrivileges) error
	DropTable(ctx context.Context, databaseName, tableName string, deleteData bool) error
	ReplaceTable(ctx context.Context, databaseName, tableName string, newTable types.Table, privileges types.PrincipalPrivileges) error
	RenameTable(ctx context.Context, databaseName, tableName, newDatabaseName, newTableName string) error

	AddColumn(ctx context.Context, databaseName, tableName, columnName string, columnType types.HiveType, columnComment *string) error
	RenameColumn(ctx context.Context, databaseName, tableName, oldColumnName, newColumnName string) error
	DropColumn(ctx context.Context, databaseName, tableName, columnName string) error

	GetPartition(ctx context.Context, databaseName, tableName string, partitionValues []string) (types.Partition, bool, error)
	GetPartitionNames(ctx context.Context, databaseName, tableName string) ([]string, error)
	GetPartitionNamesByParts(ctx context.Context, databaseName, tableName string, parts []string) ([]string, error)
	GetPartitionsByNames(ctx context.Context, databaseName, tableName string, partitionNames []string) (map[string]*types.Partition, error)
	AddPartitions(ctx context.Context, databaseName, tableName string, partitions []types.Partition) error
	DropPartition(ctx context.Context, databaseName, tableName string, partitionValues []string, deleteData bool) error
	AlterPartition(ctx context.Context, databaseName, tableName string, partition types.Partition) error

	GetRoles(ctx context.Context, user string) ([]string, error)
	GetDatabasePrivileges(ctx context.Context, user, databaseName string) ([]types.PrivilegeInfo, error)
	GetTablePrivileges(ctx context.Context, user, databaseName, tableName string) ([]types.PrivilegeInfo, error)
	GrantTablePrivileges(ctx context.Context, databaseName, tableName, grantee string, privileges []types.PrivilegeInfo) error
	RevokeTablePrivileges(ctx context.Context, databaseName, tableName, grantee string, privileges []types.PrivilegeInfo) error
	GetTableColumnStatistics(ctx context.Context, databaseName, tableName string, columnNames []string) (map[string]types.ColumnStatistics, error)
	GetPartitionColumnStatistics(ctx context.Context, databaseName, tableName string, partitionNames, columnNames []string) (map[string]map[string]types.ColumnStatistics, error)
}
