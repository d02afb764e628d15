package metastore

import (
	"context"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"

	merrors "github.com/arkilian/glue-metastore/internal/errors"
	"github.com/arkilian/glue-metastore/internal/mapper"
	"github.com/arkilian/glue-metastore/pkg/types"
)

// AddColumn appends a data column to a table.
func (m *GlueMetastore) AddColumn(ctx context.Context, databaseName, tableName, columnName string, columnType types.HiveType, columnComment *string) error {
	if columnName == "" {
		return merrors.NewMissingFieldError("column", "name")
	}
	return m.alterColumns(ctx, databaseName, tableName, func(table *types.Table, columns []gluetypes.Column) ([]gluetypes.Column, error) {
		if _, exists := table.Column(columnName); exists {
			return nil, columnExists(table, columnName)
		}
		column := types.Column{Name: columnName, Type: columnType}
		if columnComment != nil {
			column.Comment = aws.String(*columnComment)
		}
		return append(columns, mapper.ToGlueColumn(column)), nil
	})
}

// RenameColumn renames a data column in place, keeping its type, comment
// and parameters. Partition columns cannot be renamed. Renaming a column to
// its own name is a no-op.
func (m *GlueMetastore) RenameColumn(ctx context.Context, databaseName, tableName, oldColumnName, newColumnName string) error {
	if newColumnName == "" {
		return merrors.NewMissingFieldError("column", "name")
	}
	if oldColumnName == newColumnName {
		return nil
	}
	return m.alterColumns(ctx, databaseName, tableName, func(table *types.Table, columns []gluetypes.Column) ([]gluetypes.Column, error) {
		if err := checkNotPartitionColumn(table, oldColumnName, "rename"); err != nil {
			return nil, err
		}
		if _, exists := table.Column(newColumnName); exists {
			return nil, columnExists(table, newColumnName)
		}
		i := columnIndex(columns, oldColumnName)
		if i < 0 {
			return nil, columnNotFound(table, oldColumnName)
		}
		columns[i].Name = aws.String(newColumnName)
		return columns, nil
	})
}

// DropColumn removes a data column. Partition columns and the last
// remaining data column cannot be dropped.
func (m *GlueMetastore) DropColumn(ctx context.Context, databaseName, tableName, columnName string) error {
	return m.alterColumns(ctx, databaseName, tableName, func(table *types.Table, columns []gluetypes.Column) ([]gluetypes.Column, error) {
		if err := checkNotPartitionColumn(table, columnName, "drop"); err != nil {
			return nil, err
		}
		i := columnIndex(columns, columnName)
		if i < 0 {
			return nil, columnNotFound(table, columnName)
		}
		if len(columns) == 1 {
			return nil, merrors.NewValidationError(merrors.CodeInvalidInput,
				fmt.Sprintf("cannot drop the only column of table %s.%s", table.DatabaseName, table.TableName))
		}
		return append(columns[:i], columns[i+1:]...), nil
	})
}

// columnMutation computes the new data columns of a table. columns is a
// private copy of the columns as read.
type columnMutation func(table *types.Table, columns []gluetypes.Column) ([]gluetypes.Column, error)

// alterColumns reads the table, applies mutate and writes the table back as
// read with only its data columns replaced, conditioned on the version that
// was read. A concurrent writer makes the update fail with
// CONCURRENT_MODIFICATION.
func (m *GlueMetastore) alterColumns(ctx context.Context, databaseName, tableName string, mutate columnMutation) error {
	t, err := m.requireGlueTable(ctx, databaseName, tableName)
	if err != nil {
		return err
	}

	table := mapper.ToTable(t)
	var current []gluetypes.Column
	if t.StorageDescriptor != nil {
		current = slices.Clone(t.StorageDescriptor.Columns)
	}
	columns, err := mutate(&table, current)
	if err != nil {
		return err
	}

	input := mapper.ToTableUpdateInput(t, columns)
	return m.call(ctx, "UpdateTable", func(ctx context.Context) error {
		_, err := m.client.UpdateTable(ctx, &glue.UpdateTableInput{
			CatalogId:    m.catalogID,
			DatabaseName: aws.String(databaseName),
			TableInput:   input,
			VersionId:    t.VersionId,
		})
		return err
	})
}

func columnIndex(columns []gluetypes.Column, name string) int {
	for i, c := range columns {
		if aws.ToString(c.Name) == name {
			return i
		}
	}
	return -1
}

func checkNotPartitionColumn(table *types.Table, name, action string) error {
	for _, c := range table.PartitionColumns {
		if c.Name == name {
			return merrors.NewValidationError(merrors.CodeInvalidInput,
				fmt.Sprintf("cannot %s partition column %s of table %s.%s", action, name, table.DatabaseName, table.TableName))
		}
	}
	return nil
}

func columnExists(table *types.Table, name string) error {
	return merrors.NewValidationError(merrors.CodeColumnExists,
		fmt.Sprintf("column %s already exists in table %s.%s", name, table.DatabaseName, table.TableName))
}

func columnNotFound(table *types.Table, name string) error {
	return merrors.NewValidationError(merrors.CodeColumnNotFound,
		fmt.Sprintf("column %s not found in table %s.%s", name, table.DatabaseName, table.TableName))
}
