package metastore

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"

	"github.com/arkilian/glue-metastore/internal/catalog"
	merrors "github.com/arkilian/glue-metastore/internal/errors"
	"github.com/arkilian/glue-metastore/internal/mapper"
	"github.com/arkilian/glue-metastore/pkg/types"
)

// GetTable looks up a table. A missing table is reported as (zero, false, nil).
func (m *GlueMetastore) GetTable(ctx context.Context, databaseName, tableName string) (types.Table, bool, error) {
	t, err := m.getGlueTable(ctx, databaseName, tableName)
	if err != nil {
		if catalog.IsEntityNotFound(err) {
			return types.Table{}, false, nil
		}
		return types.Table{}, false, err
	}
	return mapper.ToTable(t), true, nil
}

// GetAllTables returns the names of every table in a database, in page order.
func (m *GlueMetastore) GetAllTables(ctx context.Context, databaseName string) ([]string, error) {
	p := glue.NewGetTablesPaginator(m.client, &glue.GetTablesInput{
		CatalogId:    m.catalogID,
		DatabaseName: aws.String(databaseName),
	}, func(o *glue.GetTablesPaginatorOptions) {
		o.Limit = m.pageSize
	})

	names := []string{}
	for p.HasMorePages() {
		var page *glue.GetTablesOutput
		err := m.call(ctx, "GetTables", func(ctx context.Context) (err error) {
			page, err = p.NextPage(ctx)
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, t := range page.TableList {
			names = append(names, aws.ToString(t.Name))
		}
	}
	return names, nil
}

// CreateTable registers a table with its columns, partition keys, storage
// and view text. Principal privileges are accepted but not applied.
func (m *GlueMetastore) CreateTable(ctx context.Context, table types.Table, privileges types.PrincipalPrivileges) error {
	if err := table.Validate(); err != nil {
		return merrors.NewValidationError(merrors.CodeMissingRequiredField, err.Error())
	}
	input, err := mapper.ToTableInput(table)
	if err != nil {
		return err
	}
	if len(privileges.UserPrivileges) > 0 || len(privileges.RolePrivileges) > 0 {
		m.logger.Debug("ignoring principal privileges", "database", table.DatabaseName, "table", table.TableName)
	}
	return m.call(ctx, "CreateTable", func(ctx context.Context) error {
		_, err := m.client.CreateTable(ctx, &glue.CreateTableInput{
			CatalogId:    m.catalogID,
			DatabaseName: aws.String(table.DatabaseName),
			TableInput:   input,
		})
		return err
	})
}

// DropTable deletes a table. With deleteData, the data of a managed table is
// removed after the catalog entry when data deletion is enabled and a data
// store is configured; otherwise the flag is ignored.
func (m *GlueMetastore) DropTable(ctx context.Context, databaseName, tableName string, deleteData bool) error {
	var location string
	purge := false
	if m.shouldDeleteData(deleteData) {
		t, err := m.getGlueTable(ctx, databaseName, tableName)
		if err != nil {
			return err
		}
		table := mapper.ToTable(t)
		purge = table.TableType == types.TableTypeManaged
		location = table.Storage.Location
	}

	err := m.call(ctx, "DeleteTable", func(ctx context.Context) error {
		_, err := m.client.DeleteTable(ctx, &glue.DeleteTableInput{
			CatalogId:    m.catalogID,
			DatabaseName: aws.String(databaseName),
			Name:         aws.String(tableName),
		})
		return err
	})
	if err != nil || !purge {
		return err
	}
	return m.removeData(ctx, databaseName+"."+tableName, location)
}

// ReplaceTable drops the table and creates newTable in its place. The two
// remote calls are not atomic: a failed create leaves the table absent.
func (m *GlueMetastore) ReplaceTable(ctx context.Context, databaseName, tableName string, newTable types.Table, privileges types.PrincipalPrivileges) error {
	if err := m.DropTable(ctx, databaseName, tableName, false); err != nil {
		return err
	}
	return m.CreateTable(ctx, newTable, privileges)
}

// RenameTable copies the table under its new identity, then drops the
// original. The two remote calls are not atomic.
func (m *GlueMetastore) RenameTable(ctx context.Context, databaseName, tableName, newDatabaseName, newTableName string) error {
	if databaseName == newDatabaseName && tableName == newTableName {
		return nil
	}
	t, err := m.requireGlueTable(ctx, databaseName, tableName)
	if err != nil {
		return err
	}

	renamed := mapper.ToTable(t)
	renamed.DatabaseName = newDatabaseName
	renamed.TableName = newTableName

	if err := m.CreateTable(ctx, renamed, types.PrincipalPrivileges{}); err != nil {
		return err
	}
	return m.DropTable(ctx, databaseName, tableName, false)
}

// GetAllViews is not supported by the Glue backend.
func (m *GlueMetastore) GetAllViews(ctx context.Context, databaseName string) ([]string, error) {
	return nil, merrors.NewNotSupportedError("GetAllViews")
}

func (m *GlueMetastore) getGlueTable(ctx context.Context, databaseName, tableName string) (*gluetypes.Table, error) {
	if databaseName == "" {
		return nil, merrors.NewMissingFieldError("table", "database name")
	}
	if tableName == "" {
		return nil, merrors.NewMissingFieldError("table", "name")
	}
	var out *glue.GetTableOutput
	err := m.call(ctx, "GetTable", func(ctx context.Context) (err error) {
		out, err = m.client.GetTable(ctx, &glue.GetTableInput{
			CatalogId:    m.catalogID,
			DatabaseName: aws.String(databaseName),
			Name:         aws.String(tableName),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if out.Table == nil {
		return nil, merrors.NewRemoteError(merrors.CodeEntityNotFound,
			fmt.Sprintf("table %s.%s not returned", databaseName, tableName), nil)
	}
	return out.Table, nil
}

// requireGlueTable is getGlueTable for operations that cannot proceed
// without the table; absence becomes a TABLE_NOT_FOUND error.
func (m *GlueMetastore) requireGlueTable(ctx context.Context, databaseName, tableName string) (*gluetypes.Table, error) {
	t, err := m.getGlueTable(ctx, databaseName, tableName)
	if err != nil {
		if catalog.IsEntityNotFound(err) {
			return nil, merrors.Wrap(merrors.ErrCategoryMetastore, merrors.CodeTableNotFound,
				fmt.Sprintf("table %s.%s not found", databaseName, tableName), err)
		}
		return nil, err
	}
	return t, nil
}
