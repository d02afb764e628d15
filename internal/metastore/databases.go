package metastore

import (
	"context"
	"fmt"
	"maps"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"

	"github.com/arkilian/glue-metastore/internal/catalog"
	merrors "github.com/arkilian/glue-metastore/internal/errors"
	"github.com/arkilian/glue-metastore/internal/mapper"
	"github.com/arkilian/glue-metastore/pkg/types"
)

// GetDatabase looks up a database by name. A missing database is reported
// as (zero, false, nil).
func (m *GlueMetastore) GetDatabase(ctx context.Context, databaseName string) (types.Database, bool, error) {
	db, err := m.getGlueDatabase(ctx, databaseName)
	if err != nil {
		if catalog.IsEntityNotFound(err) {
			return types.Database{}, false, nil
		}
		return types.Database{}, false, err
	}
	return mapper.ToDatabase(db), true, nil
}

// GetAllDatabases returns the names of every database in page order.
func (m *GlueMetastore) GetAllDatabases(ctx context.Context) ([]string, error) {
	p := glue.NewGetDatabasesPaginator(m.client, &glue.GetDatabasesInput{
		CatalogId: m.catalogID,
	}, func(o *glue.GetDatabasesPaginatorOptions) {
		o.Limit = m.pageSize
	})

	names := []string{}
	for p.HasMorePages() {
		var page *glue.GetDatabasesOutput
		err := m.call(ctx, "GetDatabases", func(ctx context.Context) (err error) {
			page, err = p.NextPage(ctx)
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, db := range page.DatabaseList {
			names = append(names, aws.ToString(db.Name))
		}
	}
	return names, nil
}

// CreateDatabase registers a new database. The database must carry a location.
func (m *GlueMetastore) CreateDatabase(ctx context.Context, database types.Database) error {
	input, err := mapper.ToDatabaseInput(database)
	if err != nil {
		return err
	}
	return m.call(ctx, "CreateDatabase", func(ctx context.Context) error {
		_, err := m.client.CreateDatabase(ctx, &glue.CreateDatabaseInput{
			CatalogId:     m.catalogID,
			DatabaseInput: input,
		})
		return err
	})
}

// RenameDatabase renames a database in place. The update is keyed by the
// current name and carries the new name with the current location,
// description and parameters.
func (m *GlueMetastore) RenameDatabase(ctx context.Context, databaseName, newDatabaseName string) error {
	if newDatabaseName == "" {
		return merrors.NewMissingFieldError("database", "name")
	}
	if databaseName == newDatabaseName {
		return nil
	}

	db, err := m.getGlueDatabase(ctx, databaseName)
	if err != nil {
		if catalog.IsEntityNotFound(err) {
			return databaseNotFound(databaseName, err)
		}
		return err
	}

	input := &gluetypes.DatabaseInput{
		Name:        aws.String(newDatabaseName),
		LocationUri: db.LocationUri,
		Description: db.Description,
		Parameters:  maps.Clone(db.Parameters),
	}
	return m.call(ctx, "UpdateDatabase", func(ctx context.Context) error {
		_, err := m.client.UpdateDatabase(ctx, &glue.UpdateDatabaseInput{
			CatalogId:     m.catalogID,
			Name:          aws.String(databaseName),
			DatabaseInput: input,
		})
		return err
	})
}

// DropDatabase deletes a database. Glue removes contained tables; no
// emptiness check is made.
func (m *GlueMetastore) DropDatabase(ctx context.Context, databaseName string) error {
	return m.call(ctx, "DeleteDatabase", func(ctx context.Context) error {
		_, err := m.client.DeleteDatabase(ctx, &glue.DeleteDatabaseInput{
			CatalogId: m.catalogID,
			Name:      aws.String(databaseName),
		})
		return err
	})
}

func (m *GlueMetastore) getGlueDatabase(ctx context.Context, databaseName string) (*gluetypes.Database, error) {
	if databaseName == "" {
		return nil, merrors.NewMissingFieldError("database", "name")
	}
	var out *glue.GetDatabaseOutput
	err := m.call(ctx, "GetDatabase", func(ctx context.Context) (err error) {
		out, err = m.client.GetDatabase(ctx, &glue.GetDatabaseInput{
			CatalogId: m.catalogID,
			Name:      aws.String(databaseName),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if out.Database == nil {
		return nil, merrors.NewRemoteError(merrors.CodeEntityNotFound,
			fmt.Sprintf("database %s not returned", databaseName), nil)
	}
	return out.Database, nil
}

func databaseNotFound(databaseName string, cause error) error {
	return merrors.Wrap(merrors.ErrCategoryMetastore, merrors.CodeDatabaseNotFound,
		fmt.Sprintf("database %s not found", databaseName), cause)
}
