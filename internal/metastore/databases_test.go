package metastore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	merrors "github.com/arkilian/glue-metastore/internal/errors"
	"github.com/arkilian/glue-metastore/internal/observability"
	"github.com/arkilian/glue-metastore/pkg/types"
)

func newTestMetastore(client *fakeGlue) *GlueMetastore {
	return NewGlueMetastore(client, DefaultConfig())
}

func TestGetAllDatabases_Paginates(t *testing.T) {
	fake := newFakeGlue()
	for i := 0; i < 237; i++ {
		fake.addDatabase(fmt.Sprintf("db%03d", i))
	}
	m := newTestMetastore(fake)

	names, err := m.GetAllDatabases(context.Background())
	require.NoError(t, err)

	require.Len(t, names, 237)
	seen := make(map[string]bool, len(names))
	for i, name := range names {
		assert.Equal(t, fmt.Sprintf("db%03d", i), name, "page order must be preserved")
		assert.False(t, seen[name], "duplicate name %s", name)
		seen[name] = true
	}

	inputs := inputsOf[*glue.GetDatabasesInput](fake)
	require.Len(t, inputs, 3)
	assert.Nil(t, inputs[0].NextToken)
	assert.Equal(t, "100", aws.ToString(inputs[1].NextToken))
	assert.Equal(t, "200", aws.ToString(inputs[2].NextToken))
	for _, in := range inputs {
		assert.Equal(t, int32(100), aws.ToInt32(in.MaxResults))
	}
}

func TestGetAllDatabases_Empty(t *testing.T) {
	fake := newFakeGlue()
	names, err := newTestMetastore(fake).GetAllDatabases(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.Equal(t, 1, fake.CountCalls("GetDatabases"))
}

func TestGetAllDatabases_PageSizeAndCatalogID(t *testing.T) {
	fake := newFakeGlue()
	for i := 0; i < 5; i++ {
		fake.addDatabase(fmt.Sprintf("db%d", i))
	}
	m := NewGlueMetastore(fake, Config{CatalogID: "123456789012", PageSize: 2})

	names, err := m.GetAllDatabases(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"db0", "db1", "db2", "db3", "db4"}, names)

	inputs := inputsOf[*glue.GetDatabasesInput](fake)
	require.Len(t, inputs, 3)
	assert.Equal(t, "123456789012", aws.ToString(inputs[0].CatalogId))
	assert.Equal(t, int32(2), aws.ToInt32(inputs[0].MaxResults))
}

func TestGetAllDatabases_RemoteFailure(t *testing.T) {
	fake := newFakeGlue()
	fake.failures["GetDatabases"] = &smithy.GenericAPIError{Code: "ThrottlingException", Message: "Rate exceeded"}

	_, err := newTestMetastore(fake).GetAllDatabases(context.Background())
	require.Error(t, err)
	assert.Equal(t, merrors.CodeThrottled, merrors.GetCode(err))
	assert.True(t, merrors.IsRetryable(err))

	var apiErr *smithy.GenericAPIError
	assert.True(t, errors.As(err, &apiErr), "remote error must stay reachable")
	assert.Equal(t, 1, fake.CountCalls("GetDatabases"), "the adapter does not retry")
}

func TestGetDatabase(t *testing.T) {
	fake := newFakeGlue()
	fake.addDatabase("sales")
	m := newTestMetastore(fake)

	db, ok, err := m.GetDatabase(context.Background(), "sales")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "sales", db.Name)
	assert.Equal(t, "s3://warehouse/sales", aws.ToString(db.Location))
	assert.Equal(t, "sales database", aws.ToString(db.Comment))
	assert.Equal(t, "etl", db.Parameters["owner"])
	assert.Equal(t, "1700000000", db.Parameters["CreateTime"])
}

func TestGetDatabase_NotFoundIsAbsent(t *testing.T) {
	fake := newFakeGlue()
	_, ok, err := newTestMetastore(fake).GetDatabase(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, fake.CountCalls("GetDatabase"))
}

func TestGetDatabase_OtherErrorsPropagate(t *testing.T) {
	fake := newFakeGlue()
	fake.failures["GetDatabase"] = &smithy.GenericAPIError{Code: "AccessDeniedException"}

	_, ok, err := newTestMetastore(fake).GetDatabase(context.Background(), "sales")
	assert.False(t, ok)
	assert.Equal(t, merrors.CodeAccessDenied, merrors.GetCode(err))
}

func TestCreateDatabase(t *testing.T) {
	fake := newFakeGlue()
	m := newTestMetastore(fake)

	err := m.CreateDatabase(context.Background(), types.Database{
		Name:       "web",
		Location:   aws.String("s3://warehouse/web"),
		Parameters: map[string]string{"team": "growth"},
	})
	require.NoError(t, err)

	inputs := inputsOf[*glue.CreateDatabaseInput](fake)
	require.Len(t, inputs, 1)
	assert.Equal(t, "web", aws.ToString(inputs[0].DatabaseInput.Name))
	assert.Equal(t, "", aws.ToString(inputs[0].DatabaseInput.Description))

	db, ok, err := m.GetDatabase(context.Background(), "web")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, db.Comment, "empty description reads back as an absent comment")
	assert.Equal(t, "growth", db.Parameters["team"])
}

func TestCreateDatabase_MissingLocation(t *testing.T) {
	fake := newFakeGlue()
	err := newTestMetastore(fake).CreateDatabase(context.Background(), types.Database{Name: "foo"})
	assert.Equal(t, merrors.CodeMissingRequiredField, merrors.GetCode(err))
	assert.Empty(t, fake.Calls(), "invalid input must not reach the catalog")
}

func TestCreateDatabase_AlreadyExists(t *testing.T) {
	fake := newFakeGlue()
	fake.addDatabase("web")
	err := newTestMetastore(fake).CreateDatabase(context.Background(), types.Database{
		Name:     "web",
		Location: aws.String("s3://warehouse/web"),
	})
	assert.Equal(t, merrors.CodeAlreadyExists, merrors.GetCode(err))
}

func TestRenameDatabase_UpdatesInPlace(t *testing.T) {
	fake := newFakeGlue()
	fake.addDatabase("old")
	m := newTestMetastore(fake)

	require.NoError(t, m.RenameDatabase(context.Background(), "old", "new"))

	assert.Equal(t, []string{"GetDatabase", "UpdateDatabase"}, fake.Calls())
	update := inputsOf[*glue.UpdateDatabaseInput](fake)[0]
	assert.Equal(t, "old", aws.ToString(update.Name), "update is keyed by the current name")
	assert.Equal(t, "new", aws.ToString(update.DatabaseInput.Name))
	assert.Equal(t, "s3://warehouse/old", aws.ToString(update.DatabaseInput.LocationUri))
	assert.Equal(t, "old database", aws.ToString(update.DatabaseInput.Description))
	assert.Equal(t, map[string]string{"owner": "etl"}, update.DatabaseInput.Parameters)

	_, ok, err := m.GetDatabase(context.Background(), "new")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRenameDatabase_Missing(t *testing.T) {
	fake := newFakeGlue()
	err := newTestMetastore(fake).RenameDatabase(context.Background(), "ghost", "new")
	require.Error(t, err)
	assert.Equal(t, merrors.CodeDatabaseNotFound, merrors.GetCode(err))
	assert.True(t, merrors.IsNotFound(err))
	assert.Equal(t, 0, fake.CountCalls("UpdateDatabase"))
}

func TestRenameDatabase_SameName(t *testing.T) {
	fake := newFakeGlue()
	fake.addDatabase("same")
	require.NoError(t, newTestMetastore(fake).RenameDatabase(context.Background(), "same", "same"))
	assert.Empty(t, fake.Calls())
}

func TestDropDatabase(t *testing.T) {
	fake := newFakeGlue()
	fake.addDatabase("tmp")
	m := newTestMetastore(fake)

	require.NoError(t, m.DropDatabase(context.Background(), "tmp"))
	_, ok, err := m.GetDatabase(context.Background(), "tmp")
	require.NoError(t, err)
	assert.False(t, ok)

	err = m.DropDatabase(context.Background(), "tmp")
	assert.Equal(t, merrors.CodeEntityNotFound, merrors.GetCode(err), "list and mutating operations propagate not found")
}

func TestCallStatsRecorded(t *testing.T) {
	fake := newFakeGlue()
	fake.addDatabase("sales")
	stats := observability.NewCallStats(time.Hour)
	m := NewGlueMetastore(fake, Config{Stats: stats})

	_, _, err := m.GetDatabase(context.Background(), "sales")
	require.NoError(t, err)
	_, _, err = m.GetDatabase(context.Background(), "missing")
	require.NoError(t, err)

	s, ok := stats.Get("GetDatabase")
	require.True(t, ok)
	assert.Equal(t, int64(2), s.Calls)
	assert.Equal(t, int64(1), s.Failures)
	assert.Equal(t, 1, s.ErrorCodes[merrors.CodeEntityNotFound])
}
