package metastore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"

	"github.com/arkilian/glue-metastore/internal/catalog"
)

// fakeGlue is an in-memory Glue catalog that records every call in order.
type fakeGlue struct {
	mu sync.Mutex

	calls  []string
	inputs []interface{}

	databases  []gluetypes.Database
	tables     map[string][]gluetypes.Table
	versions   map[string]int
	partitions map[string][]gluetypes.Partition

	// failures maps an operation name to the error it returns.
	failures map[string]error

	// unprocessedRounds makes the next N BatchGetPartition calls return
	// every key as unprocessed.
	unprocessedRounds int
}

var _ catalog.Client = (*fakeGlue)(nil)

func newFakeGlue() *fakeGlue {
	return &fakeGlue{
		tables:     make(map[string][]gluetypes.Table),
		versions:   make(map[string]int),
		partitions: make(map[string][]gluetypes.Partition),
		failures:   make(map[string]error),
	}
}

func (f *fakeGlue) record(op string, input interface{}) error {
	f.calls = append(f.calls, op)
	f.inputs = append(f.inputs, input)
	return f.failures[op]
}

// Calls returns the recorded operation names in call order.
func (f *fakeGlue) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CountCalls returns how many times op was called.
func (f *fakeGlue) CountCalls(op string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == op {
			n++
		}
	}
	return n
}

// Inputs returns every recorded input of type T in call order.
func inputsOf[T any](f *fakeGlue) []T {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []T
	for _, in := range f.inputs {
		if v, ok := in.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func (f *fakeGlue) addDatabase(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	created := time.Unix(1700000000, 0)
	f.databases = append(f.databases, gluetypes.Database{
		Name:        aws.String(name),
		LocationUri: aws.String("s3://warehouse/" + name),
		Description: aws.String(name + " database"),
		Parameters:  map[string]string{"owner": "etl"},
		CreateTime:  &created,
	})
}

func (f *fakeGlue) addTable(databaseName string, t gluetypes.Table) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.DatabaseName = aws.String(databaseName)
	key := tableKey(databaseName, aws.ToString(t.Name))
	f.versions[key] = 1
	f.tables[databaseName] = append(f.tables[databaseName], t)
}

func (f *fakeGlue) addPartition(databaseName, tableName string, values ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := tableKey(databaseName, tableName)
	f.partitions[key] = append(f.partitions[key], gluetypes.Partition{
		DatabaseName: aws.String(databaseName),
		TableName:    aws.String(tableName),
		Values:       values,
		Parameters:   map[string]string{},
		StorageDescriptor: &gluetypes.StorageDescriptor{
			Location: aws.String(fmt.Sprintf("s3://warehouse/%s/%s/%v", databaseName, tableName, values)),
		},
	})
}

func tableKey(databaseName, tableName string) string {
	return databaseName + "." + tableName
}

func notFound(format string, args ...interface{}) error {
	return &gluetypes.EntityNotFoundException{Message: aws.String(fmt.Sprintf(format, args...))}
}

// page slices n items by MaxResults and a numeric continuation token.
func page(n int, maxResults *int32, nextToken *string) (start, end int, next *string) {
	if nextToken != nil {
		start, _ = strconv.Atoi(aws.ToString(nextToken))
	}
	size := n
	if maxResults != nil {
		size = int(*maxResults)
	}
	end = min(start+size, n)
	if end < n {
		next = aws.String(strconv.Itoa(end))
	}
	return start, end, next
}

func (f *fakeGlue) findDatabase(name string) int {
	for i, db := range f.databases {
		if aws.ToString(db.Name) == name {
			return i
		}
	}
	return -1
}

func (f *fakeGlue) findTable(databaseName, tableName string) int {
	for i, t := range f.tables[databaseName] {
		if aws.ToString(t.Name) == tableName {
			return i
		}
	}
	return -1
}

func (f *fakeGlue) findPartition(key string, values []string) int {
	for i, p := range f.partitions[key] {
		if slices.Equal(p.Values, values) {
			return i
		}
	}
	return -1
}

func (f *fakeGlue) GetDatabase(ctx context.Context, params *glue.GetDatabaseInput, optFns ...func(*glue.Options)) (*glue.GetDatabaseOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetDatabase", params); err != nil {
		return nil, err
	}
	i := f.findDatabase(aws.ToString(params.Name))
	if i < 0 {
		return nil, notFound("Database %s not found.", aws.ToString(params.Name))
	}
	db := f.databases[i]
	db.Parameters = maps.Clone(db.Parameters)
	return &glue.GetDatabaseOutput{Database: &db}, nil
}

func (f *fakeGlue) GetDatabases(ctx context.Context, params *glue.GetDatabasesInput, optFns ...func(*glue.Options)) (*glue.GetDatabasesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetDatabases", params); err != nil {
		return nil, err
	}
	start, end, next := page(len(f.databases), params.MaxResults, params.NextToken)
	return &glue.GetDatabasesOutput{
		DatabaseList: slices.Clone(f.databases[start:end]),
		NextToken:    next,
	}, nil
}

func (f *fakeGlue) CreateDatabase(ctx context.Context, params *glue.CreateDatabaseInput, optFns ...func(*glue.Options)) (*glue.CreateDatabaseOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateDatabase", params); err != nil {
		return nil, err
	}
	in := params.DatabaseInput
	if f.findDatabase(aws.ToString(in.Name)) >= 0 {
		return nil, &gluetypes.AlreadyExistsException{Message: aws.String("Database already exists.")}
	}
	f.databases = append(f.databases, gluetypes.Database{
		Name:        in.Name,
		LocationUri: in.LocationUri,
		Description: in.Description,
		Parameters:  maps.Clone(in.Parameters),
	})
	return &glue.CreateDatabaseOutput{}, nil
}

func (f *fakeGlue) UpdateDatabase(ctx context.Context, params *glue.UpdateDatabaseInput, optFns ...func(*glue.Options)) (*glue.UpdateDatabaseOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateDatabase", params); err != nil {
		return nil, err
	}
	i := f.findDatabase(aws.ToString(params.Name))
	if i < 0 {
		return nil, notFound("Database %s not found.", aws.ToString(params.Name))
	}
	in := params.DatabaseInput
	f.databases[i].Name = in.Name
	f.databases[i].LocationUri = in.LocationUri
	f.databases[i].Description = in.Description
	f.databases[i].Parameters = maps.Clone(in.Parameters)
	return &glue.UpdateDatabaseOutput{}, nil
}

func (f *fakeGlue) DeleteDatabase(ctx context.Context, params *glue.DeleteDatabaseInput, optFns ...func(*glue.Options)) (*glue.DeleteDatabaseOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteDatabase", params); err != nil {
		return nil, err
	}
	name := aws.ToString(params.Name)
	i := f.findDatabase(name)
	if i < 0 {
		return nil, notFound("Database %s not found.", name)
	}
	f.databases = slices.Delete(f.databases, i, i+1)
	delete(f.tables, name)
	return &glue.DeleteDatabaseOutput{}, nil
}

func (f *fakeGlue) GetTable(ctx context.Context, params *glue.GetTableInput, optFns ...func(*glue.Options)) (*glue.GetTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetTable", params); err != nil {
		return nil, err
	}
	db, name := aws.ToString(params.DatabaseName), aws.ToString(params.Name)
	i := f.findTable(db, name)
	if i < 0 {
		return nil, notFound("Table %s not found.", name)
	}
	t := f.tables[db][i]
	t.VersionId = aws.String(strconv.Itoa(f.versions[tableKey(db, name)]))
	return &glue.GetTableOutput{Table: &t}, nil
}

func (f *fakeGlue) GetTables(ctx context.Context, params *glue.GetTablesInput, optFns ...func(*glue.Options)) (*glue.GetTablesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetTables", params); err != nil {
		return nil, err
	}
	db := aws.ToString(params.DatabaseName)
	if f.findDatabase(db) < 0 {
		return nil, notFound("Database %s not found.", db)
	}
	tables := f.tables[db]
	start, end, next := page(len(tables), params.MaxResults, params.NextToken)
	return &glue.GetTablesOutput{
		TableList: slices.Clone(tables[start:end]),
		NextToken: next,
	}, nil
}

func tableFromInput(databaseName string, in *gluetypes.TableInput) gluetypes.Table {
	return gluetypes.Table{
		Name:              in.Name,
		DatabaseName:      aws.String(databaseName),
		Owner:             in.Owner,
		TableType:         in.TableType,
		Parameters:        maps.Clone(in.Parameters),
		PartitionKeys:     slices.Clone(in.PartitionKeys),
		StorageDescriptor: in.StorageDescriptor,
		ViewOriginalText:  in.ViewOriginalText,
		ViewExpandedText:  in.ViewExpandedText,
	}
}

func (f *fakeGlue) CreateTable(ctx context.Context, params *glue.CreateTableInput, optFns ...func(*glue.Options)) (*glue.CreateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateTable", params); err != nil {
		return nil, err
	}
	db, name := aws.ToString(params.DatabaseName), aws.ToString(params.TableInput.Name)
	if f.findDatabase(db) < 0 {
		return nil, notFound("Database %s not found.", db)
	}
	if f.findTable(db, name) >= 0 {
		return nil, &gluetypes.AlreadyExistsException{Message: aws.String("Table already exists.")}
	}
	f.tables[db] = append(f.tables[db], tableFromInput(db, params.TableInput))
	f.versions[tableKey(db, name)] = 1
	return &glue.CreateTableOutput{}, nil
}

func (f *fakeGlue) UpdateTable(ctx context.Context, params *glue.UpdateTableInput, optFns ...func(*glue.Options)) (*glue.UpdateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateTable", params); err != nil {
		return nil, err
	}
	db, name := aws.ToString(params.DatabaseName), aws.ToString(params.TableInput.Name)
	i := f.findTable(db, name)
	if i < 0 {
		return nil, notFound("Table %s not found.", name)
	}
	key := tableKey(db, name)
	if params.VersionId != nil && aws.ToString(params.VersionId) != strconv.Itoa(f.versions[key]) {
		return nil, &gluetypes.ConcurrentModificationException{Message: aws.String("Table version mismatch.")}
	}
	f.tables[db][i] = tableFromInput(db, params.TableInput)
	f.versions[key]++
	return &glue.UpdateTableOutput{}, nil
}

func (f *fakeGlue) DeleteTable(ctx context.Context, params *glue.DeleteTableInput, optFns ...func(*glue.Options)) (*glue.DeleteTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteTable", params); err != nil {
		return nil, err
	}
	db, name := aws.ToString(params.DatabaseName), aws.ToString(params.Name)
	i := f.findTable(db, name)
	if i < 0 {
		return nil, notFound("Table %s not found.", name)
	}
	f.tables[db] = slices.Delete(f.tables[db], i, i+1)
	delete(f.partitions, tableKey(db, name))
	return &glue.DeleteTableOutput{}, nil
}

func (f *fakeGlue) GetPartition(ctx context.Context, params *glue.GetPartitionInput, optFns ...func(*glue.Options)) (*glue.GetPartitionOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetPartition", params); err != nil {
		return nil, err
	}
	key := tableKey(aws.ToString(params.DatabaseName), aws.ToString(params.TableName))
	i := f.findPartition(key, params.PartitionValues)
	if i < 0 {
		return nil, notFound("Partition %v not found.", params.PartitionValues)
	}
	p := f.partitions[key][i]
	return &glue.GetPartitionOutput{Partition: &p}, nil
}

func (f *fakeGlue) GetPartitions(ctx context.Context, params *glue.GetPartitionsInput, optFns ...func(*glue.Options)) (*glue.GetPartitionsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetPartitions", params); err != nil {
		return nil, err
	}
	partitions := f.partitions[tableKey(aws.ToString(params.DatabaseName), aws.ToString(params.TableName))]
	start, end, next := page(len(partitions), params.MaxResults, params.NextToken)
	return &glue.GetPartitionsOutput{
		Partitions: slices.Clone(partitions[start:end]),
		NextToken:  next,
	}, nil
}

func (f *fakeGlue) BatchGetPartition(ctx context.Context, params *glue.BatchGetPartitionInput, optFns ...func(*glue.Options)) (*glue.BatchGetPartitionOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("BatchGetPartition", params); err != nil {
		return nil, err
	}
	if f.unprocessedRounds > 0 {
		f.unprocessedRounds--
		return &glue.BatchGetPartitionOutput{UnprocessedKeys: slices.Clone(params.PartitionsToGet)}, nil
	}
	key := tableKey(aws.ToString(params.DatabaseName), aws.ToString(params.TableName))
	out := &glue.BatchGetPartitionOutput{}
	for _, v := range params.PartitionsToGet {
		if i := f.findPartition(key, v.Values); i >= 0 {
			out.Partitions = append(out.Partitions, f.partitions[key][i])
		}
	}
	return out, nil
}

func (f *fakeGlue) BatchCreatePartition(ctx context.Context, params *glue.BatchCreatePartitionInput, optFns ...func(*glue.Options)) (*glue.BatchCreatePartitionOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("BatchCreatePartition", params); err != nil {
		return nil, err
	}
	db, name := aws.ToString(params.DatabaseName), aws.ToString(params.TableName)
	key := tableKey(db, name)
	out := &glue.BatchCreatePartitionOutput{}
	for _, in := range params.PartitionInputList {
		if f.findPartition(key, in.Values) >= 0 {
			out.Errors = append(out.Errors, gluetypes.PartitionError{
				PartitionValues: in.Values,
				ErrorDetail: &gluetypes.ErrorDetail{
					ErrorCode:    aws.String("AlreadyExistsException"),
					ErrorMessage: aws.String("Partition already exists."),
				},
			})
			continue
		}
		f.partitions[key] = append(f.partitions[key], gluetypes.Partition{
			DatabaseName:      aws.String(db),
			TableName:         aws.String(name),
			Values:            slices.Clone(in.Values),
			Parameters:        maps.Clone(in.Parameters),
			StorageDescriptor: in.StorageDescriptor,
		})
	}
	return out, nil
}

func (f *fakeGlue) UpdatePartition(ctx context.Context, params *glue.UpdatePartitionInput, optFns ...func(*glue.Options)) (*glue.UpdatePartitionOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdatePartition", params); err != nil {
		return nil, err
	}
	key := tableKey(aws.ToString(params.DatabaseName), aws.ToString(params.TableName))
	i := f.findPartition(key, params.PartitionValueList)
	if i < 0 {
		return nil, notFound("Partition %v not found.", params.PartitionValueList)
	}
	p := &f.partitions[key][i]
	p.Values = slices.Clone(params.PartitionInput.Values)
	p.Parameters = maps.Clone(params.PartitionInput.Parameters)
	p.StorageDescriptor = params.PartitionInput.StorageDescriptor
	return &glue.UpdatePartitionOutput{}, nil
}

func (f *fakeGlue) DeletePartition(ctx context.Context, params *glue.DeletePartitionInput, optFns ...func(*glue.Options)) (*glue.DeletePartitionOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeletePartition", params); err != nil {
		return nil, err
	}
	key := tableKey(aws.ToString(params.DatabaseName), aws.ToString(params.TableName))
	i := f.findPartition(key, params.PartitionValues)
	if i < 0 {
		return nil, notFound("Partition %v not found.", params.PartitionValues)
	}
	f.partitions[key] = slices.Delete(f.partitions[key], i, i+1)
	return &glue.DeletePartitionOutput{}, nil
}
