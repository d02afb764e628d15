package metastore

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"

	"github.com/arkilian/glue-metastore/internal/catalog"
	merrors "github.com/arkilian/glue-metastore/internal/errors"
	"github.com/arkilian/glue-metastore/internal/mapper"
	"github.com/arkilian/glue-metastore/pkg/types"
)

// GetPartition looks up a partition by its ordered values. A missing
// partition is reported as (zero, false, nil).
func (m *GlueMetastore) GetPartition(ctx context.Context, databaseName, tableName string, partitionValues []string) (types.Partition, bool, error) {
	p, err := m.getGluePartition(ctx, databaseName, tableName, partitionValues)
	if err != nil {
		if catalog.IsEntityNotFound(err) {
			return types.Partition{}, false, nil
		}
		return types.Partition{}, false, err
	}
	return mapper.ToPartition(p), true, nil
}

// GetPartitionNames returns the names ("k1=v1/k2=v2") of every partition
// of a table, in page order.
func (m *GlueMetastore) GetPartitionNames(ctx context.Context, databaseName, tableName string) ([]string, error) {
	return m.partitionNames(ctx, databaseName, tableName, nil)
}

// GetPartitionNamesByParts returns the names of partitions whose values
// match parts position by position. An empty part matches any value and
// positions beyond len(parts) are unconstrained.
func (m *GlueMetastore) GetPartitionNamesByParts(ctx context.Context, databaseName, tableName string, parts []string) ([]string, error) {
	return m.partitionNames(ctx, databaseName, tableName, parts)
}

func (m *GlueMetastore) partitionNames(ctx context.Context, databaseName, tableName string, parts []string) ([]string, error) {
	t, err := m.requireGlueTable(ctx, databaseName, tableName)
	if err != nil {
		return nil, err
	}
	keys := mapper.ToTable(t).PartitionColumnNames()
	if len(parts) > len(keys) {
		return nil, merrors.NewValidationError(merrors.CodeInvalidInput,
			fmt.Sprintf("%d parts given for %d partition keys of table %s.%s", len(parts), len(keys), databaseName, tableName))
	}

	names := []string{}
	err = m.listPartitions(ctx, databaseName, tableName, func(p gluetypes.Partition) error {
		if !mapper.MatchesParts(p.Values, parts) {
			return nil
		}
		name, err := mapper.MakePartitionName(keys, p.Values)
		if err != nil {
			return err
		}
		names = append(names, name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// GetPartitionsByNames fetches partitions by name. Every requested name is
// present in the result; names without a partition map to nil.
func (m *GlueMetastore) GetPartitionsByNames(ctx context.Context, databaseName, tableName string, partitionNames []string) (map[string]*types.Partition, error) {
	result := make(map[string]*types.Partition, len(partitionNames))
	if len(partitionNames) == 0 {
		return result, nil
	}

	t, err := m.requireGlueTable(ctx, databaseName, tableName)
	if err != nil {
		return nil, err
	}
	keys := mapper.ToTable(t).PartitionColumnNames()

	// partition identity -> requested names, so duplicate names are fetched once
	byValues := make(map[string][]string, len(partitionNames))
	var toGet []gluetypes.PartitionValueList
	for _, name := range partitionNames {
		if _, seen := result[name]; seen {
			continue
		}
		values, err := mapper.PartitionValuesFromName(keys, name)
		if err != nil {
			return nil, err
		}
		result[name] = nil
		id := valuesKey(values)
		if _, seen := byValues[id]; !seen {
			toGet = append(toGet, gluetypes.PartitionValueList{Values: values})
		}
		byValues[id] = append(byValues[id], name)
	}

	for start := 0; start < len(toGet); start += batchGetPartitionLimit {
		end := min(start+batchGetPartitionLimit, len(toGet))
		found, err := m.batchGetPartitions(ctx, databaseName, tableName, toGet[start:end])
		if err != nil {
			return nil, err
		}
		for i := range found {
			for _, name := range byValues[valuesKey(found[i].Values)] {
				p := mapper.ToPartition(&found[i])
				result[name] = &p
			}
		}
	}
	return result, nil
}

// batchGetPartitions fetches one batch, re-requesting keys Glue reports as
// unprocessed a bounded number of times.
func (m *GlueMetastore) batchGetPartitions(ctx context.Context, databaseName, tableName string, keys []gluetypes.PartitionValueList) ([]gluetypes.Partition, error) {
	var found []gluetypes.Partition
	pending := keys
	for round := 0; len(pending) > 0; round++ {
		if round > maxUnprocessedRounds {
			return nil, merrors.NewRemoteError(merrors.CodeThrottled,
				fmt.Sprintf("%d partition keys of %s.%s left unprocessed", len(pending), databaseName, tableName), nil)
		}
		var out *glue.BatchGetPartitionOutput
		err := m.call(ctx, "BatchGetPartition", func(ctx context.Context) (err error) {
			out, err = m.client.BatchGetPartition(ctx, &glue.BatchGetPartitionInput{
				CatalogId:       m.catalogID,
				DatabaseName:    aws.String(databaseName),
				TableName:       aws.String(tableName),
				PartitionsToGet: pending,
			})
			return err
		})
		if err != nil {
			return nil, err
		}
		found = append(found, out.Partitions...)
		pending = out.UnprocessedKeys
	}
	return found, nil
}

// AddPartitions registers partitions in batches. The first per-partition
// failure reported by Glue is returned as a remote error; batches already
// written stay written.
func (m *GlueMetastore) AddPartitions(ctx context.Context, databaseName, tableName string, partitions []types.Partition) error {
	inputs := make([]gluetypes.PartitionInput, len(partitions))
	for i, p := range partitions {
		inputs[i] = *mapper.ToPartitionInput(p)
	}

	for start := 0; start < len(inputs); start += batchCreatePartitionLimit {
		end := min(start+batchCreatePartitionLimit, len(inputs))
		var out *glue.BatchCreatePartitionOutput
		err := m.call(ctx, "BatchCreatePartition", func(ctx context.Context) (err error) {
			out, err = m.client.BatchCreatePartition(ctx, &glue.BatchCreatePartitionInput{
				CatalogId:          m.catalogID,
				DatabaseName:       aws.String(databaseName),
				TableName:          aws.String(tableName),
				PartitionInputList: inputs[start:end],
			})
			return err
		})
		if err != nil {
			return err
		}
		if len(out.Errors) > 0 {
			return partitionError(databaseName, tableName, out.Errors)
		}
	}
	return nil
}

// DropPartition deletes a partition. deleteData is handled as in DropTable,
// using the partition location.
func (m *GlueMetastore) DropPartition(ctx context.Context, databaseName, tableName string, partitionValues []string, deleteData bool) error {
	var location string
	purge := false
	if m.shouldDeleteData(deleteData) {
		t, err := m.requireGlueTable(ctx, databaseName, tableName)
		if err != nil {
			return err
		}
		if mapper.ToTable(t).TableType == types.TableTypeManaged {
			p, err := m.getGluePartition(ctx, databaseName, tableName, partitionValues)
			if err != nil {
				return err
			}
			purge = true
			location = mapper.ToPartition(p).Storage.Location
		}
	}

	err := m.call(ctx, "DeletePartition", func(ctx context.Context) error {
		_, err := m.client.DeletePartition(ctx, &glue.DeletePartitionInput{
			CatalogId:       m.catalogID,
			DatabaseName:    aws.String(databaseName),
			TableName:       aws.String(tableName),
			PartitionValues: partitionValues,
		})
		return err
	})
	if err != nil || !purge {
		return err
	}
	return m.removeData(ctx, fmt.Sprintf("%s.%s partition %v", databaseName, tableName, partitionValues), location)
}

// AlterPartition replaces the partition identified by partition.Values.
func (m *GlueMetastore) AlterPartition(ctx context.Context, databaseName, tableName string, partition types.Partition) error {
	if len(partition.Values) == 0 {
		return merrors.NewMissingFieldError("partition", "values")
	}
	input := mapper.ToPartitionInput(partition)
	return m.call(ctx, "UpdatePartition", func(ctx context.Context) error {
		_, err := m.client.UpdatePartition(ctx, &glue.UpdatePartitionInput{
			CatalogId:          m.catalogID,
			DatabaseName:       aws.String(databaseName),
			TableName:          aws.String(tableName),
			PartitionValueList: input.Values,
			PartitionInput:     input,
		})
		return err
	})
}

// listPartitions visits every partition of a table in page order.
func (m *GlueMetastore) listPartitions(ctx context.Context, databaseName, tableName string, visit func(gluetypes.Partition) error) error {
	p := glue.NewGetPartitionsPaginator(m.client, &glue.GetPartitionsInput{
		CatalogId:    m.catalogID,
		DatabaseName: aws.String(databaseName),
		TableName:    aws.String(tableName),
	}, func(o *glue.GetPartitionsPaginatorOptions) {
		o.Limit = m.pageSize
	})

	for p.HasMorePages() {
		var page *glue.GetPartitionsOutput
		err := m.call(ctx, "GetPartitions", func(ctx context.Context) (err error) {
			page, err = p.NextPage(ctx)
			return err
		})
		if err != nil {
			return err
		}
		for _, partition := range page.Partitions {
			if err := visit(partition); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *GlueMetastore) getGluePartition(ctx context.Context, databaseName, tableName string, values []string) (*gluetypes.Partition, error) {
	var out *glue.GetPartitionOutput
	err := m.call(ctx, "GetPartition", func(ctx context.Context) (err error) {
		out, err = m.client.GetPartition(ctx, &glue.GetPartitionInput{
			CatalogId:       m.catalogID,
			DatabaseName:    aws.String(databaseName),
			TableName:       aws.String(tableName),
			PartitionValues: values,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if out.Partition == nil {
		return nil, merrors.NewRemoteError(merrors.CodeEntityNotFound,
			fmt.Sprintf("partition %v of %s.%s not returned", values, databaseName, tableName), nil)
	}
	return out.Partition, nil
}

func partitionError(databaseName, tableName string, errs []gluetypes.PartitionError) error {
	first := errs[0]
	code := merrors.CodeRemoteFailure
	message := "unknown error"
	if first.ErrorDetail != nil {
		code = catalog.CodeFor(aws.ToString(first.ErrorDetail.ErrorCode))
		message = aws.ToString(first.ErrorDetail.ErrorMessage)
	}
	return merrors.NewRemoteError(code,
		fmt.Sprintf("failed to create %d partitions of %s.%s, first %v: %s",
			len(errs), databaseName, tableName, first.PartitionValues, message), nil).
		WithDetails(map[string]interface{}{"operation": "BatchCreatePartition", "failed": len(errs)})
}

// valuesKey identifies a partition by its ordered values.
func valuesKey(values []string) string {
	return strings.Join(values, "\x00")
}
