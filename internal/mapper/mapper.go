// Package mapper converts between the metastore data model and Glue Data Catalog DTOs.
// Every function is pure: inputs are never mutated and outputs share no maps or
// slices with them.
package mapper

import (
	"maps"
	"slices"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"

	merrors "github.com/arkilian/glue-metastore/internal/errors"
	"github.com/arkilian/glue-metastore/pkg/types"
)

// CreateTimeParameter is the database parameter carrying the Glue creation
// time in Unix seconds.
const CreateTimeParameter = "CreateTime"

// ToDatabase converts a Glue database. An unset location stays absent; an
// unset or empty description becomes an absent comment.
func ToDatabase(db *gluetypes.Database) types.Database {
	out := types.Database{
		Name:       aws.ToString(db.Name),
		Location:   cloneString(db.LocationUri),
		Parameters: maps.Clone(db.Parameters),
	}
	if desc := aws.ToString(db.Description); desc != "" {
		out.Comment = aws.String(desc)
	}
	if db.CreateTime != nil {
		if out.Parameters == nil {
			out.Parameters = make(map[string]string, 1)
		}
		out.Parameters[CreateTimeParameter] = strconv.FormatInt(db.CreateTime.Unix(), 10)
	}
	return out
}

// ToDatabaseInput converts a database for create and update calls. Glue
// requires a location; an absent comment becomes an empty description.
func ToDatabaseInput(db types.Database) (*gluetypes.DatabaseInput, error) {
	if db.Name == "" {
		return nil, merrors.NewMissingFieldError("database", "name")
	}
	if db.Location == nil {
		return nil, merrors.NewMissingFieldError("database "+db.Name, "location")
	}
	comment := ""
	if db.Comment != nil {
		comment = *db.Comment
	}
	return &gluetypes.DatabaseInput{
		Name:        aws.String(db.Name),
		LocationUri: aws.String(*db.Location),
		Description: aws.String(comment),
		Parameters:  maps.Clone(db.Parameters),
	}, nil
}

// ToTable converts a Glue table including its storage descriptor columns,
// partition keys, parameters and view text. Glue tables registered without
// a type are reported as external.
func ToTable(t *gluetypes.Table) types.Table {
	tableType := types.TableType(aws.ToString(t.TableType))
	if tableType == "" {
		tableType = types.TableTypeExternal
	}
	out := types.Table{
		DatabaseName:     aws.ToString(t.DatabaseName),
		TableName:        aws.ToString(t.Name),
		Owner:            aws.ToString(t.Owner),
		TableType:        tableType,
		DataColumns:      []types.Column{},
		PartitionColumns: ToColumns(t.PartitionKeys),
		Parameters:       maps.Clone(t.Parameters),
		ViewOriginalText: cloneString(t.ViewOriginalText),
		ViewExpandedText: cloneString(t.ViewExpandedText),
	}
	if sd := t.StorageDescriptor; sd != nil {
		out.DataColumns = ToColumns(sd.Columns)
		out.Storage = toStorage(sd)
	}
	return out
}

// ToTableInput converts a table for create and update calls.
func ToTableInput(t types.Table) (*gluetypes.TableInput, error) {
	if t.TableName == "" {
		return nil, merrors.NewMissingFieldError("table", "name")
	}
	return &gluetypes.TableInput{
		Name:              aws.String(t.TableName),
		Owner:             optionalString(t.Owner),
		TableType:         optionalString(string(t.TableType)),
		Parameters:        maps.Clone(t.Parameters),
		PartitionKeys:     ToGlueColumns(t.PartitionColumns),
		StorageDescriptor: toStorageDescriptor(t.Storage, t.DataColumns),
		ViewOriginalText:  cloneString(t.ViewOriginalText),
		ViewExpandedText:  cloneString(t.ViewExpandedText),
	}, nil
}

// ToTableUpdateInput rebuilds the input for an UpdateTable call from the
// table as read, replacing only the storage descriptor columns. Glue fields
// the metastore model does not carry (sort columns, skew info, retention,
// target table, serde name) are sent back unchanged.
func ToTableUpdateInput(t *gluetypes.Table, columns []gluetypes.Column) *gluetypes.TableInput {
	sd := &gluetypes.StorageDescriptor{}
	if t.StorageDescriptor != nil {
		*sd = *t.StorageDescriptor
		sd.BucketColumns = slices.Clone(sd.BucketColumns)
		sd.SortColumns = slices.Clone(sd.SortColumns)
		sd.Parameters = maps.Clone(sd.Parameters)
		if sd.SerdeInfo != nil {
			serde := *sd.SerdeInfo
			serde.Parameters = maps.Clone(serde.Parameters)
			sd.SerdeInfo = &serde
		}
	}
	sd.Columns = cloneColumns(columns)

	return &gluetypes.TableInput{
		Name:              cloneString(t.Name),
		Description:       cloneString(t.Description),
		Owner:             cloneString(t.Owner),
		TableType:         cloneString(t.TableType),
		LastAccessTime:    t.LastAccessTime,
		LastAnalyzedTime:  t.LastAnalyzedTime,
		Retention:         t.Retention,
		TargetTable:       t.TargetTable,
		Parameters:        maps.Clone(t.Parameters),
		PartitionKeys:     cloneColumns(t.PartitionKeys),
		StorageDescriptor: sd,
		ViewOriginalText:  cloneString(t.ViewOriginalText),
		ViewExpandedText:  cloneString(t.ViewExpandedText),
	}
}

// ToPartition converts a Glue partition, including storage descriptor columns.
func ToPartition(p *gluetypes.Partition) types.Partition {
	out := types.Partition{
		DatabaseName: aws.ToString(p.DatabaseName),
		TableName:    aws.ToString(p.TableName),
		Values:       slices.Clone(p.Values),
		Columns:      []types.Column{},
		Parameters:   maps.Clone(p.Parameters),
	}
	if sd := p.StorageDescriptor; sd != nil {
		out.Columns = ToColumns(sd.Columns)
		out.Storage = toStorage(sd)
	}
	return out
}

// ToPartitionInput converts a partition for create and update calls.
func ToPartitionInput(p types.Partition) *gluetypes.PartitionInput {
	return &gluetypes.PartitionInput{
		Values:            slices.Clone(p.Values),
		Parameters:        maps.Clone(p.Parameters),
		StorageDescriptor: toStorageDescriptor(p.Storage, p.Columns),
	}
}

// ToColumn converts a single Glue column.
func ToColumn(c gluetypes.Column) types.Column {
	return types.Column{
		Name:    aws.ToString(c.Name),
		Type:    types.HiveType(aws.ToString(c.Type)),
		Comment: cloneString(c.Comment),
	}
}

// ToColumns converts Glue columns, preserving order.
func ToColumns(cols []gluetypes.Column) []types.Column {
	out := make([]types.Column, len(cols))
	for i, c := range cols {
		out[i] = ToColumn(c)
	}
	return out
}

// ToGlueColumn converts a single column.
func ToGlueColumn(c types.Column) gluetypes.Column {
	return gluetypes.Column{
		Name:    aws.String(c.Name),
		Type:    aws.String(string(c.Type)),
		Comment: cloneString(c.Comment),
	}
}

// ToGlueColumns converts columns, preserving order.
func ToGlueColumns(cols []types.Column) []gluetypes.Column {
	if len(cols) == 0 {
		return nil
	}
	out := make([]gluetypes.Column, len(cols))
	for i, c := range cols {
		out[i] = ToGlueColumn(c)
	}
	return out
}

func cloneColumns(cols []gluetypes.Column) []gluetypes.Column {
	if cols == nil {
		return nil
	}
	out := make([]gluetypes.Column, len(cols))
	for i, c := range cols {
		c.Name = cloneString(c.Name)
		c.Type = cloneString(c.Type)
		c.Comment = cloneString(c.Comment)
		c.Parameters = maps.Clone(c.Parameters)
		out[i] = c
	}
	return out
}

func toStorage(sd *gluetypes.StorageDescriptor) types.Storage {
	s := types.Storage{
		Location:      aws.ToString(sd.Location),
		InputFormat:   aws.ToString(sd.InputFormat),
		OutputFormat:  aws.ToString(sd.OutputFormat),
		BucketColumns: slices.Clone(sd.BucketColumns),
		BucketCount:   int(sd.NumberOfBuckets),
		Parameters:    maps.Clone(sd.Parameters),
	}
	if sd.SerdeInfo != nil {
		s.SerdeLibrary = aws.ToString(sd.SerdeInfo.SerializationLibrary)
		s.SerdeParameters = maps.Clone(sd.SerdeInfo.Parameters)
	}
	return s
}

func toStorageDescriptor(s types.Storage, columns []types.Column) *gluetypes.StorageDescriptor {
	sd := &gluetypes.StorageDescriptor{
		Columns:         ToGlueColumns(columns),
		Location:        optionalString(s.Location),
		InputFormat:     optionalString(s.InputFormat),
		OutputFormat:    optionalString(s.OutputFormat),
		BucketColumns:   slices.Clone(s.BucketColumns),
		NumberOfBuckets: int32(s.BucketCount),
		Parameters:      maps.Clone(s.Parameters),
	}
	if s.SerdeLibrary != "" || len(s.SerdeParameters) > 0 {
		sd.SerdeInfo = &gluetypes.SerDeInfo{
			SerializationLibrary: optionalString(s.SerdeLibrary),
			Parameters:           maps.Clone(s.SerdeParameters),
		}
	}
	return sd
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	return aws.String(*s)
}
