package types

import (
	"maps"
	"slices"
)

// TableType is the Hive table type tag.
type TableType string

const (
	// TableTypeManaged marks a table whose data lifecycle is owned by the metastore
	TableTypeManaged TableType = "MANAGED_TABLE"

	// TableTypeExternal marks a table over externally owned data
	TableTypeExternal TableType = "EXTERNAL_TABLE"

	// TableTypeView marks a logical view
	TableTypeView TableType = "VIRTUAL_VIEW"
)

// HiveType is a Hive type signature such as "int", "string" or "map<string,bigint>".
type HiveType string

// Common Hive primitive types.
const (
	HiveTypeBoolean   HiveType = "boolean"
	HiveTypeByte      HiveType = "tinyint"
	HiveTypeShort     HiveType = "smallint"
	HiveTypeInt       HiveType = "int"
	HiveTypeLong      HiveType = "bigint"
	HiveTypeFloat     HiveType = "float"
	HiveTypeDouble    HiveType = "double"
	HiveTypeString    HiveType = "string"
	HiveTypeDate      HiveType = "date"
	HiveTypeTimestamp HiveType = "timestamp"
	HiveTypeBinary    HiveType = "binary"
)

// Column is a table, partition or partition-key column.
type Column struct {
	// Name is the column name
	Name string `json:"name"`

	// Type is the Hive type signature
	Type HiveType `json:"type"`

	// Comment is the column comment, nil when unset
	Comment *string `json:"comment,omitempty"`
}

// Storage describes where and how table or partition data is stored.
type Storage struct {
	Location        string            `json:"location,omitempty"`
	InputFormat     string            `json:"input_format,omitempty"`
	OutputFormat    string            `json:"output_format,omitempty"`
	SerdeLibrary    string            `json:"serde_library,omitempty"`
	SerdeParameters map[string]string `json:"serde_parameters,omitempty"`
	BucketColumns   []string          `json:"bucket_columns,omitempty"`
	BucketCount     int               `json:"bucket_count,omitempty"`
	Parameters      map[string]string `json:"parameters,omitempty"`
}

// Clone returns a deep copy of the storage descriptor.
func (s Storage) Clone() Storage {
	cp := s
	cp.SerdeParameters = maps.Clone(s.SerdeParameters)
	cp.BucketColumns = slices.Clone(s.BucketColumns)
	cp.Parameters = maps.Clone(s.Parameters)
	return cp
}

// Table is a metastore table or view, keyed by (DatabaseName, TableName).
type Table struct {
	DatabaseName     string            `json:"database_name"`
	TableName        string            `json:"table_name"`
	Owner            string            `json:"owner,omitempty"`
	TableType        TableType         `json:"table_type"`
	DataColumns      []Column          `json:"data_columns"`
	PartitionColumns []Column          `json:"partition_columns,omitempty"`
	Storage          Storage           `json:"storage"`
	Parameters       map[string]string `json:"parameters,omitempty"`
	ViewOriginalText *string           `json:"view_original_text,omitempty"`
	ViewExpandedText *string           `json:"view_expanded_text,omitempty"`
}

// Validate checks the table identity.
func (t Table) Validate() error {
	if t.DatabaseName == "" || t.TableName == "" {
		return ErrEmptyTableName
	}
	for _, c := range t.DataColumns {
		if c.Name == "" {
			return ErrEmptyColumnName
		}
	}
	for _, c := range t.PartitionColumns {
		if c.Name == "" {
			return ErrEmptyColumnName
		}
	}
	return nil
}

// IsView reports whether the table is a logical view.
func (t Table) IsView() bool {
	return t.TableType == TableTypeView
}

// PartitionColumnNames returns the partition key names in declaration order.
func (t Table) PartitionColumnNames() []string {
	names := make([]string, len(t.PartitionColumns))
	for i, c := range t.PartitionColumns {
		names[i] = c.Name
	}
	return names
}

// Column returns the data or partition column with the given name.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.DataColumns {
		if c.Name == name {
			return c, true
		}
	}
	for _, c := range t.PartitionColumns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	cp := t
	cp.DataColumns = cloneColumns(t.DataColumns)
	cp.PartitionColumns = cloneColumns(t.PartitionColumns)
	cp.Storage = t.Storage.Clone()
	cp.Parameters = maps.Clone(t.Parameters)
	cp.ViewOriginalText = cloneString(t.ViewOriginalText)
	cp.ViewExpandedText = cloneString(t.ViewExpandedText)
	return cp
}

func cloneColumns(cols []Column) []Column {
	if cols == nil {
		return nil
	}
	out := make([]Column, len(cols))
	for i, c := range cols {
		out[i] = Column{Name: c.Name, Type: c.Type, Comment: cloneString(c.Comment)}
	}
	return out
}
