package types

import (
	"maps"
	"slices"
)

// Partition is a table partition identified by its ordered key values.
type Partition struct {
	DatabaseName string            `json:"database_name"`
	TableName    string            `json:"table_name"`
	Values       []string          `json:"values"`
	Columns      []Column          `json:"columns"`
	Storage      Storage           `json:"storage"`
	Parameters   map[string]string `json:"parameters,omitempty"`
}

// Clone returns a deep copy of the partition.
func (p Partition) Clone() Partition {
	cp := p
	cp.Values = slices.Clone(p.Values)
	cp.Columns = cloneColumns(p.Columns)
	cp.Storage = p.Storage.Clone()
	cp.Parameters = maps.Clone(p.Parameters)
	return cp
}
