// Package types provides the Hive metastore data model consumed by the query engine.
package types

import "maps"

// Database is a metastore database (schema).
type Database struct {
	// Name is the unique database name
	Name string `json:"name"`

	// Location is the default storage location for tables, nil when unset
	Location *string `json:"location,omitempty"`

	// Comment is the database description, nil when unset
	Comment *string `json:"comment,omitempty"`

	// OwnerName is the database owner (not persisted by Glue)
	OwnerName string `json:"owner_name,omitempty"`

	// Parameters holds free-form database properties
	Parameters map[string]string `json:"parameters,omitempty"`
}

// Validate checks the database invariants.
func (d Database) Validate() error {
	if d.Name == "" {
		return ErrEmptyDatabaseName
	}
	return nil
}

// Clone returns a deep copy of the database.
func (d Database) Clone() Database {
	cp := d
	cp.Location = cloneString(d.Location)
	cp.Comment = cloneString(d.Comment)
	cp.Parameters = maps.Clone(d.Parameters)
	return cp
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
