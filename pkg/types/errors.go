package types

import "errors"

// Model validation errors
var (
	// ErrEmptyDatabaseName is returned when a database has no name
	ErrEmptyDatabaseName = errors.New("database name is empty")

	// ErrEmptyTableName is returned when a table has no database or table name
	ErrEmptyTableName = errors.New("table name is empty")

	// ErrEmptyColumnName is returned when a column has no name
	ErrEmptyColumnName = errors.New("column name is empty")
)
