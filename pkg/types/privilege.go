package types

// Privileges and column statistics are part of the metastore interface but
// the Glue backend neither produces nor consumes them.

// Privilege is a Hive privilege kind.
type Privilege string

const (
	PrivilegeSelect    Privilege = "SELECT"
	PrivilegeInsert    Privilege = "INSERT"
	PrivilegeUpdate    Privilege = "UPDATE"
	PrivilegeDelete    Privilege = "DELETE"
	PrivilegeOwnership Privilege = "OWNERSHIP"
)

// PrivilegeInfo is a privilege held by a grantee.
type PrivilegeInfo struct {
	Privilege   Privilege `json:"privilege"`
	GrantOption bool      `json:"grant_option"`
}

// PrincipalPrivileges lists privileges granted to users and roles on creation.
type PrincipalPrivileges struct {
	UserPrivileges map[string][]PrivilegeInfo `json:"user_privileges,omitempty"`
	RolePrivileges map[string][]PrivilegeInfo `json:"role_privileges,omitempty"`
}

// ColumnStatistics holds Hive column statistics.
type ColumnStatistics struct {
	NullsCount          *int64   `json:"nulls_count,omitempty"`
	DistinctValuesCount *int64   `json:"distinct_values_count,omitempty"`
	MinValue            *string  `json:"min_value,omitempty"`
	MaxValue            *string  `json:"max_value,omitempty"`
	MaxColumnLength     *int64   `json:"max_column_length,omitempty"`
	AverageColumnLength *float64 `json:"average_column_length,omitempty"`
	TrueCount           *int64   `json:"true_count,omitempty"`
	FalseCount          *int64   `json:"false_count,omitempty"`
}
