package mapper

import (
	"fmt"
	"strings"

	merrors "github.com/arkilian/glue-metastore/internal/errors"
)

// DefaultPartitionName is the Hive placeholder for an empty partition value.
const DefaultPartitionName = "__HIVE_DEFAULT_PARTITION__"

const upperHex = "0123456789ABCDEF"

// escapeChars marks the ASCII characters Hive percent-encodes in partition paths.
var escapeChars = func() [128]bool {
	var set [128]bool
	for c := 0x01; c <= 0x1F; c++ {
		set[c] = true
	}
	for _, c := range "\"#%'*/:=?\\\x7F{[]^" {
		set[c] = true
	}
	return set
}()

// EscapePathName percent-encodes characters that are not safe in a partition
// path component. The empty string maps to DefaultPartitionName.
func EscapePathName(s string) string {
	if s == "" {
		return DefaultPartitionName
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 128 && escapeChars[c] {
			b.WriteByte('%')
			b.WriteByte(upperHex[c>>4])
			b.WriteByte(upperHex[c&0x0F])
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// UnescapePathName reverses EscapePathName. Malformed escapes are kept verbatim.
func UnescapePathName(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// MakePartitionName builds a Hive partition name such as "ds=2024-01-01/hr=07".
// Keys are lower-cased; keys and values are path escaped.
func MakePartitionName(keys, values []string) (string, error) {
	if len(keys) != len(values) {
		return "", merrors.NewValidationError(merrors.CodeInvalidPartitionName,
			fmt.Sprintf("partition has %d values for %d keys", len(values), len(keys)))
	}
	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(EscapePathName(strings.ToLower(key)))
		b.WriteByte('=')
		b.WriteString(EscapePathName(values[i]))
	}
	return b.String(), nil
}

// ParsePartitionName splits a partition name into its unescaped keys and values.
func ParsePartitionName(name string) (keys, values []string, err error) {
	if name == "" {
		return nil, nil, invalidPartitionName(name, "empty name")
	}
	for _, part := range strings.Split(name, "/") {
		key, value, ok := strings.Cut(part, "=")
		if !ok || key == "" {
			return nil, nil, invalidPartitionName(name, fmt.Sprintf("malformed component %q", part))
		}
		keys = append(keys, UnescapePathName(key))
		values = append(values, UnescapePathName(value))
	}
	return keys, values, nil
}

// PartitionValuesFromName parses name and checks its keys against the table's
// partition keys, in order and case-insensitively. DefaultPartitionName maps
// back to the empty value, so names from MakePartitionName round-trip.
func PartitionValuesFromName(partitionKeys []string, name string) ([]string, error) {
	keys, values, err := ParsePartitionName(name)
	if err != nil {
		return nil, err
	}
	if len(keys) != len(partitionKeys) {
		return nil, invalidPartitionName(name,
			fmt.Sprintf("expected %d partition keys, got %d", len(partitionKeys), len(keys)))
	}
	for i, key := range keys {
		if !strings.EqualFold(key, partitionKeys[i]) {
			return nil, invalidPartitionName(name,
				fmt.Sprintf("expected key %q at position %d, got %q", partitionKeys[i], i, key))
		}
		if values[i] == DefaultPartitionName {
			values[i] = ""
		}
	}
	return values, nil
}

// MatchesParts reports whether partition values satisfy a partial
// specification, where an empty part matches any value.
func MatchesParts(values, parts []string) bool {
	if len(parts) > len(values) {
		return false
	}
	for i, part := range parts {
		if part != "" && part != values[i] {
			return false
		}
	}
	return true
}

func invalidPartitionName(name, reason string) error {
	return merrors.NewValidationError(merrors.CodeInvalidPartitionName,
		fmt.Sprintf("invalid partition name %q: %s", name, reason))
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
