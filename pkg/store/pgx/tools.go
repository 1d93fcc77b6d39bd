package pgx

import "strings"

// prefixedColumns qualifies every column of a comma-separated list with a
// table alias for use in joined selects.
func prefixedColumns(alias string, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
