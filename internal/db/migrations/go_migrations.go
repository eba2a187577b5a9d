// Package migrations holds the Go migrations whose DDL depends on the SQL
// dialect. Plain SQL migrations live next to them as goose .sql files.
package migrations

// dialect is set by the db package before migrations are applied.
var dialect string

// SetDialect configures the SQL dialect for Go migrations.
// Valid values: "sqlite3", "postgres", "mysql".
func SetDialect(d string) {
	dialect = d
}
