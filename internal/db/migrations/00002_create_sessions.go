package migrations

// The sessions table layout differs per driver because each scs store
// adapter expects its own column types.

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateSessions, downCreateSessions)
}

func sessionsDDL() string {
	switch dialect {
	case "postgres":
		return `CREATE TABLE IF NOT EXISTS sessions (
    token  TEXT PRIMARY KEY,
    data   BYTEA NOT NULL,
    expiry TIMESTAMPTZ NOT NULL
)`
	case "mysql":
		return `CREATE TABLE IF NOT EXISTS sessions (
    token  CHAR(43) PRIMARY KEY,
    data   BLOB NOT NULL,
    expiry TIMESTAMP(6) NOT NULL
)`
	default: // sqlite3
		return `CREATE TABLE IF NOT EXISTS sessions (
    token  TEXT PRIMARY KEY,
    data   BLOB NOT NULL,
    expiry REAL NOT NULL
)`
	}
}

func upCreateSessions(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, sessionsDDL()); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	idx := `CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions (expiry)`
	if dialect == "mysql" {
		// MySQL has no IF NOT EXISTS for indexes.
		idx = `CREATE INDEX sessions_expiry_idx ON sessions (expiry)`
	}
	if _, err := tx.ExecContext(ctx, idx); err != nil {
		return fmt.Errorf("create sessions index: %w", err)
	}
	return nil
}

func downCreateSessions(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS sessions`)
	return err
}
