package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upPreciseLinkTimestamps, downPreciseLinkTimestamps)
}

// MySQL's plain TIMESTAMP keeps whole seconds, so an edit made in the same
// second as the create would leave updated_at equal to created_at. The
// other dialects already store sub-second precision.
func linkTimestampsDDL(columnType string) []string {
	if dialect != "mysql" {
		return nil
	}
	return []string{fmt.Sprintf(
		`ALTER TABLE affiliate_links MODIFY created_at %[1]s NULL, MODIFY updated_at %[1]s NULL`,
		columnType,
	)}
}

func upPreciseLinkTimestamps(ctx context.Context, tx *sql.Tx) error {
	for _, stmt := range linkTimestampsDDL("DATETIME(6)") {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("widen link timestamps: %w", err)
		}
	}
	return nil
}

func downPreciseLinkTimestamps(ctx context.Context, tx *sql.Tx) error {
	for _, stmt := range linkTimestampsDDL("TIMESTAMP") {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("narrow link timestamps: %w", err)
		}
	}
	return nil
}
