package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed postgres/*.sql
var postgresFS embed.FS

// Execer is the slice of a Postgres pool the migration runner needs.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// RunPostgresMigrations applies the embedded SQL files in lexical
// order. Migrations are expected to be idempotent, so re-running the
// full set on startup is safe.
func RunPostgresMigrations(ctx context.Context, db Execer) error {
	files, err := fs.Glob(postgresFS, "postgres/*.sql")
	if err != nil {
		return fmt.Errorf("list embedded postgres migrations: %w", err)
	}

	for _, file := range files {
		data, err := fs.ReadFile(postgresFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		if _, err := db.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}

	return nil
}
