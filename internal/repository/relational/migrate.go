package relational

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *DB, dir string) error {
	return goose.UpContext(ctx, db.DB, dir)
}

// Migrate brings the schema up to date using the embedded migrations for the
// handle's dialect. Goose progress is reported through logger.
func Migrate(ctx context.Context, db *DB, logger goose.Logger) error {
	if logger == nil {
		logger = goose.NopLogger()
	}
	goose.SetBaseFS(migrations)
	goose.SetLogger(logger)

	gooseDialect := "sqlite3"
	if db.dialect == DialectPostgres {
		gooseDialect = "pgx"
	}
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}

	if err := gooseUpContext(ctx, db, "migrations/"+string(db.dialect)); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
