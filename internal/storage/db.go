package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/medminder/internal/migrations"
	"github.com/pressly/goose/v3"
)

// Open opens the local SQLite database at dsn and applies the embedded
// migrations. The caller must import a database/sql driver registered under
// the name "sqlite" (modernc.org/sqlite).
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}
