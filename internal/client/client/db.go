package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/taskkeeper/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// RunMigrations brings the local schema up to date.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the SQLite file at path and
// migrates it.
func InitDatabase(ctx context.Context, path string) (*sql.DB, error) {
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
