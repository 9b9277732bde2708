// Package db opens the server's PostgreSQL database, keeps its schema
// current and purges deleted places.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// InitPostgres opens dsn, checks the connection and applies pending migrations.
func InitPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}

	return db, nil
}

// MigrationsFS returns the embedded goose migrations at their root.
func MigrationsFS() fs.FS {
	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		panic(err)
	}
	return fsys
}

// Migrate brings the schema of db up to the latest version.
func Migrate(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, MigrationsFS())
	if err != nil {
		return err
	}
	_, err = provider.Up(ctx)
	return err
}
