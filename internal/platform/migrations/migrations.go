// Package migrations owns the relational schema. Migrations are embedded per
// dialect and applied with goose.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed sql/postgres/*.sql sql/sqlite/*.sql
var embedded embed.FS

// Run applies every pending migration for the dialect db was opened with.
func Run(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	provider, err := newProvider(db)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if logger != nil {
		for _, r := range results {
			logger.LogAttrs(ctx, slog.LevelInfo, "migration applied",
				slog.Int64("version", r.Source.Version),
				slog.Duration("duration", r.Duration),
			)
		}
	}
	return nil
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, db *gorm.DB) error {
	provider, err := newProvider(db)
	if err != nil {
		return err
	}
	if _, err := provider.Down(ctx); err != nil {
		return fmt.Errorf("roll back migration: %w", err)
	}
	return nil
}

// Version reports the highest applied migration version.
func Version(ctx context.Context, db *gorm.DB) (int64, error) {
	provider, err := newProvider(db)
	if err != nil {
		return 0, err
	}
	return provider.GetDBVersion(ctx)
}

func newProvider(db *gorm.DB) (*goose.Provider, error) {
	if db == nil {
		return nil, fmt.Errorf("migrations: database is not initialized")
	}
	dialect, dir, err := dialectFor(db.Dialector.Name())
	if err != nil {
		return nil, err
	}
	fsys, err := fs.Sub(embedded, dir)
	if err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("migrations: unwrap sql db: %w", err)
	}
	return goose.NewProvider(dialect, sqlDB, fsys)
}

func dialectFor(name string) (goose.Dialect, string, error) {
	switch name {
	case "postgres":
		return goose.DialectPostgres, "sql/postgres", nil
	case "sqlite", "sqlite3":
		return goose.DialectSQLite3, "sql/sqlite", nil
	default:
		return "", "", fmt.Errorf("migrations: unsupported dialect %q", name)
	}
}
