package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const createMigrationsTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// MigrationFiles lists the embedded migrations in lexical order
func MigrationFiles() ([]string, error) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// RunMigrations applies each embedded migration not yet recorded in
// schema_migrations, one transaction per file. It returns the versions applied.
func RunMigrations(ctx context.Context, db *DB) ([]string, error) {
	if _, err := db.Exec(ctx, createMigrationsTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	files, err := MigrationFiles()
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, file := range files {
		version := strings.TrimSuffix(file, ".sql")

		var exists bool
		err := db.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)", version,
		).Scan(&exists)
		if err != nil {
			return applied, fmt.Errorf("check migration %s: %w", version, err)
		}
		if exists {
			continue
		}

		data, err := fs.ReadFile(migrationFS, "migrations/"+file)
		if err != nil {
			return applied, fmt.Errorf("read migration %s: %w", file, err)
		}

		err = db.WithTransaction(ctx, func(txCtx context.Context) error {
			if strings.TrimSpace(string(data)) != "" {
				if _, err := db.Exec(txCtx, string(data)); err != nil {
					return err
				}
			}
			_, err := db.Exec(txCtx, "INSERT INTO schema_migrations (version) VALUES ($1)", version)
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("apply migration %s: %w", version, err)
		}
		applied = append(applied, version)
	}

	return applied, nil
}
