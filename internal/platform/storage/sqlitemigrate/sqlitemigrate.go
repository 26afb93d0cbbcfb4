// Package sqlitemigrate applies embedded SQL migrations to a SQLite database.
package sqlitemigrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"
)

const (
	migrationTable = "schema_migrations"
	upMarker       = "-- +migrate Up"
	downMarker     = "-- +migrate Down"
)

// Migration is one SQL file. Key is the file path relative to the migration
// filesystem and is what gets recorded once the migration has run.
type Migration struct {
	Key string
	Up  string
}

// Load reads every .sql file directly under root, sorted by file name.
func Load(migrationFS fs.FS, root string) ([]Migration, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		root = "."
	}
	entries, err := fs.ReadDir(migrationFS, root)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		key := path.Join(root, name)
		content, err := fs.ReadFile(migrationFS, key)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		migrations = append(migrations, Migration{Key: key, Up: UpSection(string(content))})
	}
	return migrations, nil
}

// ApplyMigrations loads the migrations under root and applies the ones not
// yet recorded, each in its own transaction.
func ApplyMigrations(ctx context.Context, sqlDB *sql.DB, migrationFS fs.FS, root string) error {
	migrations, err := Load(migrationFS, root)
	if err != nil {
		return err
	}
	return Apply(ctx, sqlDB, migrations)
}

// Apply runs migrations in order, skipping recorded ones. A failed migration
// is rolled back and left unrecorded.
func Apply(ctx context.Context, sqlDB *sql.DB, migrations []Migration) error {
	if sqlDB == nil {
		return errors.New("sql db is required")
	}
	if _, err := sqlDB.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+migrationTable+` (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}
	applied, err := Applied(ctx, sqlDB)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if slices.Contains(applied, m.Key) || strings.TrimSpace(m.Up) == "" {
			continue
		}
		if err := applyOne(ctx, sqlDB, m); err != nil {
			return err
		}
	}
	return nil
}

func applyOne(ctx context.Context, sqlDB *sql.DB, m Migration) error {
	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", m.Key, err)
	}
	if _, err := tx.ExecContext(ctx, m.Up); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("exec migration %s: %w", m.Key, err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO "+migrationTable+" (name, applied_at) VALUES (?, ?)",
		m.Key, time.Now().UTC().UnixMilli(),
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", m.Key, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", m.Key, err)
	}
	return nil
}

// Applied returns the recorded migration keys in the order they ran.
func Applied(ctx context.Context, sqlDB *sql.DB) ([]string, error) {
	rows, err := sqlDB.QueryContext(ctx, "SELECT name FROM "+migrationTable+" ORDER BY applied_at, name")
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// UpSection returns the SQL between the Up and Down markers. Content without
// an Up marker is returned whole.
func UpSection(content string) string {
	start := strings.Index(content, upMarker)
	if start == -1 {
		return content
	}
	content = content[start+len(upMarker):]
	if end := strings.Index(content, downMarker); end != -1 {
		content = content[:end]
	}
	return content
}
