package sqlitemigrate

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	_ "modernc.org/sqlite"
)

func TestApplyMigrationsRecordsApplied(t *testing.T) {
	db := openInMemoryDB(t)
	migrations := fstest.MapFS{
		"001_create.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE items(id TEXT PRIMARY KEY);\n-- +migrate Down\nDROP TABLE items;"),
		},
		"README.md": &fstest.MapFile{Data: []byte("not a migration")},
	}

	if err := ApplyMigrations(context.Background(), db, migrations, ""); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if rows := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 1 {
		t.Fatalf("expected 1 migration row, got %d", rows)
	}
	if !tableExists(t, db, "items") {
		t.Fatal("expected applied table to exist")
	}
}

func TestApplyMigrationsSkipsAlreadyApplied(t *testing.T) {
	db := openInMemoryDB(t)
	migrations := fstest.MapFS{
		"001_create.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE items(id TEXT PRIMARY KEY);"),
		},
	}
	for i := 0; i < 2; i++ {
		if err := ApplyMigrations(context.Background(), db, migrations, ""); err != nil {
			t.Fatalf("apply migrations pass %d: %v", i, err)
		}
	}
	if rows := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 1 {
		t.Fatalf("expected single migration row after replay, got %d", rows)
	}
}

func TestApplyMigrationsRunsInFileOrder(t *testing.T) {
	db := openInMemoryDB(t)
	migrations := fstest.MapFS{
		"002_index.sql":  &fstest.MapFile{Data: []byte("CREATE INDEX items_name ON items(name);")},
		"001_create.sql": &fstest.MapFile{Data: []byte("CREATE TABLE items(id TEXT PRIMARY KEY, name TEXT);")},
	}
	if err := ApplyMigrations(context.Background(), db, migrations, ""); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	applied, err := Applied(context.Background(), db)
	if err != nil {
		t.Fatalf("applied: %v", err)
	}
	if diff := cmp.Diff([]string{"001_create.sql", "002_index.sql"}, applied); diff != "" {
		t.Fatalf("applied mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyMigrationsDoesNotRecordFailedMigration(t *testing.T) {
	db := openInMemoryDB(t)
	bad := fstest.MapFS{
		"001_bad.sql": &fstest.MapFile{Data: []byte("-- +migrate Up\nCREAT table things(id INT);")},
	}
	if err := ApplyMigrations(context.Background(), db, bad, ""); err == nil {
		t.Fatal("expected bad migration to fail")
	}
	if rows := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 0 {
		t.Fatalf("expected failed migration to stay unrecorded, got %d rows", rows)
	}

	good := fstest.MapFS{
		"001_bad.sql": &fstest.MapFile{Data: []byte("-- +migrate Up\nCREATE TABLE things(id INTEGER PRIMARY KEY);")},
	}
	if err := ApplyMigrations(context.Background(), db, good, ""); err != nil {
		t.Fatalf("apply fixed migration: %v", err)
	}
	if rows := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 1 {
		t.Fatalf("expected fixed migration to be recorded, got %d rows", rows)
	}
}

func TestApplyMigrationsRespectsMigrationRoot(t *testing.T) {
	db := openInMemoryDB(t)
	migrations := fstest.MapFS{
		"archive/001_dossiers.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE dossier_rows(id TEXT PRIMARY KEY);"),
		},
	}
	if err := ApplyMigrations(context.Background(), db, migrations, "archive"); err != nil {
		t.Fatalf("apply migrations with root: %v", err)
	}
	if key := queryString(t, db, "SELECT name FROM schema_migrations LIMIT 1"); key != "archive/001_dossiers.sql" {
		t.Fatalf("expected migration key with root path, got %q", key)
	}
	if !tableExists(t, db, "dossier_rows") {
		t.Fatal("expected migrated table in root-based migration")
	}
}

func TestApplyMigrationsHonoursCancellation(t *testing.T) {
	db := openInMemoryDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	migrations := fstest.MapFS{
		"001_create.sql": &fstest.MapFile{Data: []byte("CREATE TABLE items(id TEXT PRIMARY KEY);")},
	}
	if err := ApplyMigrations(ctx, db, migrations, ""); err == nil {
		t.Fatal("expected cancelled context to stop migrations")
	}
}

func TestUpSection(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "no markers", content: "CREATE TABLE a(x);", want: "CREATE TABLE a(x);"},
		{name: "up only", content: "-- +migrate Up\nCREATE TABLE a(x);", want: "\nCREATE TABLE a(x);"},
		{name: "up and down", content: "-- +migrate Up\nA;\n-- +migrate Down\nB;", want: "\nA;\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := UpSection(tc.content); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func openInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("close db: %v", err)
		}
	})
	return db
}

func queryInt64(t *testing.T, db *sql.DB, query string) int64 {
	t.Helper()
	var value int64
	if err := db.QueryRow(query).Scan(&value); err != nil {
		t.Fatalf("query int value: %v", err)
	}
	return value
}

func queryString(t *testing.T, db *sql.DB, query string) string {
	t.Helper()
	var value string
	if err := db.QueryRow(query).Scan(&value); err != nil {
		t.Fatalf("query string value: %v", err)
	}
	return value
}

func tableExists(t *testing.T, db *sql.DB, tableName string) bool {
	t.Helper()
	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", tableName).Scan(&name)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		t.Fatalf("check table exists: %v", err)
	}
	return name == tableName
}
