package repository

import (
	"context"
	"database/sql"
	"io/fs"
	"testing"

	"github.com/lewtec/mappoints/db"
	_ "modernc.org/sqlite"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:?_time_format=sqlite")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// every connection to :memory: is a different database
	conn.SetMaxOpenConns(1)

	// Create schema from the same files the migrations apply
	files, err := fs.Glob(db.Migrations, db.MigrationsDir+"/*.up.sql")
	if err != nil {
		t.Fatalf("failed to list migrations: %v", err)
	}
	for _, file := range files {
		schema, err := fs.ReadFile(db.Migrations, file)
		if err != nil {
			t.Fatalf("failed to read migration %s: %v", file, err)
		}
		if _, err := conn.Exec(string(schema)); err != nil {
			t.Fatalf("failed to create schema: %v", err)
		}
	}

	return conn
}

// CleanupTestDB closes the test database
func CleanupTestDB(t *testing.T, db *sql.DB) {
	t.Helper()
	if err := db.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}

// MustExec executes a SQL statement and fails the test if it errors
func MustExec(t *testing.T, db *sql.DB, query string, args ...interface{}) {
	t.Helper()
	_, err := db.ExecContext(context.Background(), query, args...)
	if err != nil {
		t.Fatalf("failed to exec query: %v", err)
	}
}
