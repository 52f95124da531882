// Package dbtest opens the Postgres database used by the database-backed
// tests. Tests calling Open skip unless ROOK_TEST_DB_HOST is set, so the
// regular test run stays self-contained.
package dbtest

import (
	"context"
	"os"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rookgg/rook/rook/database"
)

var userSeq atomic.Int64

func init() {
	// Start ids at the current nanosecond so runs sharing a database
	// never hand out the same user twice.
	userSeq.Store(time.Now().UnixNano())
}

// NextUserID returns a user id no other test (or run) has touched.
func NextUserID() int64 {
	return userSeq.Add(1)
}

// Open connects to the test database, creates the schema and seeds the
// static catalogs. The connection is closed when the test finishes.
func Open(t *testing.T) *database.DB {
	t.Helper()

	host := os.Getenv("ROOK_TEST_DB_HOST")
	if host == "" {
		t.Skip("ROOK_TEST_DB_HOST not set")
	}

	port := 5432
	if raw := os.Getenv("ROOK_TEST_DB_PORT"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			t.Fatalf("bad ROOK_TEST_DB_PORT %q: %v", raw, err)
		}
		port = parsed
	}

	cfg := database.DBConfig{
		Host:     host,
		Port:     port,
		User:     envOr("ROOK_TEST_DB_USER", "postgres"),
		Password: os.Getenv("ROOK_TEST_DB_PASSWORD"),
		Database: envOr("ROOK_TEST_DB_NAME", "rook_test"),
		PoolSize: 4,
	}

	ctx := context.Background()
	db, err := database.New(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(db.Close)

	if err := db.InitializeSchema(ctx); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}
	if err := db.SeedCatalogs(ctx); err != nil {
		t.Fatalf("failed to seed catalogs: %v", err)
	}
	return db
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
