package database

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"
)

// TestDSNEnv names the variable holding the Postgres DSN for integration tests
const TestDSNEnv = "GAME_PREDICTOR_TEST_DSN"

// SetupTestDB connects to the integration database or skips the test
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv(TestDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set, skipping Postgres integration test", TestDSNEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDBFromDSN(ctx, dsn, 4, 1)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}

	t.Cleanup(db.Close)
	return db
}

// SetupTestSQLite opens an in-memory sqlite database closed with the test
func SetupTestSQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := OpenSQLite(context.Background(), SQLiteMemory)
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}
