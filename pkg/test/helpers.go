package test

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/google/uuid"

	"todoapi/internal/adapter/database/postgres"
	"todoapi/internal/adapter/database/sqlite"
)

// InitTestDB returns a migrated in-memory SQLite database private to the caller.
func InitTestDB() *sqlite.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

	db, err := sqlite.NewDB(sqlite.Options{Path: dsn, SQLLogLevel: "disabled"})

	if err != nil {
		log.Fatal(err)
	}

	return db
}

// InitPostgresTestDB connects to TEST_DATABASE_URL and empties the todos
// table. The test is skipped when the variable is not set.
func InitPostgresTestDB(t *testing.T) *postgres.DB {
	url := os.Getenv("TEST_DATABASE_URL")

	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := postgres.NewDB(context.Background(), url)

	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}

	if _, err := db.Exec(context.Background(), "TRUNCATE todos RESTART IDENTITY"); err != nil {
		t.Fatalf("Failed to truncate todos: %v", err)
	}

	t.Cleanup(db.Close)

	return db
}

func CleanDB(t *testing.T, db *sqlite.DB) {
	if _, err := db.Exec("DELETE FROM todos"); err != nil {
		t.Fatalf("Failed to clean todos: %v", err)
	}
}
