// Package testdb opens throwaway SQLite databases for tests.
package testdb

import (
	"context"
	"testing"

	"github.com/helixml/newsbrief/infrastructure/persistence"
	"github.com/helixml/newsbrief/internal/database"
)

const memoryURL = "sqlite:///:memory:"

// New returns an in-memory database with the briefs table migrated.
func New(t *testing.T) database.Database {
	t.Helper()
	db := open(t)
	if err := persistence.AutoMigrate(context.Background(), db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// NewPlain returns an in-memory database with no tables.
func NewPlain(t *testing.T) database.Database {
	t.Helper()
	return open(t)
}

func open(t *testing.T) database.Database {
	t.Helper()
	db, err := database.NewDatabase(context.Background(), memoryURL)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
