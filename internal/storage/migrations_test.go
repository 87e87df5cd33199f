package storage

import (
	"context"
	"testing"
)

func TestSQLiteStorage_Migrate(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	var version int
	if err := store.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version); err != nil {
		t.Fatalf("Failed to read schema version: %v", err)
	}
	if version != ExpectedSchemaVersion {
		t.Errorf("Expected schema version %d, got %d", ExpectedSchemaVersion, version)
	}

	// Running migrations again must be a no-op.
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Second Migrate() error = %v", err)
	}
}

func TestSQLiteStorage_Migrate_CreatesTables(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tables := []string{"bank_transactions", "accounting_entries", "import_templates"}
	for _, table := range tables {
		var name string
		err := store.db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("Expected table %s to exist: %v", table, err)
		}
	}
}
