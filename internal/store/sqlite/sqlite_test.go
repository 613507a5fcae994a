package sqlite

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

// newTestDB opens an in-memory database for tests with a silenced logger.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New(:memory:) error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNew_CreatesTables(t *testing.T) {
	db := newTestDB(t)

	// Verify tables exist by querying sqlite_master
	ctx := context.Background()
	rows, err := db.db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' ORDER BY name")
	if err != nil {
		t.Fatalf("query sqlite_master error: %v", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan error: %v", err)
		}
		tables = append(tables, name)
	}

	expected := []string{"message_labels", "messages", "rules"}
	for _, exp := range expected {
		found := false
		for _, tbl := range tables {
			if tbl == exp {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected table %q not found in %v", exp, tables)
		}
	}
}
