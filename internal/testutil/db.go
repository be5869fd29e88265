// Package testutil provides shared helpers for tests.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tOgg1/ralph/internal/db"
)

// NewTestDB creates a migrated in-memory SQLite database and returns a
// cleanup function.
func NewTestDB(t *testing.T) (*db.DB, func()) {
	t.Helper()

	database, err := db.OpenInMemory()
	require.NoError(t, err, "failed to open test database")

	err = database.Migrate(context.Background())
	require.NoError(t, err, "failed to run migrations")

	cleanup := func() {
		_ = database.Close()
	}

	return database, cleanup
}
