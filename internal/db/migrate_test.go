package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tOgg1/ralph/internal/db"
)

func TestMigrateUpAndDown(t *testing.T) {
	database, err := db.OpenInMemory()
	require.NoError(t, err)
	defer database.Close()
	ctx := context.Background()

	applied, err := database.MigrateUp(ctx)
	require.NoError(t, err)
	require.Greater(t, applied, 0)

	version, err := database.SchemaVersion(ctx)
	require.NoError(t, err)
	require.Greater(t, version, 0)

	// Re-running is a no-op.
	applied, err = database.MigrateUp(ctx)
	require.NoError(t, err)
	require.Zero(t, applied)

	rolledBack, err := database.MigrateDown(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, rolledBack)

	version, err = database.SchemaVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, version)
}

func TestHealthCheck(t *testing.T) {
	database, err := db.OpenInMemory()
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, database.HealthCheck(context.Background()))
}
