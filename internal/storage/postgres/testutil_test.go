package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"sld-dashboard/internal/storage/migrations"
)

// setupTestDB starts a throwaway PostgreSQL container with the schema
// applied. The returned cleanup must run after the test completes.
func setupTestDB(t *testing.T) (*Pool, func()) {
	t.Helper()

	ctx := context.Background()

	container, err := pgcontainer.Run(ctx, "postgres:15-alpine",
		pgcontainer.WithDatabase("testdb"),
		pgcontainer.WithUsername("test"),
		pgcontainer.WithPassword("test"),
		pgcontainer.BasicWaitStrategies(),
	)
	require.NoError(t, err, "start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "read connection string")

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err, "create pool")

	require.NoError(t, migrations.RunPostgresMigrations(ctx, pool), "apply migrations")

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}

	return pool, cleanup
}
