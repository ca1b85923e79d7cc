package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dimitrije/passkeeper/internal/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB is a migrated PostgreSQL running in a container.
type TestDB struct {
	DB        *database.DB
	Container testcontainers.Container
}

// StartTestDB starts a PostgreSQL container and migrates it. Callers own the
// returned TestDB and must Close it.
func StartTestDB(ctx context.Context) (*TestDB, error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "passkeeper_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	tdb := &TestDB{Container: container}

	host, err := container.Host(ctx)
	if err != nil {
		tdb.Close(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		tdb.Close(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/passkeeper_test?sslmode=disable", host, port.Port())

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		tdb.Close(ctx)
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}
	tdb.DB = &database.DB{Pool: pool}

	if err := tdb.DB.Migrate(ctx); err != nil {
		tdb.Close(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return tdb, nil
}

// Close releases the pool and terminates the container.
func (tdb *TestDB) Close(ctx context.Context) {
	if tdb.DB != nil {
		tdb.DB.Close()
	}
	if tdb.Container != nil {
		_ = tdb.Container.Terminate(ctx)
	}
}

// CleanTables empties every table, children first.
func (tdb *TestDB) CleanTables(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	tables := []string{
		"credentials",
		"refresh_tokens",
		"users",
	}

	for _, table := range tables {
		_, err := tdb.DB.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "truncate %s", table)
	}
}
