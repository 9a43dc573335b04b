package migrations

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func getTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	if os.Getenv("TEST_WITH_CONTAINERS") == "" {
		t.Skip("set TEST_WITH_CONTAINERS=1 to run migration tests")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)

	cleanup := func() {
		_ = db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	}
	return db, cleanup
}

func TestRun_AppliesSchema(t *testing.T) {
	db, cleanup := getTestDB(t)
	defer cleanup()

	path, err := filepath.Abs("../../migrations")
	require.NoError(t, err)

	require.NoError(t, Run(db, path))
	// Повторный запуск не должен падать: все миграции уже применены.
	require.NoError(t, Run(db, path))

	for _, table := range []string{"users", "devices", "passes"} {
		var exists bool
		err := db.QueryRow(`SELECT EXISTS (
			SELECT FROM information_schema.tables WHERE table_name = $1
		)`, table).Scan(&exists)
		require.NoError(t, err)
		require.True(t, exists, "table %s must exist", table)
	}
}
