// Package testutil provides a shared PostgreSQL container for integration tests.
package testutil

import (
	"context"
	"crypto/rand"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"fmt"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Fixture creates the users and orders tables with a handful of rows.
//
//go:embed testdata/fixture.sql
var Fixture string

// Singleton container state
var (
	singletonOnce sync.Once
	singletonDSN  string
	singletonErr  error
)

// ensureSingleton lazily starts the PostgreSQL container shared by every test
// in the process. Ryuk removes it when the process exits.
func ensureSingleton() (string, error) {
	singletonOnce.Do(func() {
		ctx := context.Background()

		container, err := postgres.Run(ctx,
			"postgres:18-alpine",
			postgres.WithDatabase("postgres"),
			postgres.WithUsername("test"),
			postgres.WithPassword("test"),
			testcontainers.WithEnv(map[string]string{
				"POSTGRES_INITDB_ARGS": "--auth-host=trust",
			}),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			singletonErr = fmt.Errorf("failed to start PostgreSQL container: %w", err)
			return
		}

		dsn, err := container.ConnectionString(ctx)
		if err != nil {
			_ = container.Terminate(ctx)
			singletonErr = fmt.Errorf("failed to get PostgreSQL connection string: %w", err)
			return
		}

		singletonDSN = dsn + "sslmode=disable"
	})

	return singletonDSN, singletonErr
}

// SkipUnlessIntegration skips tb in -short mode or when no container
// provider is reachable.
func SkipUnlessIntegration(tb testing.TB) {
	tb.Helper()
	if testing.Short() {
		tb.Skip("skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(tb.(*testing.T))
}

// DSN returns a connection string for a fresh database loaded with Fixture.
// The database is dropped when the test completes.
func DSN(tb testing.TB) string {
	tb.Helper()
	SkipUnlessIntegration(tb)

	adminDSN, err := ensureSingleton()
	require.NoError(tb, err, "failed to start PostgreSQL container")

	name := uniqueDBName("sqlast")
	require.NoError(tb, createDatabase(adminDSN, name), "failed to create test database")
	tb.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = dropDatabase(ctx, adminDSN, name)
	})

	dsn := replaceDBName(adminDSN, name)
	db, err := sql.Open("pgx", dsn)
	require.NoError(tb, err)
	defer func() { _ = db.Close() }()
	_, err = db.Exec(Fixture)
	require.NoError(tb, err, "failed to load fixture")

	return dsn
}

// DB returns a connection to a fresh database loaded with Fixture.
func DB(tb testing.TB) *sql.DB {
	tb.Helper()
	db, err := sql.Open("pgx", DSN(tb))
	require.NoError(tb, err, "failed to connect to test database")
	require.NoError(tb, db.Ping(), "failed to ping test database")
	tb.Cleanup(func() { _ = db.Close() })
	return db
}

// uniqueDBName generates a unique database name with the given prefix.
func uniqueDBName(prefix string) string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b))
}

func createDatabase(adminDSN, name string) error {
	db, err := sql.Open("pgx", adminDSN)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	_, err = db.Exec("CREATE DATABASE " + pq.QuoteIdentifier(name))
	return err
}

func dropDatabase(ctx context.Context, adminDSN, name string) error {
	db, err := sql.Open("pgx", adminDSN)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	_, err = db.ExecContext(ctx, "DROP DATABASE IF EXISTS "+pq.QuoteIdentifier(name)+" WITH (FORCE)")
	return err
}

// replaceDBName replaces the database name in a PostgreSQL URL DSN,
// preserving any query string.
func replaceDBName(dsn, newDB string) string {
	for i := len(dsn) - 1; i >= 0; i-- {
		if dsn[i] == '/' {
			rest := ""
			for j := i + 1; j < len(dsn); j++ {
				if dsn[j] == '?' {
					rest = dsn[j:]
					break
				}
			}
			return dsn[:i+1] + newDB + rest
		}
	}
	return dsn
}
