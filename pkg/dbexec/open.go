package dbexec

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Register the "pgx" and "postgres" database/sql drivers.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

// Open connects with the named driver ("pgx" or "postgres") and verifies the
// connection before returning it.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, mapError("ping", err)
	}
	return db, nil
}
