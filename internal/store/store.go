// Package store provides the relational app accessor used by the router.
//
// Two drivers are supported: "sqlite" (modernc.org/sqlite, pure Go) and
// "pgx" (PostgreSQL through jackc/pgx). Queries are written with '?'
// placeholders and rebound for the active driver by sqlx.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

func init() {
	// sqlx only knows "sqlite3" out of the box.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Store implements core.AppAccessor on top of a SQL database.
type Store struct {
	db     *sqlx.DB
	driver string
	logger *slog.Logger
}

// Open connects to the database identified by driver and dsn.
// Use ":memory:" with the sqlite driver for a throwaway database.
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*Store, error) {
	if err := ValidateDriver(driver); err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, buildDSN(driver, dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if driver == DriverSQLite && isMemoryDSN(dsn) {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	return New(db, logger), nil
}

// New wraps an existing connection. The driver name is taken from db.
func New(db *sqlx.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		db:     db,
		driver: db.DriverName(),
		logger: logger,
	}
}

// ValidateDriver returns an error for unsupported driver names.
func ValidateDriver(driver string) error {
	switch driver {
	case DriverSQLite, DriverPostgres:
		return nil
	}
	return fmt.Errorf("unsupported database driver %q (want %q or %q)", driver, DriverSQLite, DriverPostgres)
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	return s.db.PingContext(ctx)
}

// Driver returns the database driver name.
func (s *Store) Driver() string {
	return s.driver
}

func (s *Store) rebind(query string) string {
	return s.db.Rebind(query)
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// buildDSN adds the pragmas the sqlite driver needs; other DSNs pass through.
func buildDSN(driver, dsn string) string {
	if driver != DriverSQLite {
		return dsn
	}
	if dsn == ":memory:" {
		return ":memory:?_pragma=foreign_keys(1)"
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}
