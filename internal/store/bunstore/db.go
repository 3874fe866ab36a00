package bunstore

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/extra/bundebug"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	ErrDSNRequired       = errors.New("bunstore: dsn is required")
	ErrUnsupportedDriver = errors.New("bunstore: unsupported driver")
)

// DBOptions selects the driver and query logging for OpenDB.
type DBOptions struct {
	Driver string
	DSN    string
	// Debug logs every query to DebugWriter.
	Debug       bool
	DebugWriter io.Writer
}

// OpenDB opens a bun handle for SQLite (mattn/go-sqlite3) or Postgres
// (lib/pq).
func OpenDB(opts DBOptions) (*bun.DB, error) {
	if strings.TrimSpace(opts.DSN) == "" {
		return nil, ErrDSNRequired
	}

	var db *bun.DB
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case DriverSQLite, "sqlite3":
		sqldb, err := sql.Open("sqlite3", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("bunstore: open sqlite: %w", err)
		}
		// a single connection keeps in-memory databases and write locks sane
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	case DriverPostgres, "postgresql":
		sqldb, err := sql.Open("postgres", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("bunstore: open postgres: %w", err)
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, opts.Driver)
	}

	if opts.Debug {
		hookOpts := []bundebug.Option{bundebug.WithVerbose(true)}
		if opts.DebugWriter != nil {
			hookOpts = append(hookOpts, bundebug.WithWriter(opts.DebugWriter))
		}
		db.AddQueryHook(bundebug.NewQueryHook(hookOpts...))
	}
	return db, nil
}
