package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq" // registers "postgres"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // registers "sqlite"

	txutil "magazine-catalog/pkg/database"
)

// Querier is the statement surface shared by *sql.Conn and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Gateway is the storage gateway used by the catalog.
// Every call checks out exactly one connection and returns it before
// the call returns, whatever the outcome.
type Gateway struct {
	db     *sql.DB
	driver string
	pg     *PostgresDB
	log    zerolog.Logger
}

// NewGateway wraps an already opened *sql.DB.
func NewGateway(db *sql.DB, driver string, log zerolog.Logger) *Gateway {
	return &Gateway{db: db, driver: driver, log: log}
}

// Open connects using the configured driver.
func Open(ctx context.Context, cfg *DBConfig, log zerolog.Logger) (*Gateway, error) {
	switch cfg.Driver {
	case DriverPgx:
		pg := NewPostgresDB(cfg)
		if err := pg.Connect(ctx); err != nil {
			return nil, err
		}
		gw := NewGateway(stdlib.OpenDBFromPool(pg.Pool), DriverPgx, log)
		gw.pg = pg
		return gw, nil

	case DriverPostgres:
		db, err := sql.Open("postgres", cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		db.SetMaxOpenConns(int(cfg.MaxConns))
		db.SetMaxIdleConns(int(cfg.MinConns))
		db.SetConnMaxLifetime(cfg.MaxConnLifetime)
		db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)
		return openChecked(ctx, db, DriverPostgres, cfg.ConnectTimeout, log)

	case DriverSQLite:
		db, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		// sqlite serialises writers; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		return openChecked(ctx, db, DriverSQLite, cfg.ConnectTimeout, log)
	}

	return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
}

func openChecked(ctx context.Context, db *sql.DB, driver string, timeout time.Duration, log zerolog.Logger) (*Gateway, error) {
	gw := NewGateway(db, driver, log)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := gw.Ping(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return gw, nil
}

// Driver returns the driver name the gateway was opened with.
func (g *Gateway) Driver() string { return g.driver }

// DB exposes the underlying handle, mainly for tests and schema helpers.
func (g *Gateway) DB() *sql.DB { return g.db }

// WithConn runs fn on one connection. Used for reads.
func (g *Gateway) WithConn(ctx context.Context, fn func(Querier) error) error {
	err := txutil.WithConnection(ctx, g.db, func(conn *sql.Conn) error {
		return fn(conn)
	})
	if err != nil {
		g.log.Debug().Err(err).Msg("read failed")
	}
	return err
}

// WithTx runs fn inside a transaction on one connection and commits. Used for writes.
func (g *Gateway) WithTx(ctx context.Context, fn func(Querier) error) error {
	err := txutil.WithTransaction(ctx, g.db, func(tx *sql.Tx) error {
		return fn(tx)
	})
	if err != nil {
		g.log.Debug().Err(err).Msg("write rolled back")
	}
	return err
}

// Insert executes an INSERT ... RETURNING id statement in its own
// transaction and returns the generated id.
func (g *Gateway) Insert(ctx context.Context, query string, args ...any) (int64, error) {
	id, err := txutil.WithTransactionResult(ctx, g.db, func(tx *sql.Tx) (int64, error) {
		return InsertReturningID(ctx, tx, query, args...)
	})
	if err != nil {
		g.log.Debug().Err(err).Msg("insert rolled back")
	}
	return id, err
}

// InsertReturningID scans the id produced by an INSERT ... RETURNING id.
func InsertReturningID(ctx context.Context, q Querier, query string, args ...any) (int64, error) {
	var id int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Ping verifies the store is reachable.
func (g *Gateway) Ping(ctx context.Context) error {
	if g.pg != nil {
		return g.pg.Ping(ctx)
	}
	if err := g.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Stats returns a snapshot of the connection pool.
func (g *Gateway) Stats() PoolStats {
	s := g.db.Stats()
	return PoolStats{
		OpenConnections: s.OpenConnections,
		InUse:           s.InUse,
		Idle:            s.Idle,
		WaitCount:       s.WaitCount,
		WaitDuration:    s.WaitDuration,
		MaxOpen:         s.MaxOpenConnections,
	}
}

// Close releases the handle and, for pgx, the pool behind it.
func (g *Gateway) Close() error {
	err := g.db.Close()
	if g.pg != nil {
		g.pg.Close()
	}
	return err
}
