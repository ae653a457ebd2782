package database

import (
	"context"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/crdb"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	"github.com/quantumauth-io/quantum-wallet-rpc/retry"
	"go.elastic.co/apm/module/apmpgx/v2"
)

// Database is the subset of a SQL connection pool the wallet stores use.
type Database interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (int64, error)
	Query(ctx context.Context, sql string, arguments ...interface{}) (Rows, error)
	MigrateWithIOFS(ctx context.Context, src source.Driver) error
	Ping(ctx context.Context) error
	Close() error
}

type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
	Close() error
}

type CockroachPGXDatabase struct {
	dbPool   *pgxpool.Pool
	settings DatabaseSettings
}

var _ Database = (*CockroachPGXDatabase)(nil)

type pgxDatabaseRows struct {
	rows pgx.Rows
}

func NewCockroachPGXDatabase(ctx context.Context, dbSettings DatabaseSettings) (*CockroachPGXDatabase, error) {
	connStr, err := getConnectionString(dbSettings)
	if err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(databaseDriverType + "://" + connStr)
	if err != nil {
		return nil, errors.Wrap(err, "invalid database settings")
	}
	applyPoolSettings(poolCfg, dbSettings)
	apmpgx.Instrument(poolCfg.ConnConfig)

	dbPool, err := retryDo(ctx, "Database Connection", func(ctx context.Context) (*pgxpool.Pool, error) {
		p, err2 := pgxpool.ConnectConfig(ctx, poolCfg)
		if err2 != nil {
			return nil, errors.Wrap(err2, "error opening the database")
		}
		return p, nil
	}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to instantiate db after retries")
	}
	return &CockroachPGXDatabase{dbPool: dbPool, settings: dbSettings}, nil
}

func retryDo[T any](ctx context.Context, desc string, fn func(ctx context.Context) (T, error), shouldRetry func(error) bool) (T, error) {
	return retry.Do(ctx, defaultRetryConfig(), fn, shouldRetry, desc)
}

func (db *CockroachPGXDatabase) MigrateWithIOFS(ctx context.Context, src source.Driver) error {
	return migrateWithIOFS(ctx, src, db.settings)
}

func (db *CockroachPGXDatabase) GetSettings() DatabaseSettings {
	return db.settings
}

// Exec runs a statement through crdb.Execute so Cockroach serialization
// failures are retried in place, and the whole thing under the retry budget.
func (db *CockroachPGXDatabase) Exec(ctx context.Context, sql string, arguments ...interface{}) (int64, error) {
	affected, err := retryDo(ctx, "Database Exec", func(ctx context.Context) (int64, error) {
		var n int64
		err := crdb.Execute(func() error {
			tag, err := db.dbPool.Exec(ctx, sql, arguments...)
			if err != nil {
				return err
			}
			n = tag.RowsAffected()
			return nil
		})
		return n, err
	}, isRetryable)
	if err != nil {
		return 0, errors.Wrapf(err, "Failed to execute %s after retries", sql)
	}
	return affected, nil
}

func (db *CockroachPGXDatabase) Query(ctx context.Context, sql string, arguments ...interface{}) (Rows, error) {
	rows, err := retryDo(ctx, "Database Query", func(ctx context.Context) (pgx.Rows, error) {
		var rows pgx.Rows
		err := crdb.Execute(func() error {
			var err error
			rows, err = db.dbPool.Query(ctx, sql, arguments...)
			return err
		})
		return rows, err
	}, isRetryable)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to queryRows %s after retries", sql)
	}
	return &pgxDatabaseRows{rows}, nil
}

func (pgxRows *pgxDatabaseRows) Close() error {
	pgxRows.rows.Close()
	return nil
}
func (pgxRows *pgxDatabaseRows) Err() error {
	return pgxRows.rows.Err()
}
func (pgxRows *pgxDatabaseRows) Next() bool {
	return pgxRows.rows.Next()
}
func (pgxRows *pgxDatabaseRows) Scan(dest ...interface{}) error {
	return pgxRows.rows.Scan(dest...)
}

func (db *CockroachPGXDatabase) Close() error {
	db.dbPool.Close()
	return nil
}

// Ping keeps trying for up to a minute; containers often start before the db.
func (db *CockroachPGXDatabase) Ping(ctx context.Context) error {
	deadline := time.Now().Add(60 * time.Second)
	var err error
	for time.Now().Before(deadline) {
		if err = db.dbPool.Ping(ctx); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	return errors.Wrap(err, "failed to ping database")
}
