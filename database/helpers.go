package database

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/quantumauth-io/quantum-wallet-rpc/retry"
)

const (
	databaseDriverType = "postgresql"

	defaultMaxRetry = 6

	defaultMinDBPoolSize = 1
	defaultMaxDBPoolSize = 8

	defaultConnectionMaxLifetime = 2 * time.Minute
	defaultConnectionMaxIdleTime = 30 * time.Second
	defaultHealthCheckPeriod     = 15 * time.Second

	uniqueConstraintViolationCode = "23505"
)

type DatabaseSettings struct {
	Host                  string
	Port                  string
	User                  string
	Password              string
	Database              string
	SSLModeDisable        bool
	CertPath              string
	ConnectionMaxLifetime time.Duration
	ConnectionMaxIdleTime time.Duration
	MaxPoolSize           uint
	MinPoolSize           uint
}

func defaultRetryConfig() *retry.Config {
	cfg := retry.DefaultConfig()
	cfg.MaxDelayBeforeRetrying = 1 * time.Second
	cfg.MaxNumRetries = defaultMaxRetry
	return cfg
}

func migrateWithIOFS(ctx context.Context, src source.Driver, cfg DatabaseSettings) error {
	connectionString, err := getConnectionString(cfg)
	if err != nil {
		return errors.Wrap(err, "Failed to create connection string")
	}

	_, err = retry.Do(ctx, defaultRetryConfig(),
		func(context.Context) (struct{}, error) {
			m, err2 := migrate.NewWithSourceInstance("iofs", src, "postgres://"+connectionString)
			if err2 != nil {
				return struct{}{}, errors.Wrap(err2, "Failed to initialize migrations")
			}
			defer m.Close()
			if err3 := m.Up(); err3 != nil && !errors.Is(err3, migrate.ErrNoChange) {
				return struct{}{}, errors.Wrap(err3, "error migrating database schema")
			}
			return struct{}{}, nil
		},
		nil,
		"Database Migration",
	)
	return err
}

func getConnectionString(dbSettings DatabaseSettings) (string, error) {
	connString := fmt.Sprintf("%s:%s@%s/%s",
		dbSettings.User,
		dbSettings.Password,
		net.JoinHostPort(dbSettings.Host, dbSettings.Port),
		dbSettings.Database,
	)

	// Local/dev docker etc.
	if dbSettings.SSLModeDisable {
		return connString + "?sslmode=disable", nil
	}

	// Encryption required; only verify the CA when a cert path is provided.
	if dbSettings.CertPath == "" {
		return connString + "?sslmode=require", nil
	}

	if _, err := os.Stat(dbSettings.CertPath); errors.Is(err, os.ErrNotExist) {
		return "", errors.New("ssl mode was enabled but cert file not found")
	} else if err != nil {
		return "", err
	}

	return connString + fmt.Sprintf("?sslmode=verify-ca&sslrootcert=%s", dbSettings.CertPath), nil
}

func applyPoolSettings(cfg *pgxpool.Config, dbSettings DatabaseSettings) {
	minPool := dbSettings.MinPoolSize
	if minPool == 0 {
		minPool = defaultMinDBPoolSize
	}
	maxPool := dbSettings.MaxPoolSize
	if maxPool == 0 {
		maxPool = defaultMaxDBPoolSize
	}
	maxLifetime := dbSettings.ConnectionMaxLifetime
	if maxLifetime == 0 {
		maxLifetime = defaultConnectionMaxLifetime
	}
	maxIdle := dbSettings.ConnectionMaxIdleTime
	if maxIdle == 0 {
		maxIdle = defaultConnectionMaxIdleTime
	}

	cfg.MinConns = int32(minPool)
	cfg.MaxConns = int32(maxPool)
	cfg.MaxConnLifetime = maxLifetime
	cfg.MaxConnIdleTime = maxIdle
	cfg.HealthCheckPeriod = defaultHealthCheckPeriod
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	// never retry "no rows"
	if errors.Is(err, pgx.ErrNoRows) {
		return false
	}

	// never retry unique constraint violations
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueConstraintViolationCode {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueConstraintViolationCode {
		return false
	}

	// network-level errors: let the pool hand out a fresh connection
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return true
	}

	// default: optimistic for Cockroach / transient DB errors
	return true
}
