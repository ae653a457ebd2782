package database

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConnectionString(t *testing.T) {
	s := DatabaseSettings{Host: "db", Port: "26257", User: "root", Password: "pw", Database: "wallet"}

	s.SSLModeDisable = true
	got, err := getConnectionString(s)
	require.NoError(t, err)
	assert.Equal(t, "root:pw@db:26257/wallet?sslmode=disable", got)

	s.SSLModeDisable = false
	got, err = getConnectionString(s)
	require.NoError(t, err)
	assert.Equal(t, "root:pw@db:26257/wallet?sslmode=require", got)

	s.CertPath = filepath.Join(t.TempDir(), "missing.crt")
	_, err = getConnectionString(s)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(s.CertPath, []byte("cert"), 0o600))
	got, err = getConnectionString(s)
	require.NoError(t, err)
	assert.Equal(t, "root:pw@db:26257/wallet?sslmode=verify-ca&sslrootcert="+s.CertPath, got)
}

func TestApplyPoolSettings(t *testing.T) {
	cfg, err := pgxpool.ParseConfig("postgresql://root@localhost:26257/wallet")
	require.NoError(t, err)

	applyPoolSettings(cfg, DatabaseSettings{})
	assert.EqualValues(t, defaultMinDBPoolSize, cfg.MinConns)
	assert.EqualValues(t, defaultMaxDBPoolSize, cfg.MaxConns)
	assert.Equal(t, defaultConnectionMaxLifetime, cfg.MaxConnLifetime)
	assert.Equal(t, defaultConnectionMaxIdleTime, cfg.MaxConnIdleTime)

	applyPoolSettings(cfg, DatabaseSettings{MinPoolSize: 2, MaxPoolSize: 20, ConnectionMaxLifetime: time.Hour})
	assert.EqualValues(t, 2, cfg.MinConns)
	assert.EqualValues(t, 20, cfg.MaxConns)
	assert.Equal(t, time.Hour, cfg.MaxConnLifetime)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, isRetryable(nil))
	assert.False(t, isRetryable(pgx.ErrNoRows))
	assert.False(t, isRetryable(errors.Wrap(pgx.ErrNoRows, "select")))
	assert.False(t, isRetryable(&pgconn.PgError{Code: uniqueConstraintViolationCode}))
	assert.False(t, isRetryable(&pq.Error{Code: uniqueConstraintViolationCode}))

	assert.True(t, isRetryable(&pgconn.PgError{Code: "40001"}))
	assert.True(t, isRetryable(&net.OpError{Op: "dial"}))
	assert.True(t, isRetryable(errors.New("something transient")))
}
