package redis

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/pkg/errors"
	"github.com/quantumauth-io/quantum-wallet-rpc/retry"
	"github.com/redis/go-redis/v9"
)

const defaultConnectAttempts = 5

type Config struct {
	Host         string        // "localhost"
	Port         string        // "6379"
	Username     string        // optional
	Password     string        // optional
	DB           int           // default 0
	TLS          bool          // enable TLS
	DialTimeout  time.Duration // default 5s
	ReadTimeout  time.Duration // default 3s
	WriteTimeout time.Duration // default 3s
	// ConnectAttempts bounds the initial ping; default 5.
	ConnectAttempts int32
}

func (cfg Config) withDefaults() Config {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == "" {
		cfg.Port = "6379"
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 3 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 3 * time.Second
	}
	if cfg.ConnectAttempts <= 0 {
		cfg.ConnectAttempts = defaultConnectAttempts
	}
	return cfg
}

// Options translates cfg into go-redis options.
func (cfg Config) Options() *redis.Options {
	cfg = cfg.withDefaults()
	opts := &redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}
	return opts
}

// NewClient creates a client and pings it, retrying while the server comes up.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	cfg = cfg.withDefaults()
	rdb := redis.NewClient(cfg.Options())

	retryCfg := retry.Bounded(cfg.ConnectAttempts-1, time.Second)
	_, err := retry.Do(ctx, retryCfg, func(ctx context.Context) (string, error) {
		return rdb.Ping(ctx).Result()
	}, nil, "Redis Ping")
	if err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(err, "failed to connect to redis at %s:%s", cfg.Host, cfg.Port)
	}

	return rdb, nil
}
