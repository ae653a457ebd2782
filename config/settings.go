package config

import (
	"context"
	_ "embed"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/quantumauth-io/quantum-wallet-rpc/chainstore"
	"github.com/quantumauth-io/quantum-wallet-rpc/database"
	"github.com/quantumauth-io/quantum-wallet-rpc/ethrpc"
	"github.com/quantumauth-io/quantum-wallet-rpc/log"
	"github.com/quantumauth-io/quantum-wallet-rpc/redis"
)

//go:embed default.yaml
var DefaultYAML []byte

const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Settings struct {
	Network struct {
		ChainID string
	}
	Infura struct {
		ProjectID string
		Staging   bool
	}
	Transport struct {
		Timeout        time.Duration
		MaxConcurrency int
		MaxRetries     int32
	}
	ChainStore struct {
		Backend  string
		File     string
		RedisKey string
		Redis    redis.Config
		Database database.DatabaseSettings
	}
	Log log.Config
}

// Load reads config.yaml from paths, or the file at explicit when it is set,
// over the embedded defaults.
func Load(explicit string, paths ...string) (*Settings, error) {
	if explicit != "" {
		return ParseFile[Settings](explicit, DefaultYAML)
	}
	return ParseConfigWithEmbedded[Settings](paths, DefaultYAML)
}

// RegistryConfig falls back to the build-time project id when none is configured.
func (s *Settings) RegistryConfig() ethrpc.RegistryConfig {
	projectID := s.Infura.ProjectID
	if projectID == "" {
		projectID = ethrpc.DefaultProjectID
	}
	return ethrpc.RegistryConfig{
		ProjectID:  projectID,
		UseStaging: s.Infura.Staging,
	}
}

func (s *Settings) TransportOptions() ethrpc.TransportOptions {
	return ethrpc.TransportOptions{
		Timeout:        s.Transport.Timeout,
		MaxConcurrency: s.Transport.MaxConcurrency,
		MaxRetries:     s.Transport.MaxRetries,
	}
}

// OpenChainStore connects the configured custom chain backend.
func (s *Settings) OpenChainStore(ctx context.Context) (chainstore.Store, error) {
	switch strings.ToLower(s.ChainStore.Backend) {
	case "", StoreMemory:
		return chainstore.NewMemoryStore(), nil
	case StoreFile:
		if s.ChainStore.File == "" {
			return nil, errors.New("chainstore.file must be set for the file backend")
		}
		return chainstore.NewFileStore(s.ChainStore.File), nil
	case StoreRedis:
		rdb, err := redis.NewClient(ctx, s.ChainStore.Redis)
		if err != nil {
			return nil, err
		}
		return chainstore.NewRedisStore(rdb, s.ChainStore.RedisKey), nil
	case StorePostgres:
		db, err := database.NewCockroachPGXDatabase(ctx, s.ChainStore.Database)
		if err != nil {
			return nil, err
		}
		store, err := chainstore.NewPostgresStore(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, errors.Errorf("unknown chainstore backend %q", s.ChainStore.Backend)
	}
}
