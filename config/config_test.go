package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quantumauth-io/quantum-wallet-rpc/chainstore"
	"github.com/quantumauth-io/quantum-wallet-rpc/ethrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "0x1", s.Network.ChainID)
	assert.Equal(t, 30*time.Second, s.Transport.Timeout)
	assert.Equal(t, 16, s.Transport.MaxConcurrency)
	assert.EqualValues(t, 3, s.Transport.MaxRetries)
	assert.Equal(t, StoreMemory, s.ChainStore.Backend)
	assert.Equal(t, chainstore.DefaultRedisKey, s.ChainStore.RedisKey)
	assert.Equal(t, "info", s.Log.Level)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
network:
  chainid: "0x5"
infura:
  projectid: abc
  staging: true
`), 0o600))

	s, err := Load("", dir)
	require.NoError(t, err)
	assert.Equal(t, "0x5", s.Network.ChainID)
	assert.Equal(t, "abc", s.Infura.ProjectID)
	assert.True(t, s.Infura.Staging)
	// untouched keys keep their defaults
	assert.Equal(t, 30*time.Second, s.Transport.Timeout)

	reg := ethrpc.NewRegistry(s.RegistryConfig())
	assert.Equal(t, "https://goerli-staging-infura.bravesoftware.com/abc", reg.KnownNetworkURL("0x5"))
}

func TestLoadExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.yaml")
	require.NoError(t, os.WriteFile(path, []byte("transport:\n  timeout: 5s\n"), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, s.TransportOptions().Timeout)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("NETWORK_CHAINID", "0x2a")
	t.Setenv("INFURA_PROJECTID", "from-env")

	s, err := Load("", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "0x2a", s.Network.ChainID)
	assert.Equal(t, "from-env", s.RegistryConfig().ProjectID)
}

func TestOpenChainStore(t *testing.T) {
	ctx := context.Background()
	s, err := Load("", t.TempDir())
	require.NoError(t, err)

	store, err := s.OpenChainStore(ctx)
	require.NoError(t, err)
	assert.IsType(t, &chainstore.MemoryStore{}, store)

	s.ChainStore.Backend = StoreFile
	_, err = s.OpenChainStore(ctx)
	assert.Error(t, err, "file backend needs a path")

	s.ChainStore.File = filepath.Join(t.TempDir(), "networks.yaml")
	store, err = s.OpenChainStore(ctx)
	require.NoError(t, err)
	assert.IsType(t, &chainstore.FileStore{}, store)

	s.ChainStore.Backend = "etcd"
	_, err = s.OpenChainStore(ctx)
	assert.Error(t, err)
}
