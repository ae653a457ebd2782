package ethrpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnownNetworkURL(t *testing.T) {
	r := NewRegistry(RegistryConfig{ProjectID: "pid"})

	assert.Equal(t, "https://mainnet-infura.brave.com/pid", r.KnownNetworkURL(MainnetChainID))
	assert.Equal(t, "https://rinkeby-infura.brave.com/pid", r.KnownNetworkURL(RinkebyChainID))
	assert.Equal(t, "https://ropsten-infura.brave.com/pid", r.KnownNetworkURL(RopstenChainID))
	assert.Equal(t, "https://goerli-infura.brave.com/pid", r.KnownNetworkURL(GoerliChainID))
	assert.Equal(t, "https://kovan-infura.brave.com/pid", r.KnownNetworkURL(KovanChainID))
	assert.Equal(t, LocalhostURL, r.KnownNetworkURL(LocalhostChainID))
	assert.Empty(t, r.KnownNetworkURL("0x89"))
	// ids are matched exactly
	assert.Empty(t, r.KnownNetworkURL("0x01"))
	assert.Empty(t, r.KnownNetworkURL("0X1"))
}

func TestStagingTemplate(t *testing.T) {
	r := NewRegistry(RegistryConfig{ProjectID: "pid", UseStaging: true})
	assert.Equal(t, "https://mainnet-staging-infura.bravesoftware.com/pid", r.KnownNetworkURL(MainnetChainID))
	assert.Equal(t, LocalhostURL, r.KnownNetworkURL(LocalhostChainID))

	custom := NewRegistry(RegistryConfig{ProjectID: "k", URLTemplate: "https://%s.example.org/v3/%s"})
	assert.Equal(t, "https://kovan.example.org/v3/k", custom.KnownNetworkURL(KovanChainID))
}

func TestResolveEndpoint(t *testing.T) {
	r := NewRegistry(RegistryConfig{ProjectID: "pid"})
	custom := []EthereumChain{
		{ChainID: "0x89", ChainName: "Polygon", RPCURLs: []string{"https://polygon-rpc.com", "https://backup"}},
		{ChainID: "0x64", ChainName: "No RPC"},
		{ChainID: MainnetChainID, ChainName: "Shadow", RPCURLs: []string{"https://shadow.example"}},
	}

	u, ok := r.ResolveEndpoint("0x89", custom)
	require.True(t, ok)
	assert.Equal(t, "https://polygon-rpc.com", u)

	_, ok = r.ResolveEndpoint("0x64", custom)
	assert.False(t, ok)

	_, ok = r.ResolveEndpoint("0xabc", custom)
	assert.False(t, ok)

	u, ok = r.ResolveEndpoint(MainnetChainID, custom)
	require.True(t, ok)
	assert.Equal(t, "https://mainnet-infura.brave.com/pid", u, "built-in wins")
}

func TestResolveNameAndExplorer(t *testing.T) {
	r := NewRegistry(RegistryConfig{})
	assert.Equal(t, "Ethereum Mainnet", r.ResolveName(MainnetChainID))
	assert.Equal(t, "https://etherscan.io", r.ResolveBlockExplorer(MainnetChainID))
	assert.Equal(t, "https://goerli.etherscan.io", r.ResolveBlockExplorer(GoerliChainID))
	assert.Empty(t, r.ResolveBlockExplorer(LocalhostChainID))
	assert.Empty(t, r.ResolveName("0x89"))
	assert.Empty(t, r.ResolveBlockExplorer("0x89"))
}

func TestAllNetworks(t *testing.T) {
	r := NewRegistry(RegistryConfig{ProjectID: "pid"})

	known := r.AllNetworks(nil)
	require.Len(t, known, 5)
	ids := make([]string, 0, len(known))
	for _, n := range known {
		ids = append(ids, n.ChainID)
		assert.Equal(t, "ETH", n.Currency.Symbol)
		assert.Equal(t, 18, n.Currency.Decimals)
		require.Len(t, n.RPCURLs, 1)
	}
	assert.Equal(t, []string{"0x1", "0x4", "0x5", "0x2a", "0x539"}, ids)

	// ropsten is not offered but still resolves
	assert.True(t, r.IsKnown(RopstenChainID))
	url, ok := r.ResolveEndpoint(RopstenChainID, nil)
	assert.True(t, ok)
	assert.Equal(t, "https://ropsten-infura.brave.com/pid", url)
	assert.Equal(t, "https://ropsten.etherscan.io", r.ResolveBlockExplorer(RopstenChainID))

	custom := []EthereumChain{
		{ChainID: "0x89", ChainName: "Polygon"},
		{ChainID: LocalhostChainID, ChainName: "My localhost"},
	}
	all := r.AllNetworks(custom)
	require.Len(t, all, 7)
	assert.Equal(t, "0x89", all[5].ChainID)
	assert.Equal(t, LocalhostChainID, all[6].ChainID)
	assert.Equal(t, "My localhost", all[6].ChainName)
}
