package ethrpc

import (
	"fmt"
)

// Built-in chain ids.
const (
	MainnetChainID   = "0x1"
	RinkebyChainID   = "0x4"
	RopstenChainID   = "0x3"
	GoerliChainID    = "0x5"
	KovanChainID     = "0x2a"
	LocalhostChainID = "0x539"
)

const (
	LocalhostURL = "http://localhost:8545"

	DefaultURLTemplate        = "https://%s-infura.brave.com/%s"
	DefaultStagingURLTemplate = "https://%s-staging-infura.bravesoftware.com/%s"
)

// DefaultProjectID can be set at link time (-ldflags "-X ...ethrpc.DefaultProjectID=...").
var DefaultProjectID = ""

var ethCurrency = NativeCurrency{Name: "Ethereum", Symbol: "ETH", Decimals: 18}

type knownNetwork struct {
	chainID   string
	name      string
	subdomain string // empty means fixedURL
	fixedURL  string
	explorer  string
	// unlisted chains resolve but are left out of KnownNetworks.
	unlisted bool
}

// knownNetworks is also the order AllNetworks reports built-ins in.
var knownNetworks = []knownNetwork{
	{chainID: MainnetChainID, name: "Ethereum Mainnet", subdomain: "mainnet", explorer: "https://etherscan.io"},
	{chainID: RinkebyChainID, name: "Rinkeby Test Network", subdomain: "rinkeby", explorer: "https://rinkeby.etherscan.io"},
	{chainID: RopstenChainID, name: "Ropsten Test Network", subdomain: "ropsten", explorer: "https://ropsten.etherscan.io", unlisted: true},
	{chainID: GoerliChainID, name: "Goerli Test Network", subdomain: "goerli", explorer: "https://goerli.etherscan.io"},
	{chainID: KovanChainID, name: "Kovan Test Network", subdomain: "kovan", explorer: "https://kovan.etherscan.io"},
	{chainID: LocalhostChainID, name: "Localhost", fixedURL: LocalhostURL},
}

// RegistryConfig is process-wide endpoint configuration, resolved once at
// startup and never re-read.
type RegistryConfig struct {
	ProjectID          string
	UseStaging         bool
	URLTemplate        string
	StagingURLTemplate string
}

// Registry knows the built-in chains and merges in custom ones on demand.
type Registry struct {
	cfg   RegistryConfig
	index map[string]*knownNetwork
}

func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.ProjectID == "" {
		cfg.ProjectID = DefaultProjectID
	}
	if cfg.URLTemplate == "" {
		cfg.URLTemplate = DefaultURLTemplate
	}
	if cfg.StagingURLTemplate == "" {
		cfg.StagingURLTemplate = DefaultStagingURLTemplate
	}

	r := &Registry{
		cfg:   cfg,
		index: make(map[string]*knownNetwork, len(knownNetworks)),
	}
	for i := range knownNetworks {
		r.index[knownNetworks[i].chainID] = &knownNetworks[i]
	}
	return r
}

func (r *Registry) Config() RegistryConfig {
	return r.cfg
}

func (r *Registry) endpointFor(n *knownNetwork) string {
	if n.subdomain == "" {
		return n.fixedURL
	}
	tmpl := r.cfg.URLTemplate
	if r.cfg.UseStaging {
		tmpl = r.cfg.StagingURLTemplate
	}
	return fmt.Sprintf(tmpl, n.subdomain, r.cfg.ProjectID)
}

// KnownNetworkURL returns the endpoint of a built-in chain, or "" if chainID
// is not built in.
func (r *Registry) KnownNetworkURL(chainID string) string {
	n, ok := r.index[chainID]
	if !ok {
		return ""
	}
	return r.endpointFor(n)
}

// ResolveEndpoint looks chainID up in the built-in table first (exact,
// case-sensitive), then in custom. A custom chain without RPC URLs resolves
// to nothing.
func (r *Registry) ResolveEndpoint(chainID string, custom []EthereumChain) (string, bool) {
	if u := r.KnownNetworkURL(chainID); u != "" {
		return u, true
	}
	for _, c := range custom {
		if c.ChainID != chainID {
			continue
		}
		if len(c.RPCURLs) == 0 || c.RPCURLs[0] == "" {
			return "", false
		}
		return c.RPCURLs[0], true
	}
	return "", false
}

func (r *Registry) ResolveName(chainID string) string {
	if n, ok := r.index[chainID]; ok {
		return n.name
	}
	return ""
}

// ResolveBlockExplorer only knows built-in chains.
func (r *Registry) ResolveBlockExplorer(chainID string) string {
	if n, ok := r.index[chainID]; ok {
		return n.explorer
	}
	return ""
}

func (r *Registry) knownChain(n *knownNetwork) EthereumChain {
	c := EthereumChain{
		ChainID:           n.chainID,
		ChainName:         n.name,
		BlockExplorerURLs: []string{},
		IconURLs:          []string{},
		RPCURLs:           []string{r.endpointFor(n)},
		Currency:          ethCurrency,
	}
	if n.explorer != "" {
		c.BlockExplorerURLs = append(c.BlockExplorerURLs, n.explorer)
	}
	return c
}

// KnownNetworks returns the listed built-in chains in their fixed order.
// Ropsten still resolves by id but is not offered.
func (r *Registry) KnownNetworks() []EthereumChain {
	out := make([]EthereumChain, 0, len(knownNetworks))
	for i := range knownNetworks {
		if knownNetworks[i].unlisted {
			continue
		}
		out = append(out, r.knownChain(&knownNetworks[i]))
	}
	return out
}

// AllNetworks is the built-in catalog followed by every custom chain in the
// order it was stored.
func (r *Registry) AllNetworks(custom []EthereumChain) []EthereumChain {
	out := r.KnownNetworks()
	return append(out, custom...)
}

func (r *Registry) IsKnown(chainID string) bool {
	_, ok := r.index[chainID]
	return ok
}
