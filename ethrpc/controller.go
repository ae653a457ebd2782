package ethrpc

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/quantumauth-io/quantum-wallet-rpc/calldata"
	"github.com/quantumauth-io/quantum-wallet-rpc/log"
)

const defaultCustomChainsTimeout = 5 * time.Second

// CustomChainSource is the persisted list of user-added chains. The
// controller only reads it.
type CustomChainSource interface {
	CustomChains(ctx context.Context) ([]EthereumChain, error)
}

type (
	QuantityCallback func(ok bool, value *uint256.Int)
	StringCallback   func(ok bool, value string)
	ReceiptCallback  func(ok bool, receipt TransactionReceipt)
)

// Controller talks to the node of the currently selected chain. Every
// operation is asynchronous: it returns at once and later calls its callback
// exactly once, on the controller's own goroutine, with ok=false and a zero
// value on any failure. After Close no callback is started.
type Controller struct {
	mu         sync.RWMutex
	chainID    string
	networkURL string

	transport Transport
	registry  *Registry
	chains    CustomChainSource
	observers observerList
	seq       *sequence

	chainsTimeout time.Duration

	backendMu  sync.Mutex
	backend    *ethclient.Client
	backendURL string
}

type ControllerOption func(*Controller)

func WithCustomChains(src CustomChainSource) ControllerOption {
	return func(c *Controller) { c.chains = src }
}

// WithCustomChainsTimeout bounds each read of the custom chain source.
func WithCustomChainsTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d > 0 {
			c.chainsTimeout = d
		}
	}
}

// NewController binds to chainID if it resolves; otherwise the controller
// starts unbound and every request fails until SetNetwork succeeds.
func NewController(chainID string, transport Transport, registry *Registry, opts ...ControllerOption) *Controller {
	if registry == nil {
		registry = NewRegistry(RegistryConfig{})
	}
	c := &Controller{
		transport:     transport,
		registry:      registry,
		seq:           newSequence(),
		chainsTimeout: defaultCustomChainsTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.SetNetwork(chainID)
	return c
}

// Close drops every pending callback. It does not wait and may be called
// from inside a callback.
func (c *Controller) Close() {
	c.seq.stop()

	c.backendMu.Lock()
	if c.backend != nil {
		c.backend.Close()
		c.backend = nil
		c.backendURL = ""
	}
	c.backendMu.Unlock()
}

func (c *Controller) AddObserver(o NetworkObserver) {
	c.observers.add(o)
}

func (c *Controller) customChains() []EthereumChain {
	if c.chains == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.chainsTimeout)
	defer cancel()

	chains, err := c.chains.CustomChains(ctx)
	if err != nil {
		log.Warn("ethrpc: failed to read custom chains", "err", err)
		return nil
	}
	return chains
}

func isUsableEndpoint(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		return true
	}
	return false
}

// SetNetwork switches to chainID and notifies every observer, even when the
// chain does not change. If chainID does not resolve to a usable endpoint
// nothing changes, nobody is notified, and false is returned.
func (c *Controller) SetNetwork(chainID string) bool {
	var custom []EthereumChain
	if !c.registry.IsKnown(chainID) {
		custom = c.customChains()
	}
	endpoint, ok := c.registry.ResolveEndpoint(chainID, custom)
	if !ok || !isUsableEndpoint(endpoint) {
		log.Debug("ethrpc: network not applied", "chainId", chainID)
		return false
	}

	c.mu.Lock()
	c.chainID = chainID
	c.networkURL = endpoint
	c.mu.Unlock()

	log.Info("ethrpc: network changed", "chainId", chainID, "name", c.registry.ResolveName(chainID))
	c.observers.notify(chainID)
	return true
}

// SetCustomNetworkForTesting binds the Localhost chain to an arbitrary URL.
func (c *Controller) SetCustomNetworkForTesting(networkURL string) {
	c.mu.Lock()
	c.chainID = LocalhostChainID
	c.networkURL = networkURL
	c.mu.Unlock()

	c.observers.notify(LocalhostChainID)
}

func (c *Controller) ChainID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.chainID
}

func (c *Controller) NetworkURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.networkURL
}

func (c *Controller) BlockTrackerURL() string {
	return c.registry.ResolveBlockExplorer(c.ChainID())
}

// AllNetworks lists built-in chains then custom ones. No network call.
func (c *Controller) AllNetworks() []EthereumChain {
	return c.registry.AllNetworks(c.customChains())
}

func isSuccess(status int) bool {
	return status >= 200 && status <= 299
}

// post schedules fn on the controller's goroutine unless closed.
func (c *Controller) post(fn func()) {
	c.seq.post(fn)
}

// send issues one JSON-RPC call to the current endpoint and hands the raw
// outcome to done on the controller's goroutine.
func (c *Controller) send(method, payload string, autoRetry bool, done func(status int, body string)) {
	c.mu.RLock()
	chainID, endpoint := c.chainID, c.networkURL
	c.mu.RUnlock()

	requestID := uuid.NewString()
	log.Debug("ethrpc: request", "requestId", requestID, "method", method, "chainId", chainID)

	if endpoint == "" {
		c.post(func() { done(StatusTransportFailure, "") })
		return
	}

	seq := c.seq
	c.transport.Request("POST", endpoint, payload, jsonContentType, autoRetry,
		func(status int, body string, _ map[string]string) {
			if !isSuccess(status) {
				log.Debug("ethrpc: request failed", "requestId", requestID, "method", method, "status", status)
			}
			seq.post(func() { done(status, body) })
		})
}

// call runs the common shape: send, check status, parse, answer.
func call[T any](c *Controller, method, payload string, parse func(string) (T, error), fallback T, cb func(bool, T)) {
	c.send(method, payload, true, func(status int, body string) {
		if !isSuccess(status) {
			cb(false, fallback)
			return
		}
		v, err := parse(body)
		if err != nil {
			log.Debug("ethrpc: bad response", "method", method, "err", err)
			cb(false, fallback)
			return
		}
		cb(true, v)
	})
}

// Request is a passthrough for JSON-RPC calls without a typed wrapper. The
// body is handed over whatever the status.
func (c *Controller) Request(payload string, autoRetryOnNetworkChange bool, cb StringCallback) {
	c.send("raw", payload, autoRetryOnNetworkChange, func(status int, body string) {
		cb(isSuccess(status), body)
	})
}

func (c *Controller) GetBlockNumber(cb QuantityCallback) {
	call(c, "eth_blockNumber", EthBlockNumber(), ParseBlockNumber, uint256.NewInt(0), cb)
}

func (c *Controller) GetBalance(address string, cb StringCallback) {
	if !common.IsHexAddress(address) {
		c.post(func() { cb(false, "") })
		return
	}
	call(c, "eth_getBalance", EthGetBalance(address, BlockLatest), ParseBalance, "", cb)
}

func (c *Controller) GetTransactionCount(address string, cb QuantityCallback) {
	if !common.IsHexAddress(address) {
		c.post(func() { cb(false, uint256.NewInt(0)) })
		return
	}
	call(c, "eth_getTransactionCount", EthGetTransactionCount(address, BlockLatest), ParseTransactionCount,
		uint256.NewInt(0), cb)
}

func (c *Controller) GetTransactionReceipt(txHash string, cb ReceiptCallback) {
	if len(txHash) != 2+2*common.HashLength || !IsValidHexData(txHash) {
		c.post(func() { cb(false, TransactionReceipt{}) })
		return
	}
	call(c, "eth_getTransactionReceipt", EthGetTransactionReceipt(txHash), ParseTransactionReceipt,
		TransactionReceipt{}, cb)
}

func (c *Controller) SendRawTransaction(signedTx string, cb StringCallback) {
	if err := ValidateRawTxHex(signedTx); err != nil {
		c.post(func() { cb(false, "") })
		return
	}
	call(c, "eth_sendRawTransaction", EthSendRawTransaction(NormalizeHex0x(signedTx)), ParseSendRawTransaction, "", cb)
}

// GetERC20TokenBalance answers with the raw eth_call result of balanceOf.
func (c *Controller) GetERC20TokenBalance(contract, address string, cb StringCallback) {
	data, err := calldata.ERC20BalanceOf(address)
	if err != nil || !common.IsHexAddress(contract) {
		c.post(func() { cb(false, "") })
		return
	}
	call(c, "eth_call", EthCall("", contract, "", "", "", data, BlockLatest), ParseEthCall, "", cb)
}

// Backend returns a go-ethereum client for the active endpoint, dialing
// again whenever the network changed since the last call.
func (c *Controller) Backend(ctx context.Context) (*ethclient.Client, error) {
	endpoint := c.NetworkURL()
	if endpoint == "" {
		return nil, errors.New("ethrpc: no active network")
	}
	if c.seq.stopped() {
		return nil, errors.New("ethrpc: controller closed")
	}

	c.backendMu.Lock()
	defer c.backendMu.Unlock()
	if c.backend != nil && c.backendURL == endpoint {
		return c.backend, nil
	}

	b, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "ethrpc: dial backend %q", endpoint)
	}
	if c.backend != nil {
		c.backend.Close()
	}
	c.backend = b
	c.backendURL = endpoint
	return b, nil
}
