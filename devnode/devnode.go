// Package devnode runs an in-memory Ethereum chain behind a real JSON-RPC
// HTTP endpoint. Its chain id is 1337 (0x539), the id the wallet uses for
// Localhost, so a controller can talk to it exactly as it would to a local
// node. Blocks are only sealed by Commit or AutoCommit.
package devnode

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"net"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/eth/ethconfig"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/node"
	"github.com/pkg/errors"

	"github.com/quantumauth-io/quantum-wallet-rpc/log"
)

// ChainID is fixed by the simulated backend.
const ChainID = 1337

const (
	defaultBlockGasLimit = 100_000_000
	defaultHost          = "127.0.0.1"
)

// DefaultBalance is what the generated dev account starts with, 100 ETH.
var DefaultBalance = new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18))

type Options struct {
	// Addr is host:port to serve on. Empty picks a free port on 127.0.0.1.
	Addr          string
	BlockGasLimit uint64
	// Alloc funds extra accounts at genesis.
	Alloc types.GenesisAlloc
	// DevBalance funds the generated dev account; nil means DefaultBalance.
	DevBalance *big.Int
}

type Node struct {
	backend *simulated.Backend
	client  simulated.Client
	url     string

	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
}

// New starts a chain with one generated, funded dev account and serves the
// eth, net and web3 namespaces on Addr.
func New(opts Options) (*Node, error) {
	if opts.BlockGasLimit == 0 {
		opts.BlockGasLimit = defaultBlockGasLimit
	}
	if opts.DevBalance == nil {
		opts.DevBalance = DefaultBalance
	}

	host, port, err := listenAddr(opts.Addr)
	if err != nil {
		return nil, err
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, errors.Wrap(err, "devnode: generate dev key")
	}
	addr := crypto.PubkeyToAddress(key.PublicKey)

	alloc := types.GenesisAlloc{addr: {Balance: opts.DevBalance}}
	for a, acc := range opts.Alloc {
		alloc[a] = acc
	}

	b := simulated.NewBackend(alloc,
		simulated.WithBlockGasLimit(opts.BlockGasLimit),
		func(nodeConf *node.Config, _ *ethconfig.Config) {
			nodeConf.HTTPHost = host
			nodeConf.HTTPPort = port
			nodeConf.HTTPModules = []string{"eth", "net", "web3"}
			nodeConf.HTTPVirtualHosts = []string{"*"}
		},
	)

	n := &Node{
		backend: b,
		client:  b.Client(),
		url:     "http://" + net.JoinHostPort(host, strconv.Itoa(port)),
		key:     key,
		address: addr,
		chainID: big.NewInt(ChainID),
	}
	log.Info("devnode: started", "url", n.url, "devAccount", addr.Hex())
	return n, nil
}

// listenAddr resolves addr, choosing a free port when none is given.
func listenAddr(addr string) (string, int, error) {
	if addr == "" {
		addr = net.JoinHostPort(defaultHost, "0")
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, errors.Wrapf(err, "devnode: bad address %q", addr)
	}
	if host == "" {
		host = defaultHost
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, errors.Wrapf(err, "devnode: bad port %q", portStr)
	}
	if port != 0 {
		return host, port, nil
	}

	// the node only takes a fixed port, so borrow one from the kernel
	l, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return "", 0, errors.Wrap(err, "devnode: find free port")
	}
	defer l.Close()
	return host, l.Addr().(*net.TCPAddr).Port, nil
}

func (n *Node) URL() string { return n.url }

// ChainIDHex is the id in the form the wallet stores chain ids.
func (n *Node) ChainIDHex() string { return fmt.Sprintf("0x%x", ChainID) }

func (n *Node) Client() simulated.Client { return n.client }

// DevAccount returns the generated, funded account and its key.
func (n *Node) DevAccount() (common.Address, *ecdsa.PrivateKey) {
	return n.address, n.key
}

// Commit seals a block with whatever is pending.
func (n *Node) Commit() common.Hash {
	return n.backend.Commit()
}

// AdjustTime moves the next block's timestamp forward and seals a block.
func (n *Node) AdjustTime(d time.Duration) error {
	return n.backend.AdjustTime(d)
}

func (n *Node) Rollback() {
	n.backend.Rollback()
}

func (n *Node) Fork(parent common.Hash) error {
	return n.backend.Fork(parent)
}

func (n *Node) Close() error {
	if n.backend == nil {
		return nil
	}
	return n.backend.Close()
}

// AutoCommit seals a block every period until ctx is done, like a dev-mode
// node with a block period.
func (n *Node) AutoCommit(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n.Commit()
		}
	}
}

// Transfer signs a legacy value transfer from the dev account, ready for
// eth_sendRawTransaction, and returns it hex encoded with its hash.
func (n *Node) Transfer(ctx context.Context, to common.Address, value *big.Int) (string, common.Hash, error) {
	nonce, err := n.client.PendingNonceAt(ctx, n.address)
	if err != nil {
		return "", common.Hash{}, errors.Wrap(err, "devnode: pending nonce")
	}
	gasPrice, err := n.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", common.Hash{}, errors.Wrap(err, "devnode: gas price")
	}
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      21_000,
		GasPrice: new(big.Int).Mul(gasPrice, big.NewInt(2)),
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(n.chainID), n.key)
	if err != nil {
		return "", common.Hash{}, errors.Wrap(err, "devnode: sign")
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return "", common.Hash{}, errors.Wrap(err, "devnode: encode")
	}
	return "0x" + common.Bytes2Hex(raw), signed.Hash(), nil
}
