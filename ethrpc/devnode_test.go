package ethrpc_test

import (
	"context"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/quantum-wallet-rpc/devnode"
	"github.com/quantumauth-io/quantum-wallet-rpc/ethrpc"
)

type reply[T any] struct {
	ok    bool
	value T
}

// testContext stands in for testing.T.Context (Go 1.24+): a context that is
// canceled when the test finishes.
func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

func wait[T any](t *testing.T, start func(cb func(bool, T))) (bool, T) {
	t.Helper()
	ch := make(chan reply[T], 1)
	start(func(ok bool, v T) { ch <- reply[T]{ok, v} })
	select {
	case r := <-ch:
		return r.ok, r.value
	case <-time.After(10 * time.Second):
		t.Fatal("no callback")
		var zero T
		return false, zero
	}
}

// Runs the controller over HTTP against an in-memory geth node on 0x539.
func TestControllerAgainstDevNode(t *testing.T) {
	n, err := devnode.New(devnode.Options{})
	require.NoError(t, err)
	defer n.Close()

	transport := ethrpc.NewHTTPTransport(ethrpc.TransportOptions{Timeout: 5 * time.Second})
	defer transport.Close()

	c := ethrpc.NewController(ethrpc.LocalhostChainID, transport, ethrpc.NewRegistry(ethrpc.RegistryConfig{}))
	defer c.Close()
	require.Equal(t, ethrpc.LocalhostChainID, c.ChainID())
	c.SetCustomNetworkForTesting(n.URL())

	dev, _ := n.DevAccount()
	to := common.HexToAddress("0x00000000000000000000000000000000000000bb")

	ok, start := wait(t, func(cb func(bool, *uint256.Int)) { c.GetBlockNumber(cb) })
	require.True(t, ok)

	ok, bal := wait(t, func(cb func(bool, string)) { c.GetBalance(dev.Hex(), cb) })
	require.True(t, ok)
	assert.Equal(t, "0x"+devnode.DefaultBalance.Text(16), bal)

	raw, hash, err := n.Transfer(testContext(t), to, big.NewInt(4096))
	require.NoError(t, err)

	ok, sent := wait(t, func(cb func(bool, string)) { c.SendRawTransaction(raw, cb) })
	require.True(t, ok)
	assert.Equal(t, hash.Hex(), sent)

	ok, pending := wait(t, func(cb func(bool, ethrpc.TransactionReceipt)) { c.GetTransactionReceipt(sent, cb) })
	assert.False(t, ok, "receipt before the block is sealed")
	assert.Empty(t, pending.TransactionHash)

	n.Commit()

	ok, rcpt := wait(t, func(cb func(bool, ethrpc.TransactionReceipt)) { c.GetTransactionReceipt(sent, cb) })
	require.True(t, ok)
	assert.True(t, rcpt.Status)
	assert.Equal(t, hash.Hex(), rcpt.TransactionHash)
	assert.True(t, strings.EqualFold(dev.Hex(), rcpt.From))
	assert.True(t, strings.EqualFold(to.Hex(), rcpt.To))
	assert.EqualValues(t, 21000, rcpt.GasUsed)
	assert.Equal(t, start.Uint64()+1, rcpt.BlockNumber)

	ok, nonce := wait(t, func(cb func(bool, *uint256.Int)) { c.GetTransactionCount(dev.Hex(), cb) })
	require.True(t, ok)
	assert.EqualValues(t, 1, nonce.Uint64())

	ok, got := wait(t, func(cb func(bool, string)) { c.GetBalance(to.Hex(), cb) })
	require.True(t, ok)
	assert.Equal(t, "0x1000", got)

	ok, head := wait(t, func(cb func(bool, *uint256.Int)) { c.GetBlockNumber(cb) })
	require.True(t, ok)
	assert.Equal(t, start.Uint64()+1, head.Uint64())

	backend, err := c.Backend(testContext(t))
	require.NoError(t, err)
	id, err := backend.ChainID(testContext(t))
	require.NoError(t, err)
	assert.EqualValues(t, devnode.ChainID, id.Int64())
}
