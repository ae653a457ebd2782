package devnode

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNode(t *testing.T) *Node {
	t.Helper()
	n, err := New(Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = n.Close() })
	return n
}

func TestListenAddr(t *testing.T) {
	host, port, err := listenAddr("127.0.0.1:8545")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", host)
	assert.Equal(t, 8545, port)

	host, port, err = listenAddr(":9000")
	require.NoError(t, err)
	assert.Equal(t, defaultHost, host)
	assert.Equal(t, 9000, port)

	host, port, err = listenAddr("")
	require.NoError(t, err)
	assert.Equal(t, defaultHost, host)
	assert.NotZero(t, port)

	_, _, err = listenAddr("no-port")
	assert.Error(t, err)
	_, _, err = listenAddr("127.0.0.1:http")
	assert.Error(t, err)
}

func TestNodeFundsDevAccount(t *testing.T) {
	n := newNode(t)
	ctx := context.Background()

	assert.Equal(t, "0x539", n.ChainIDHex())
	assert.Contains(t, n.URL(), "http://127.0.0.1:")

	id, err := n.Client().ChainID(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, ChainID, id.Int64())

	addr, key := n.DevAccount()
	require.NotNil(t, key)
	bal, err := n.Client().BalanceAt(ctx, addr, nil)
	require.NoError(t, err)
	assert.Zero(t, bal.Cmp(DefaultBalance))
}

func TestTransferAndCommit(t *testing.T) {
	n := newNode(t)
	ctx := context.Background()
	to := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	raw, hash, err := n.Transfer(ctx, to, big.NewInt(1000))
	require.NoError(t, err)

	var tx types.Transaction
	require.NoError(t, tx.UnmarshalBinary(common.FromHex(raw)))
	assert.Equal(t, hash, tx.Hash())
	require.NoError(t, n.Client().SendTransaction(ctx, &tx))

	n.Commit()

	rcpt, err := n.Client().TransactionReceipt(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusSuccessful, rcpt.Status)

	bal, err := n.Client().BalanceAt(ctx, to, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1000, bal.Int64())
}

func TestWatchHeads(t *testing.T) {
	n := newNode(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	heads := make(chan *types.Header, 4)
	sub := n.WatchHeads(ctx, heads, 10*time.Millisecond)
	defer sub.Unsubscribe()

	first := <-heads
	n.Commit()

	select {
	case h := <-heads:
		assert.Equal(t, first.Number.Uint64()+1, h.Number.Uint64())
	case <-ctx.Done():
		t.Fatal("no new head")
	}

	sub.Unsubscribe()
	select {
	case err, ok := <-sub.Err():
		assert.False(t, ok, "unexpected error %v", err)
	case <-ctx.Done():
		t.Fatal("subscription did not end")
	}
}

func TestAutoCommit(t *testing.T) {
	n := newNode(t)
	ctx, cancel := context.WithCancel(context.Background())

	start, err := n.Client().BlockNumber(context.Background())
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		n.AutoCommit(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		cur, err := n.Client().BlockNumber(context.Background())
		return err == nil && cur >= start+2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
