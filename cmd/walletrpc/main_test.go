package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		hex      string
		decimals int
		want     string
	}{
		{"0xde0b6b3a7640000", 18, "1"},
		{"0x16345785d8a0000", 18, "0.1"},
		{"0x4b7", 0, "1207"},
		{"0x4b7", 3, "1.207"},
		{"0x0", 18, "0"},
		{"0x", 18, "0x"},
		{"garbage", 18, "garbage"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatUnits(tt.hex, tt.decimals), tt.hex)
	}
}

func TestReadPayload(t *testing.T) {
	p, err := readPayload(nil, []string{`{"id":1}`})
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, p)

	p, err = readPayload(strings.NewReader("  {\"id\":2}\n"), []string{"-"})
	require.NoError(t, err)
	assert.Equal(t, `{"id":2}`, p)

	p, err = readPayload(strings.NewReader(`{"id":3}`), nil)
	require.NoError(t, err)
	assert.Equal(t, `{"id":3}`, p)
}

func TestAwait(t *testing.T) {
	v, err := await(context.Background(), func(cb func(bool, string)) {
		go cb(true, "0x1")
	})
	require.NoError(t, err)
	assert.Equal(t, "0x1", v)

	v, err = await(context.Background(), func(cb func(bool, string)) { cb(false, "body") })
	assert.ErrorIs(t, err, errNoAnswer)
	assert.Equal(t, "body", v)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = await(ctx, func(cb func(bool, string)) {})
	assert.Error(t, err)
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{
		"networks", "block-number", "balance", "nonce", "receipt", "send-raw",
		"erc20-balance", "ens-resolve", "ud-records", "request", "chains", "devnode",
	} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestChainIDStatus(t *testing.T) {
	disableColors()
	assert.Equal(t, "-", chainIDStatus("0x1", probeResult{}))
	assert.Equal(t, "ok", chainIDStatus("0x1", probeResult{reportedID: "0x1"}))
	assert.Equal(t, "0x5", chainIDStatus("0x1", probeResult{reportedID: "0x5"}))
}
