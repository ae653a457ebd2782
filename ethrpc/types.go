package ethrpc

import (
	"encoding/json"
)

type BlockTag string

const BlockLatest BlockTag = "latest"

type HexQuantity string

// NativeCurrency is the EIP-3085 nativeCurrency object.
type NativeCurrency struct {
	Name     string `json:"name" yaml:"name"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Decimals int    `json:"decimals" yaml:"decimals"`
}

// EthereumChain describes one network, built-in or user-added. The JSON form
// is the one wallet_addEthereumChain uses.
type EthereumChain struct {
	ChainID           string         `json:"chainId" yaml:"chainId"`
	ChainName         string         `json:"chainName" yaml:"chainName"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls" yaml:"blockExplorerUrls"`
	IconURLs          []string       `json:"iconUrls" yaml:"iconUrls"`
	RPCURLs           []string       `json:"rpcUrls" yaml:"rpcUrls"`
	Currency          NativeCurrency `json:"nativeCurrency" yaml:"nativeCurrency"`
}

// CallMsg matches the JSON-RPC eth_call object. Empty fields are omitted.
type CallMsg struct {
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Gas      string `json:"gas,omitempty"`      // hex quantity
	GasPrice string `json:"gasPrice,omitempty"` // hex quantity (legacy)
	Value    string `json:"value,omitempty"`    // hex quantity
	Data     string `json:"data,omitempty"`
}

// TransactionReceipt is the typed form of an eth_getTransactionReceipt result.
// Logs are passed through untouched.
type TransactionReceipt struct {
	TransactionHash   string            `json:"transactionHash"`
	TransactionIndex  uint64            `json:"transactionIndex"`
	BlockHash         string            `json:"blockHash"`
	BlockNumber       uint64            `json:"blockNumber"`
	From              string            `json:"from"`
	To                string            `json:"to,omitempty"`
	CumulativeGasUsed uint64            `json:"cumulativeGasUsed"`
	GasUsed           uint64            `json:"gasUsed"`
	ContractAddress   string            `json:"contractAddress,omitempty"`
	Logs              []json.RawMessage `json:"logs,omitempty"`
	LogsBloom         string            `json:"logsBloom"`
	Status            bool              `json:"status"` // post-byzantium: 0x1 success
}
