package ethrpc

import (
	"encoding/json"

	"github.com/holiman/uint256"
)

func parseQuantity(body string) (*uint256.Int, error) {
	s, err := decodeStringResult(body)
	if err != nil {
		return nil, err
	}
	n, err := HexQuantity(s).Uint256()
	if err != nil {
		return nil, ErrMalformedResponse
	}
	return n, nil
}

func ParseBlockNumber(body string) (*uint256.Int, error) {
	return parseQuantity(body)
}

func ParseTransactionCount(body string) (*uint256.Int, error) {
	return parseQuantity(body)
}

// ParseChainID returns the node's chain id in the canonical form the
// registry keys chains by, e.g. "0x0539" becomes "0x539".
func ParseChainID(body string) (string, error) {
	s, err := decodeStringResult(body)
	if err != nil {
		return "", err
	}
	n, err := HexQuantity(s).Big()
	if err != nil {
		return "", ErrMalformedResponse
	}
	return BigToHexQuantity(n), nil
}

// ParseBalance passes the hex wei string through without converting it.
func ParseBalance(body string) (string, error) {
	return decodeStringResult(body)
}

func ParseEthCall(body string) (string, error) {
	return decodeStringResult(body)
}

func ParseSendRawTransaction(body string) (string, error) {
	return decodeStringResult(body)
}

type rawReceipt struct {
	TransactionHash   *string           `json:"transactionHash"`
	TransactionIndex  *HexQuantity      `json:"transactionIndex"`
	BlockHash         *string           `json:"blockHash"`
	BlockNumber       *HexQuantity      `json:"blockNumber"`
	From              *string           `json:"from"`
	To                *string           `json:"to"`
	CumulativeGasUsed *HexQuantity      `json:"cumulativeGasUsed"`
	GasUsed           *HexQuantity      `json:"gasUsed"`
	ContractAddress   *string           `json:"contractAddress"`
	Logs              []json.RawMessage `json:"logs"`
	LogsBloom         *string           `json:"logsBloom"`
	Status            *HexQuantity      `json:"status"`
}

// ParseTransactionReceipt requires every non-nullable receipt field. A null
// result (transaction not mined yet) is malformed too.
func ParseTransactionReceipt(body string) (TransactionReceipt, error) {
	raw, err := decodeResult(body)
	if err != nil {
		return TransactionReceipt{}, err
	}
	var r rawReceipt
	if err := json.Unmarshal(raw, &r); err != nil {
		return TransactionReceipt{}, ErrMalformedResponse
	}
	if r.TransactionHash == nil || r.TransactionIndex == nil || r.BlockHash == nil ||
		r.BlockNumber == nil || r.From == nil || r.CumulativeGasUsed == nil ||
		r.GasUsed == nil || r.LogsBloom == nil || r.Status == nil {
		return TransactionReceipt{}, ErrMalformedResponse
	}

	out := TransactionReceipt{
		TransactionHash: *r.TransactionHash,
		BlockHash:       *r.BlockHash,
		From:            *r.From,
		Logs:            r.Logs,
		LogsBloom:       *r.LogsBloom,
	}
	if r.To != nil {
		out.To = *r.To
	}
	if r.ContractAddress != nil {
		out.ContractAddress = *r.ContractAddress
	}

	quantities := []struct {
		in  *HexQuantity
		out *uint64
	}{
		{r.TransactionIndex, &out.TransactionIndex},
		{r.BlockNumber, &out.BlockNumber},
		{r.CumulativeGasUsed, &out.CumulativeGasUsed},
		{r.GasUsed, &out.GasUsed},
	}
	for _, q := range quantities {
		v, err := q.in.Uint64()
		if err != nil {
			return TransactionReceipt{}, ErrMalformedResponse
		}
		*q.out = v
	}

	status, err := r.Status.Uint64()
	if err != nil || status > 1 {
		return TransactionReceipt{}, ErrMalformedResponse
	}
	out.Status = status == 1
	return out, nil
}
