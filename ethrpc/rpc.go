package ethrpc

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

const (
	jsonRPCVersion  = "2.0"
	jsonContentType = "application/json"
)

// ErrMalformedResponse is the only error the response parsers return. It
// does not say whether a field was missing or had the wrong type.
var ErrMalformedResponse = errors.New("ethrpc: malformed response")

type rpcReq struct {
	ID      int    `json:"id"`
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcErr struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcRes struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcErr         `json:"error,omitempty"`
}

// encodeRequest builds a JSON-RPC 2.0 body. Params are positional.
func encodeRequest(method string, params ...any) string {
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(rpcReq{ID: 1, JSONRPC: jsonRPCVersion, Method: method, Params: params})
	if err != nil {
		// params are strings and CallMsg values only
		panic(errors.Wrapf(err, "ethrpc: encode %s", method))
	}
	return string(body)
}

// decodeResult returns the raw "result" member of a successful envelope.
// A JSON-RPC error, a missing result or a null result are all malformed.
func decodeResult(body string) (json.RawMessage, error) {
	var res rpcRes
	if err := json.Unmarshal([]byte(body), &res); err != nil {
		return nil, ErrMalformedResponse
	}
	if res.Error != nil {
		return nil, ErrMalformedResponse
	}
	trimmed := bytes.TrimSpace(res.Result)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrMalformedResponse
	}
	return trimmed, nil
}

func decodeStringResult(body string) (string, error) {
	raw, err := decodeResult(body)
	if err != nil {
		return "", err
	}
	var out string
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", ErrMalformedResponse
	}
	return out, nil
}
