package ethrpc

// JSON-RPC request bodies, one builder per method the controller issues.

func EthBlockNumber() string {
	return encodeRequest("eth_blockNumber")
}

func EthChainID() string {
	return encodeRequest("eth_chainId")
}

func EthGetBalance(address string, tag BlockTag) string {
	return encodeRequest("eth_getBalance", address, string(tag))
}

func EthGetTransactionCount(address string, tag BlockTag) string {
	return encodeRequest("eth_getTransactionCount", address, string(tag))
}

func EthGetTransactionReceipt(txHash string) string {
	return encodeRequest("eth_getTransactionReceipt", txHash)
}

func EthSendRawTransaction(signedTx string) string {
	return encodeRequest("eth_sendRawTransaction", signedTx)
}

// EthCall builds an eth_call. Empty fields are left out of the call object.
func EthCall(from, to, gas, gasPrice, value, data string, tag BlockTag) string {
	msg := CallMsg{
		From:     from,
		To:       to,
		Gas:      gas,
		GasPrice: gasPrice,
		Value:    value,
		Data:     data,
	}
	return encodeRequest("eth_call", msg, string(tag))
}
