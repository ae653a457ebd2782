package ethrpc

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/quantum-wallet-rpc/calldata"
)

// resolverHeaderLen is the part of the resolver() result skipped before the
// address: "0x" plus 24 hex chars of left padding.
const resolverHeaderLen = 2 + 24

// resolverAddressFromResult extracts the address hop two is sent to.
func resolverAddressFromResult(result string) (string, bool) {
	if len(result) <= resolverHeaderLen {
		return "", false
	}
	return "0x" + result[resolverHeaderLen:], true
}

// ResolveNamingResolver asks the ENS registry at contract for the resolver
// of domain, then asks that resolver for the domain's content hash. Either
// hop failing fails the whole lookup; hops are never retried here.
func (c *Controller) ResolveNamingResolver(contract, domain string, cb StringCallback) {
	data, err := calldata.ENSResolver(domain)
	if err != nil || !common.IsHexAddress(contract) {
		c.post(func() { cb(false, "") })
		return
	}

	c.send("eth_call", EthCall("", contract, "", "", "", data, BlockLatest), true, func(status int, body string) {
		if !isSuccess(status) {
			cb(false, "")
			return
		}
		result, err := ParseEthCall(body)
		if err != nil || result == "" {
			cb(false, "")
			return
		}
		resolver, ok := resolverAddressFromResult(result)
		if !ok {
			cb(false, "")
			return
		}
		c.ResolveNamingAddress(resolver, domain, cb)
	})
}

// ResolveNamingAddress is hop two: contenthash(namehash(domain)) against a
// resolver contract. The raw hex result is the answer.
func (c *Controller) ResolveNamingAddress(resolver, domain string, cb StringCallback) {
	data, err := calldata.ENSContentHash(domain)
	if err != nil || !IsValidHexData(resolver) {
		c.post(func() { cb(false, "") })
		return
	}
	call(c, "eth_call", EthCall("", resolver, "", "", "", data, BlockLatest), ParseEthCall, "", cb)
}

// GetManyRecords reads several Unstoppable Domains records of domain from the
// ProxyReader at contract in one call.
func (c *Controller) GetManyRecords(contract, domain string, keys []string, cb StringCallback) {
	data, err := calldata.UDGetMany(keys, domain)
	if err != nil || !common.IsHexAddress(contract) {
		c.post(func() { cb(false, "") })
		return
	}
	call(c, "eth_call", EthCall("", contract, "", "", "", data, BlockLatest), ParseEthCall, "", cb)
}
