// Package calldata builds ABI-encoded eth_call data for the contract reads the
// wallet performs: ERC-20 balanceOf, ENS resolver/contenthash lookups and the
// Unstoppable Domains ProxyReader getMany.
package calldata

import (
	"encoding/hex"
	"math/big"
	"strings"
	"unicode"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

const (
	BalanceOfSignature   = "balanceOf(address)"
	ResolverSignature    = "resolver(bytes32)"
	ContentHashSignature = "contenthash(bytes32)"
	GetManySignature     = "getMany(string[],uint256)"
)

var (
	ErrInvalidAddress = errors.New("calldata: invalid address")
	ErrInvalidDomain  = errors.New("calldata: invalid domain")
)

var (
	addressType     = mustType("address")
	bytes32Type     = mustType("bytes32")
	stringSliceType = mustType("string[]")
	uint256Type     = mustType("uint256")
)

func mustType(t string) abi.Type {
	ty, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(errors.Wrapf(err, "calldata: abi type %s", t))
	}
	return ty
}

func keccak256(data ...[]byte) []byte {
	hasher := sha3.NewLegacyKeccak256()
	for _, b := range data {
		hasher.Write(b)
	}
	return hasher.Sum(nil)
}

// FunctionSelector computes the 4-byte selector of a canonical signature,
// e.g. "balanceOf(address)" -> 0x70a08231.
func FunctionSelector(signature string) []byte {
	return keccak256([]byte(signature))[:4]
}

func encode(signature string, args abi.Arguments, values ...interface{}) (string, error) {
	packed, err := args.Pack(values...)
	if err != nil {
		return "", errors.Wrapf(err, "calldata: pack %s", signature)
	}
	return "0x" + hex.EncodeToString(append(FunctionSelector(signature), packed...)), nil
}

// ERC20BalanceOf encodes balanceOf(owner).
func ERC20BalanceOf(owner string) (string, error) {
	if !common.IsHexAddress(owner) {
		return "", errors.Wrapf(ErrInvalidAddress, "%q", owner)
	}
	return encode(BalanceOfSignature, abi.Arguments{{Type: addressType}}, common.HexToAddress(owner))
}

// Namehash implements the EIP-137 name hash. The empty name hashes to zero.
func Namehash(domain string) common.Hash {
	var node common.Hash
	if domain == "" {
		return node
	}
	labels := strings.Split(domain, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := keccak256([]byte(labels[i]))
		node = common.BytesToHash(keccak256(node.Bytes(), labelHash))
	}
	return node
}

// ValidateDomain rejects names that cannot be hashed meaningfully: empty
// names, empty labels and labels with whitespace or control characters.
func ValidateDomain(domain string) error {
	if domain == "" || len(domain) > 253 {
		return errors.Wrapf(ErrInvalidDomain, "%q", domain)
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" {
			return errors.Wrapf(ErrInvalidDomain, "%q: empty label", domain)
		}
		for _, r := range label {
			if unicode.IsSpace(r) || unicode.IsControl(r) {
				return errors.Wrapf(ErrInvalidDomain, "%q: bad character", domain)
			}
		}
	}
	return nil
}

func namehashCall(signature, domain string) (string, error) {
	if err := ValidateDomain(domain); err != nil {
		return "", err
	}
	return encode(signature, abi.Arguments{{Type: bytes32Type}}, [32]byte(Namehash(domain)))
}

// ENSResolver encodes resolver(namehash(domain)) for the ENS registry.
func ENSResolver(domain string) (string, error) {
	return namehashCall(ResolverSignature, domain)
}

// ENSContentHash encodes contenthash(namehash(domain)) for a resolver.
func ENSContentHash(domain string) (string, error) {
	return namehashCall(ContentHashSignature, domain)
}

// UDGetMany encodes getMany(keys, tokenId) where tokenId is the namehash of
// domain read as uint256.
func UDGetMany(keys []string, domain string) (string, error) {
	if err := ValidateDomain(domain); err != nil {
		return "", err
	}
	if keys == nil {
		keys = []string{}
	}
	tokenID := new(big.Int).SetBytes(Namehash(domain).Bytes())
	return encode(GetManySignature, abi.Arguments{{Type: stringSliceType}, {Type: uint256Type}}, keys, tokenID)
}
