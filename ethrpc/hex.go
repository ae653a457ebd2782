package ethrpc

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

func (h HexQuantity) Big() (*big.Int, error) {
	s := string(h)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return nil, errors.Errorf("hex quantity without 0x prefix: %q", h)
	}
	s = s[2:]
	if s == "" {
		return nil, errors.Errorf("empty hex quantity: %q", h)
	}
	// SetString would also take a sign or underscores
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return nil, errors.Errorf("invalid hex quantity: %q", h)
		}
	}
	n := new(big.Int)
	if _, ok := n.SetString(s, 16); !ok {
		return nil, errors.Errorf("invalid hex quantity: %q", h)
	}
	return n, nil
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// Uint256 parses the quantity into a 256-bit unsigned integer.
func (h HexQuantity) Uint256() (*uint256.Int, error) {
	b, err := h.Big()
	if err != nil {
		return nil, err
	}
	n, overflow := uint256.FromBig(b)
	if overflow {
		return nil, errors.Errorf("hex quantity overflows 256 bits: %q", h)
	}
	return n, nil
}

func (h HexQuantity) Uint64() (uint64, error) {
	n, err := h.Uint256()
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, errors.Errorf("hex quantity overflows uint64: %q", h)
	}
	return n.Uint64(), nil
}

func BigToHexQuantity(n *big.Int) string {
	if n == nil || n.Sign() == 0 {
		return "0x0"
	}
	return "0x" + n.Text(16)
}

func NormalizeHex0x(s string) string {
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return "0x" + s[2:]
	}
	return "0x" + s
}

func Strip0x(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}

// IsValidHexData reports whether s is 0x-prefixed, even-length hex.
func IsValidHexData(s string) bool {
	if !strings.HasPrefix(s, "0x") {
		return false
	}
	body := s[2:]
	if len(body)%2 != 0 {
		return false
	}
	_, err := hex.DecodeString(body)
	return err == nil
}

func ValidateRawTxHex(raw string) error {
	s := Strip0x(raw)
	if s == "" || len(s)%2 != 0 {
		return errors.New("invalid raw tx hex length")
	}
	_, err := hex.DecodeString(s)
	return errors.Wrap(err, "invalid raw tx hex")
}
