package evm

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

func parseHexUint(hexStr string) (uint64, error) {
	n := new(big.Int)
	if _, ok := n.SetString(strings.TrimPrefix(hexStr, "0x"), 16); !ok {
		return 0, fmt.Errorf("invalid hex: %s", hexStr)
	}
	return n.Uint64(), nil
}

// parseNonceKey accepts both decimal ("42") and hex quantity ("0x2a") nonce
// keys; nodes differ on which they emit in txpool content.
func parseNonceKey(key string) (uint64, error) {
	if strings.HasPrefix(key, "0x") {
		return parseHexUint(key)
	}
	return strconv.ParseUint(key, 10, 64)
}

func getString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
