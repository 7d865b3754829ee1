package domain

import (
	"fmt"
	"strings"
)

const addressLength = 42 // 0x + 20 bytes hex

// NormalizeAddress lowercases an EVM address so it can be used as a lookup
// key against pool content, which nodes key inconsistently by case.
func NormalizeAddress(addr string) (string, error) {
	a := strings.ToLower(strings.TrimSpace(addr))
	if !strings.HasPrefix(a, "0x") {
		return "", fmt.Errorf("address %q missing 0x prefix", addr)
	}
	if len(a) != addressLength {
		return "", fmt.Errorf("address %q has length %d, want %d", addr, len(a), addressLength)
	}
	for _, c := range a[2:] {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("address %q contains non-hex character %q", addr, c)
		}
	}
	return a, nil
}
