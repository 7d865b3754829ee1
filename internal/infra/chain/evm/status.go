package evm

import (
	"context"
	"fmt"
)

// PoolStatus holds pool-wide transaction counts.
type PoolStatus struct {
	Pending uint64 `json:"pending"`
	Queued  uint64 `json:"queued"`
}

// IsEmpty reports whether the pool holds no transactions at all.
func (s PoolStatus) IsEmpty() bool {
	return s.Pending == 0 && s.Queued == 0
}

// FetchPoolStatus reads txpool_status: the total pending and queued counts
// across all accounts. Used by the watch loop for coarse pool activity.
func (f *Fetcher) FetchPoolStatus(ctx context.Context) (PoolStatus, error) {
	result, err := f.client.Call(ctx, "txpool_status", []any{})
	if err != nil {
		return PoolStatus{}, fmt.Errorf("txpool_status failed: %w", err)
	}

	raw, ok := result.(map[string]any)
	if !ok {
		return PoolStatus{}, fmt.Errorf("invalid txpool_status response")
	}

	var status PoolStatus
	if v := getString(raw["pending"]); v != "" {
		if status.Pending, err = parseHexUint(v); err != nil {
			return PoolStatus{}, err
		}
	}
	if v := getString(raw["queued"]); v != "" {
		if status.Queued, err = parseHexUint(v); err != nil {
			return PoolStatus{}, err
		}
	}
	return status, nil
}
