package domain

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidInput is returned when a snapshot is constructed from
// out-of-range values (negative confirmed nonce or set members).
var ErrInvalidInput = errors.New("invalid snapshot input")

// NonceSet is a sorted, deduplicated sequence of account nonces.
type NonceSet []uint64

// NewNonceSet sorts and dedupes the given nonces.
func NewNonceSet(values []uint64) NonceSet {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[uint64]struct{}, len(values))
	out := make(NonceSet, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s NonceSet) Len() int      { return len(s) }
func (s NonceSet) IsEmpty() bool { return len(s) == 0 }

// First returns the lowest nonce. Only valid when non-empty.
func (s NonceSet) First() uint64 { return s[0] }

// Last returns the highest nonce. Only valid when non-empty.
func (s NonceSet) Last() uint64 { return s[len(s)-1] }

// Snapshot is one point-in-time read of an account's pool state.
// Immutable once constructed; consumed once by the analyzer.
type Snapshot struct {
	Address        string   `json:"address"`
	ConfirmedNonce uint64   `json:"confirmed_nonce"`
	Pending        NonceSet `json:"pending"`
	Queued         NonceSet `json:"queued"`
}

// NewSnapshot validates and assembles a snapshot. Inputs are signed so the
// boundary can reject negatives before analysis begins; nil sets are treated
// as empty (the fetcher disambiguates "no data" before construction).
func NewSnapshot(address string, confirmedNonce int64, pending, queued []int64) (*Snapshot, error) {
	if confirmedNonce < 0 {
		return nil, fmt.Errorf("%w: confirmed nonce %d is negative", ErrInvalidInput, confirmedNonce)
	}
	p, err := toNonceSet("pending", pending)
	if err != nil {
		return nil, err
	}
	q, err := toNonceSet("queued", queued)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Address:        address,
		ConfirmedNonce: uint64(confirmedNonce),
		Pending:        p,
		Queued:         q,
	}, nil
}

// NewSnapshotFromSets assembles a snapshot from already-validated sets.
// Used by the fetcher, whose hex parsing cannot produce negatives.
func NewSnapshotFromSets(address string, confirmedNonce uint64, pending, queued NonceSet) *Snapshot {
	return &Snapshot{
		Address:        address,
		ConfirmedNonce: confirmedNonce,
		Pending:        pending,
		Queued:         queued,
	}
}

func toNonceSet(name string, values []int64) (NonceSet, error) {
	raw := make([]uint64, 0, len(values))
	for _, v := range values {
		if v < 0 {
			return nil, fmt.Errorf("%w: %s set contains negative nonce %d", ErrInvalidInput, name, v)
		}
		raw = append(raw, uint64(v))
	}
	return NewNonceSet(raw), nil
}
