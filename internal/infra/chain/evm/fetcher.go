// Package evm fetches per-address transaction-pool snapshots from an EVM
// execution node over JSON-RPC.
package evm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	logger "log/slog"

	"github.com/vietddude/noncegap/internal/core/domain"
	"github.com/vietddude/noncegap/internal/infra/rpc"
	"golang.org/x/sync/errgroup"
)

// Fetcher assembles point-in-time pool snapshots for single addresses.
// It is a thin adapter: all gap logic lives with the analyzer.
type Fetcher struct {
	chainID string
	client  rpc.Caller
	log     *logger.Logger

	// txpool_contentFrom is a geth extension; once a node rejects it we
	// stick to txpool_content for the rest of the process.
	mu              sync.Mutex
	contentFromGone bool
}

// NewFetcher creates a snapshot fetcher for one chain.
func NewFetcher(chainID string, client rpc.Caller) *Fetcher {
	return &Fetcher{
		chainID: chainID,
		client:  client,
		log:     logger.Default(),
	}
}

// ChainID returns the chain this fetcher reads from.
func (f *Fetcher) ChainID() string {
	return f.chainID
}

// FetchSnapshot reads the confirmed nonce and the pool content for one
// address and assembles them into a single snapshot. The two reads are
// independent and issued concurrently; both must succeed, so a transport
// failure aborts before any snapshot exists ("snapshot unavailable" is the
// caller's signal, never a half-built report).
func (f *Fetcher) FetchSnapshot(ctx context.Context, address string) (*domain.Snapshot, error) {
	addr, err := domain.NormalizeAddress(address)
	if err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}

	var (
		confirmed       uint64
		pending, queued domain.NonceSet
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		confirmed, err = f.confirmedNonce(gctx, addr)
		return err
	})
	g.Go(func() error {
		var err error
		pending, queued, err = f.poolContent(gctx, addr)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return domain.NewSnapshotFromSets(addr, confirmed, pending, queued), nil
}

func (f *Fetcher) confirmedNonce(ctx context.Context, addr string) (uint64, error) {
	result, err := f.client.Call(ctx, "eth_getTransactionCount", []any{addr, "latest"})
	if err != nil {
		return 0, fmt.Errorf("eth_getTransactionCount failed: %w", err)
	}

	nonceHex, ok := result.(string)
	if !ok {
		return 0, fmt.Errorf("invalid transaction count response")
	}
	return parseHexUint(nonceHex)
}

// poolContent returns the pending and queued nonce sets for addr. A missing
// address key or absent tier means an empty set: the node simply holds no
// transactions for the account in that tier.
func (f *Fetcher) poolContent(ctx context.Context, addr string) (pending, queued domain.NonceSet, err error) {
	f.mu.Lock()
	useContentFrom := !f.contentFromGone
	f.mu.Unlock()

	var content map[string]any
	if useContentFrom {
		content, err = f.contentFrom(ctx, addr)
		if err != nil {
			if !isMethodNotFound(err) {
				return nil, nil, err
			}
			f.mu.Lock()
			f.contentFromGone = true
			f.mu.Unlock()
			f.log.Debug("txpool_contentFrom unsupported, falling back to txpool_content",
				"chain", f.chainID)
			useContentFrom = false
		}
	}
	if !useContentFrom {
		content, err = f.fullContent(ctx, addr)
		if err != nil {
			return nil, nil, err
		}
	}

	pending, err = tierNonces(content, "pending")
	if err != nil {
		return nil, nil, err
	}
	queued, err = tierNonces(content, "queued")
	if err != nil {
		return nil, nil, err
	}
	return pending, queued, nil
}

// contentFrom queries txpool_contentFrom, which already scopes the result to
// one address: {"pending": {nonce: tx}, "queued": {nonce: tx}}.
func (f *Fetcher) contentFrom(ctx context.Context, addr string) (map[string]any, error) {
	result, err := f.client.Call(ctx, "txpool_contentFrom", []any{addr})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return map[string]any{}, nil
	}
	content, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid txpool_contentFrom response")
	}
	return content, nil
}

// fullContent queries txpool_content and indexes the full pool by the
// case-normalized address.
func (f *Fetcher) fullContent(ctx context.Context, addr string) (map[string]any, error) {
	result, err := f.client.Call(ctx, "txpool_content", []any{})
	if err != nil {
		return nil, fmt.Errorf("txpool_content failed: %w", err)
	}
	pool, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid txpool_content response")
	}

	content := map[string]any{}
	for _, tier := range []string{"pending", "queued"} {
		byAddress, ok := pool[tier].(map[string]any)
		if !ok {
			continue
		}
		for key, txs := range byAddress {
			if strings.ToLower(key) == addr {
				content[tier] = txs
				break
			}
		}
	}
	return content, nil
}

// tierNonces extracts the nonce keys of one pool tier. Keys arrive as
// decimal strings from geth-lineage nodes; hex quantities are accepted too.
func tierNonces(content map[string]any, tier string) (domain.NonceSet, error) {
	raw, ok := content[tier]
	if !ok || raw == nil {
		return nil, nil
	}
	byNonce, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid %s tier format", tier)
	}

	nonces := make([]uint64, 0, len(byNonce))
	for key := range byNonce {
		n, err := parseNonceKey(key)
		if err != nil {
			return nil, fmt.Errorf("invalid %s nonce key %q: %w", tier, key, err)
		}
		nonces = append(nonces, n)
	}
	return domain.NewNonceSet(nonces), nil
}

func isMethodNotFound(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "-32601") || strings.Contains(s, "method not found") ||
		strings.Contains(s, "does not exist")
}
