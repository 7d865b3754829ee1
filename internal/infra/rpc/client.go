// Package rpc is the high-level entry point for making JSON-RPC calls
// against the configured execution-layer endpoints.
package rpc

import (
	"context"
	"time"

	"github.com/vietddude/noncegap/internal/analysis/metrics"
	"github.com/vietddude/noncegap/internal/infra/rpc/provider"
	"github.com/vietddude/noncegap/internal/infra/rpc/quota"
	"github.com/vietddude/noncegap/internal/infra/rpc/routing"
)

// Caller is the interface the fetcher consumes.
type Caller interface {
	Call(ctx context.Context, method string, params []any) (any, error)
}

// Client routes calls across providers with retry, failover rotation and
// quota accounting.
type Client struct {
	router *routing.Router
	quota  *quota.Tracker
}

// NewClient creates a new RPC client.
func NewClient(router *routing.Router, tracker *quota.Tracker) *Client {
	return &Client{
		router: router,
		quota:  tracker,
	}
}

// Call makes an RPC call with automatic retry and single-step failover.
func (c *Client) Call(ctx context.Context, method string, params []any) (any, error) {
	p, err := c.router.GetProvider()
	if err != nil {
		return nil, err
	}

	result, err := c.call(ctx, p, method, params)
	if err == nil {
		return result, nil
	}

	if routing.ClassifyError(err) != routing.ActionFailover {
		return nil, err
	}

	// The current endpoint is throttled or out of quota; try the next one.
	p, rerr := c.router.RotateProvider()
	if rerr != nil {
		return nil, err
	}
	return c.call(ctx, p, method, params)
}

func (c *Client) call(ctx context.Context, p provider.Provider, method string, params []any) (any, error) {
	start := time.Now()
	result, err := routing.CallWithRetry(ctx, p, method, params, routing.DefaultRetryConfig)
	latency := time.Since(start)

	metrics.RPCCallsTotal.WithLabelValues(p.GetName(), method).Inc()
	metrics.RPCLatency.WithLabelValues(p.GetName(), method).Observe(latency.Seconds())

	if err != nil {
		metrics.RPCErrorsTotal.WithLabelValues(p.GetName(), method).Inc()
		c.router.RecordFailure(p.GetName(), err)
		return nil, err
	}

	c.router.RecordSuccess(p.GetName(), latency)
	if c.quota != nil {
		c.quota.RecordCall(p.GetName(), method)
	}
	return result, nil
}

// Close closes all providers.
func (c *Client) Close() error {
	for _, p := range c.router.GetAllProviders() {
		_ = p.Close()
	}
	return nil
}
