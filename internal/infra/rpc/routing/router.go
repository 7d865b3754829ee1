package routing

import (
	"fmt"
	"sync"
	"time"

	"github.com/vietddude/noncegap/internal/infra/rpc/provider"
)

// circuitThreshold is the consecutive-failure count that opens a provider's
// circuit until its next success.
const circuitThreshold = 5

// QuotaChecker is a minimal interface for quota checking in routing.
type QuotaChecker interface {
	CanUseProvider(providerName string) bool
}

type providerMetrics struct {
	successCount     int
	failureCount     int
	totalLatency     time.Duration
	lastSuccessAt    time.Time
	lastFailureAt    time.Time
	consecutiveFails int
	circuitOpen      bool
}

// Router selects among configured providers with failover rotation and a
// consecutive-failure circuit breaker.
type Router struct {
	mu        sync.RWMutex
	providers []provider.Provider
	health    map[string]*providerMetrics
	cursor    int
	quota     QuotaChecker
}

// NewRouter creates a router. quota may be nil.
func NewRouter(quota QuotaChecker) *Router {
	return &Router{
		health: make(map[string]*providerMetrics),
		quota:  quota,
	}
}

// AddProvider registers a provider.
func (r *Router) AddProvider(p provider.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers = append(r.providers, p)
	r.health[p.GetName()] = &providerMetrics{
		lastSuccessAt: time.Now(),
	}
}

// GetProvider returns the best available provider: the current rotation
// slot, skipping open circuits and quota-exhausted endpoints.
func (r *Router) GetProvider() (provider.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.providers) == 0 {
		return nil, fmt.Errorf("no providers configured")
	}

	for i := 0; i < len(r.providers); i++ {
		p := r.providers[(r.cursor+i)%len(r.providers)]
		if !p.IsAvailable() {
			continue
		}
		if m, ok := r.health[p.GetName()]; ok && m.circuitOpen {
			continue
		}
		if r.quota != nil && !r.quota.CanUseProvider(p.GetName()) {
			continue
		}
		return p, nil
	}

	// Everything is degraded; fall back to the rotation slot rather than
	// refusing outright so a recovering endpoint gets probed.
	return r.providers[r.cursor%len(r.providers)], nil
}

// RotateProvider advances the rotation cursor and returns the next provider.
func (r *Router) RotateProvider() (provider.Provider, error) {
	r.mu.Lock()
	if len(r.providers) == 0 {
		r.mu.Unlock()
		return nil, fmt.Errorf("no providers configured")
	}
	r.cursor = (r.cursor + 1) % len(r.providers)
	r.mu.Unlock()

	return r.GetProvider()
}

// GetAllProviders returns all registered providers.
func (r *Router) GetAllProviders() []provider.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]provider.Provider, len(r.providers))
	copy(result, r.providers)
	return result
}

// RecordSuccess records a successful call.
func (r *Router) RecordSuccess(providerName string, latency time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.health[providerName]
	if !ok {
		return
	}

	m.successCount++
	m.totalLatency += latency
	m.lastSuccessAt = time.Now()
	m.consecutiveFails = 0
	m.circuitOpen = false
}

// RecordFailure records a failed call.
func (r *Router) RecordFailure(providerName string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.health[providerName]
	if !ok {
		return
	}

	m.failureCount++
	m.lastFailureAt = time.Now()
	m.consecutiveFails++

	if m.consecutiveFails >= circuitThreshold {
		m.circuitOpen = true
	}
}
