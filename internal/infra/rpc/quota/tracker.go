// Package quota tracks per-provider daily call allowances so the router can
// rotate off exhausted endpoints instead of burning through a plan limit.
package quota

import (
	"sync"
	"time"
)

// UsageStats holds quota usage for one provider.
type UsageStats struct {
	TotalCalls      int
	DailyLimit      int
	RemainingCalls  int
	UsagePercentage float64
	NextResetAt     time.Time
}

type providerQuota struct {
	totalCalls  int
	dailyLimit  int // 0 = unlimited
	methodCalls map[string]int
}

// Tracker counts calls per provider with a midnight rollover.
type Tracker struct {
	mu        sync.RWMutex
	providers map[string]*providerQuota
	resetTime time.Time
}

// NewTracker creates a tracker. limits maps provider name to daily call
// allowance; 0 (or a missing entry) means unlimited.
func NewTracker(limits map[string]int) *Tracker {
	t := &Tracker{
		providers: make(map[string]*providerQuota),
		resetTime: nextMidnight(time.Now()),
	}
	for name, limit := range limits {
		t.providers[name] = &providerQuota{
			dailyLimit:  limit,
			methodCalls: make(map[string]int),
		}
	}
	return t
}

// RecordCall records a call for quota tracking.
func (t *Tracker) RecordCall(providerName, method string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rolloverLocked()

	q, ok := t.providers[providerName]
	if !ok {
		q = &providerQuota{methodCalls: make(map[string]int)}
		t.providers[providerName] = q
	}
	q.totalCalls++
	q.methodCalls[method]++
}

// CanUseProvider reports whether the provider still has quota today.
func (t *Tracker) CanUseProvider(providerName string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rolloverLocked()

	q, ok := t.providers[providerName]
	if !ok || q.dailyLimit == 0 {
		return true
	}
	return q.totalCalls < q.dailyLimit
}

// GetUsage returns usage statistics for a provider.
func (t *Tracker) GetUsage(providerName string) UsageStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stats := UsageStats{NextResetAt: t.resetTime}
	q, ok := t.providers[providerName]
	if !ok {
		return stats
	}

	stats.TotalCalls = q.totalCalls
	stats.DailyLimit = q.dailyLimit
	if q.dailyLimit > 0 {
		remaining := q.dailyLimit - q.totalCalls
		if remaining < 0 {
			remaining = 0
		}
		stats.RemainingCalls = remaining
		stats.UsagePercentage = float64(q.totalCalls) / float64(q.dailyLimit) * 100
	}
	return stats
}

// Reset clears all counters.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, q := range t.providers {
		q.totalCalls = 0
		q.methodCalls = make(map[string]int)
	}
	t.resetTime = nextMidnight(time.Now())
}

func (t *Tracker) rolloverLocked() {
	now := time.Now()
	if now.Before(t.resetTime) {
		return
	}
	for _, q := range t.providers {
		q.totalCalls = 0
		q.methodCalls = make(map[string]int)
	}
	t.resetTime = nextMidnight(now)
}

func nextMidnight(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
}
