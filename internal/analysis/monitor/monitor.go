// Package monitor runs the polling watch loop: fetch a snapshot per watched
// address each interval, analyze it, and log state transitions rather than
// every tick.
package monitor

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/vietddude/noncegap/internal/analysis/metrics"
	"github.com/vietddude/noncegap/internal/core/domain"
	"github.com/vietddude/noncegap/internal/core/nonce"
	"github.com/vietddude/noncegap/internal/infra/chain/evm"
	"github.com/vietddude/noncegap/internal/infra/storage"
)

// SnapshotFetcher supplies per-address pool snapshots.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, address string) (*domain.Snapshot, error)
	FetchPoolStatus(ctx context.Context) (evm.PoolStatus, error)
}

// ReportCache stores and recalls the last record per address across
// restarts. Optional; nil disables it.
type ReportCache interface {
	SetLast(ctx context.Context, record *domain.Record) error
	GetLast(ctx context.Context, address string) (*domain.Record, error)
}

// AddressState is the monitor's view of one watched address, exposed to the
// health endpoints.
type AddressState struct {
	Address    string    `json:"address"`
	LastScanAt time.Time `json:"last_scan_at"`
	LastError  string    `json:"last_error,omitempty"`
	GapCount   int       `json:"gap_count"`
	Anomalous  bool      `json:"anomalous"`
}

// Config holds monitor settings.
type Config struct {
	ChainID   string
	Addresses []string
	Interval  time.Duration
}

// Monitor polls the pool for each watched address.
type Monitor struct {
	cfg     Config
	fetcher SnapshotFetcher
	store   storage.ReportRepository
	cache   ReportCache
	log     *slog.Logger

	mu     sync.RWMutex
	last   map[string]*domain.Record
	states map[string]*AddressState
}

// New creates a monitor. store and cache may be nil.
func New(cfg Config, fetcher SnapshotFetcher, store storage.ReportRepository, cache ReportCache) *Monitor {
	return &Monitor{
		cfg:     cfg,
		fetcher: fetcher,
		store:   store,
		cache:   cache,
		log:     slog.Default(),
		last:    make(map[string]*domain.Record),
		states:  make(map[string]*AddressState),
	}
}

// Run polls until the context is cancelled. The first scan happens
// immediately rather than one interval in.
func (m *Monitor) Run(ctx context.Context) error {
	m.log.Info("Starting watch loop",
		"chain", m.cfg.ChainID,
		"addresses", len(m.cfg.Addresses),
		"interval", m.cfg.Interval)

	m.seedFromCache(ctx)
	m.scanAll(ctx)

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info("Watch loop stopped")
			return nil
		case <-ticker.C:
			m.scanAll(ctx)
		}
	}
}

// States returns a copy of the per-address scan states.
func (m *Monitor) States() map[string]AddressState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]AddressState, len(m.states))
	for addr, s := range m.states {
		out[addr] = *s
	}
	return out
}

// LastRecord returns the most recent record for an address, if any.
func (m *Monitor) LastRecord(address string) (*domain.Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.last[address]
	return rec, ok
}

// seedFromCache restores the last known record per address so a restart
// doesn't re-announce gaps that were already reported.
func (m *Monitor) seedFromCache(ctx context.Context) {
	if m.cache == nil {
		return
	}
	for _, addr := range m.cfg.Addresses {
		rec, err := m.cache.GetLast(ctx, addr)
		if err != nil {
			continue
		}
		m.mu.Lock()
		m.last[addr] = rec
		m.mu.Unlock()
	}
}

func (m *Monitor) scanAll(ctx context.Context) {
	if status, err := m.fetcher.FetchPoolStatus(ctx); err == nil {
		metrics.PoolPendingTotal.WithLabelValues(m.cfg.ChainID).Set(float64(status.Pending))
		metrics.PoolQueuedTotal.WithLabelValues(m.cfg.ChainID).Set(float64(status.Queued))
		m.log.Debug("Pool status",
			"chain", m.cfg.ChainID,
			"pending", status.Pending,
			"queued", status.Queued)
	}

	for _, addr := range m.cfg.Addresses {
		if ctx.Err() != nil {
			return
		}
		m.scanAddress(ctx, addr)
	}
}

func (m *Monitor) scanAddress(ctx context.Context, address string) {
	snap, err := m.fetcher.FetchSnapshot(ctx, address)
	if err != nil {
		metrics.ScanErrorsTotal.WithLabelValues(address).Inc()
		m.log.Error("Snapshot fetch failed", "address", address, "error", err)
		m.setState(address, func(s *AddressState) {
			s.LastError = err.Error()
		})
		return
	}

	report := nonce.Analyze(snap)
	record := domain.NewRecord(m.cfg.ChainID, report)

	m.logTransition(address, report)
	m.updateMetrics(report)

	if m.store != nil {
		if err := m.store.Save(ctx, record); err != nil {
			m.log.Warn("Failed to persist report", "address", address, "error", err)
		}
	}
	if m.cache != nil {
		if err := m.cache.SetLast(ctx, record); err != nil {
			m.log.Warn("Failed to cache report", "address", address, "error", err)
		}
	}

	m.mu.Lock()
	m.last[address] = record
	m.mu.Unlock()

	m.setState(address, func(s *AddressState) {
		s.LastScanAt = record.ObservedAt
		s.LastError = ""
		s.GapCount = len(report.Gaps)
		s.Anomalous = report.HasAnomaly()
	})
	metrics.ScansTotal.WithLabelValues(address).Inc()
}

// logTransition emits a line only when the gap picture changes, matching how
// an operator actually watches this: silence means steady state.
func (m *Monitor) logTransition(address string, report *domain.GapReport) {
	m.mu.RLock()
	prev, hadPrev := m.last[address]
	m.mu.RUnlock()

	var prevGaps []domain.Gap
	if hadPrev {
		prevGaps = prev.Report.Gaps
	}

	switch {
	case !hadPrev && report.HasGaps(), hadPrev && len(prevGaps) == 0 && report.HasGaps():
		m.log.Warn("Nonce gaps detected",
			"address", address,
			"confirmed_nonce", report.ConfirmedNonce,
			"gaps", len(report.Gaps),
			"first_gap", report.Gaps[0].ExpectedStart)
	case hadPrev && len(prevGaps) > 0 && !report.HasGaps():
		m.log.Info("Nonce gaps cleared", "address", address,
			"confirmed_nonce", report.ConfirmedNonce)
	case hadPrev && report.HasGaps() && !reflect.DeepEqual(prevGaps, report.Gaps):
		m.log.Warn("Nonce gap state changed",
			"address", address,
			"gaps", len(report.Gaps),
			"was", len(prevGaps))
	default:
		m.log.Debug("Scan complete",
			"address", address,
			"pending", report.Summary.PendingCount,
			"queued", report.Summary.QueuedCount,
			"gaps", len(report.Gaps))
	}

	if report.HasAnomaly() {
		m.log.Warn("Pool nonce below confirmed nonce", "address", address)
	}
}

func (m *Monitor) updateMetrics(report *domain.GapReport) {
	counts := map[domain.GapLocation]int{}
	for _, g := range report.Gaps {
		counts[g.Location]++
	}
	for _, loc := range []domain.GapLocation{
		domain.GapBeforePending,
		domain.GapWithinPending,
		domain.GapBetweenPendingAndQueued,
		domain.GapBeforeQueued,
	} {
		metrics.GapsDetected.WithLabelValues(report.Address, string(loc)).Set(float64(counts[loc]))
	}
	metrics.ConfirmedNonce.WithLabelValues(report.Address).Set(float64(report.ConfirmedNonce))
	metrics.PendingNonces.WithLabelValues(report.Address).Set(float64(report.Summary.PendingCount))
	metrics.QueuedNonces.WithLabelValues(report.Address).Set(float64(report.Summary.QueuedCount))
}

func (m *Monitor) setState(address string, update func(*AddressState)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.states[address]
	if !ok {
		s = &AddressState{Address: address}
		m.states[address] = s
	}
	update(s)
}
