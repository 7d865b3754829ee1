package health

import (
	"time"

	"github.com/vietddude/noncegap/internal/analysis/monitor"
)

// StateProvider exposes per-address scan states. Implemented by the watch
// monitor.
type StateProvider interface {
	States() map[string]monitor.AddressState
}

// Monitor derives health status from scan freshness and errors.
type Monitor struct {
	provider   StateProvider
	staleAfter time.Duration
}

// NewMonitor creates a health monitor. staleAfter should be a small multiple
// of the scan interval.
func NewMonitor(provider StateProvider, staleAfter time.Duration) *Monitor {
	return &Monitor{
		provider:   provider,
		staleAfter: staleAfter,
	}
}

// Check builds the current health report. A scan error degrades an address;
// a missing or stale scan is critical (the watcher is blind for it).
func (m *Monitor) Check() Report {
	report := Report{
		SystemStatus: StatusHealthy,
		Addresses:    make(map[string]AddressHealth),
	}

	now := time.Now()
	for addr, s := range m.provider.States() {
		h := AddressHealth{
			Address:    addr,
			Status:     StatusHealthy,
			LastScanAt: s.LastScanAt,
			GapCount:   s.GapCount,
			Anomalous:  s.Anomalous,
			LastError:  s.LastError,
		}

		switch {
		case s.LastScanAt.IsZero():
			h.Status = StatusCritical
			h.ScanAge = "never"
		case now.Sub(s.LastScanAt) > m.staleAfter:
			h.Status = StatusCritical
			h.ScanAge = now.Sub(s.LastScanAt).Round(time.Second).String()
		case s.LastError != "":
			h.Status = StatusDegraded
			h.ScanAge = now.Sub(s.LastScanAt).Round(time.Second).String()
		default:
			h.ScanAge = now.Sub(s.LastScanAt).Round(time.Second).String()
		}

		report.Addresses[addr] = h

		// Worst case wins.
		if h.Status == StatusCritical {
			report.SystemStatus = StatusCritical
		} else if h.Status == StatusDegraded && report.SystemStatus == StatusHealthy {
			report.SystemStatus = StatusDegraded
		}
	}

	return report
}
