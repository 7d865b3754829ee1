package health

import (
	"testing"
	"time"

	"github.com/vietddude/noncegap/internal/analysis/monitor"
)

type staticProvider map[string]monitor.AddressState

func (p staticProvider) States() map[string]monitor.AddressState { return p }

func TestCheck_Healthy(t *testing.T) {
	m := NewMonitor(staticProvider{
		"0xabc": {Address: "0xabc", LastScanAt: time.Now(), GapCount: 2},
	}, time.Minute)

	report := m.Check()
	if report.SystemStatus != StatusHealthy {
		t.Errorf("status = %s, want healthy", report.SystemStatus)
	}
	if report.Addresses["0xabc"].GapCount != 2 {
		t.Errorf("gapCount = %d, want 2", report.Addresses["0xabc"].GapCount)
	}
}

func TestCheck_ErrorDegrades(t *testing.T) {
	m := NewMonitor(staticProvider{
		"0xabc": {Address: "0xabc", LastScanAt: time.Now(), LastError: "connection refused"},
	}, time.Minute)

	if got := m.Check().SystemStatus; got != StatusDegraded {
		t.Errorf("status = %s, want degraded", got)
	}
}

func TestCheck_StaleScanIsCritical(t *testing.T) {
	m := NewMonitor(staticProvider{
		"0xabc": {Address: "0xabc", LastScanAt: time.Now().Add(-time.Hour)},
	}, time.Minute)

	if got := m.Check().SystemStatus; got != StatusCritical {
		t.Errorf("status = %s, want critical", got)
	}
}

func TestCheck_NeverScannedIsCritical(t *testing.T) {
	m := NewMonitor(staticProvider{
		"0xabc": {Address: "0xabc"},
	}, time.Minute)

	report := m.Check()
	if report.SystemStatus != StatusCritical {
		t.Errorf("status = %s, want critical", report.SystemStatus)
	}
	if report.Addresses["0xabc"].ScanAge != "never" {
		t.Errorf("scanAge = %s, want never", report.Addresses["0xabc"].ScanAge)
	}
}

func TestCheck_WorstCaseWins(t *testing.T) {
	m := NewMonitor(staticProvider{
		"0xaaa": {Address: "0xaaa", LastScanAt: time.Now()},
		"0xbbb": {Address: "0xbbb", LastScanAt: time.Now(), LastError: "boom"},
		"0xccc": {Address: "0xccc"},
	}, time.Minute)

	if got := m.Check().SystemStatus; got != StatusCritical {
		t.Errorf("status = %s, want critical", got)
	}
}
