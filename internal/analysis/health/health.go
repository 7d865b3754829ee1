// Package health provides health monitoring and status reporting for the
// watch loop.
package health

import "time"

// SystemStatus represents the overall health state of the system or a component.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// AddressHealth contains health metrics for one watched address.
type AddressHealth struct {
	Address    string       `json:"address"`
	Status     SystemStatus `json:"status"`
	LastScanAt time.Time    `json:"last_scan_at"`
	ScanAge    string       `json:"scan_age"`
	GapCount   int          `json:"gap_count"`
	Anomalous  bool         `json:"anomalous"`
	LastError  string       `json:"last_error,omitempty"`
}

// Report contains the full health report.
type Report struct {
	SystemStatus SystemStatus             `json:"system_status"`
	Addresses    map[string]AddressHealth `json:"addresses"`
}
