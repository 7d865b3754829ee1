package domain

import (
	"time"

	"github.com/google/uuid"
)

// Record is a stored analysis run. Persistence identity lives here so the
// analyzer itself stays a pure function.
type Record struct {
	ID         string    `json:"id"`
	ChainID    string    `json:"chain_id"`
	Address    string    `json:"address"`
	ObservedAt time.Time `json:"observed_at"`
	Report     GapReport `json:"report"`
}

// NewRecord wraps a report for storage.
func NewRecord(chainID string, report *GapReport) *Record {
	return &Record{
		ID:         uuid.New().String(),
		ChainID:    chainID,
		Address:    report.Address,
		ObservedAt: time.Now().UTC(),
		Report:     *report,
	}
}
