package storage

import (
	"context"
	"errors"

	"github.com/vietddude/noncegap/internal/core/domain"
)

var (
	// ErrRecordNotFound is returned when a report record doesn't exist
	ErrRecordNotFound = errors.New("record not found")
)

// ReportRepository handles persistence of analysis runs.
type ReportRepository interface {
	// Save stores one analysis record
	Save(ctx context.Context, record *domain.Record) error

	// GetByID retrieves a record by its ID
	GetByID(ctx context.Context, id string) (*domain.Record, error)

	// ListRecent retrieves the most recent records for an address,
	// newest first
	ListRecent(ctx context.Context, address string, limit int) ([]*domain.Record, error)

	// DeleteOlderThan removes records observed before the cutoff,
	// returning the number deleted
	DeleteOlderThan(ctx context.Context, cutoffUnix int64) (int64, error)
}
