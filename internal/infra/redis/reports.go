package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vietddude/noncegap/internal/core/domain"
)

// ErrNoCachedReport is returned when no report is cached for an address.
var ErrNoCachedReport = errors.New("no cached report")

// ReportCache stores the latest record per address with a TTL.
type ReportCache struct {
	rdb     *redis.Client
	chainID string
	ttl     time.Duration
}

// NewReportCache creates a report cache scoped to one chain.
func NewReportCache(client *Client, chainID string, ttl time.Duration) *ReportCache {
	return &ReportCache{
		rdb:     client.rdb,
		chainID: chainID,
		ttl:     ttl,
	}
}

func (c *ReportCache) lastKey(address string) string {
	return fmt.Sprintf("noncegap:last:%s:%s", c.chainID, address)
}

// SetLast stores the most recent record for an address.
func (c *ReportCache) SetLast(ctx context.Context, record *domain.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := c.rdb.Set(ctx, c.lastKey(record.Address), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache record: %w", err)
	}
	return nil
}

// GetLast retrieves the most recent cached record for an address.
func (c *ReportCache) GetLast(ctx context.Context, address string) (*domain.Record, error) {
	data, err := c.rdb.Get(ctx, c.lastKey(address)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoCachedReport
		}
		return nil, fmt.Errorf("failed to read cached record: %w", err)
	}

	var record domain.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached record: %w", err)
	}
	return &record, nil
}
