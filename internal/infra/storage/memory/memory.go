// Package memory provides an in-memory ReportRepository, the default when
// no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vietddude/noncegap/internal/core/domain"
	"github.com/vietddude/noncegap/internal/infra/storage"
)

type ReportRepo struct {
	mu      sync.RWMutex
	byID    map[string]*domain.Record
	byAddr  map[string][]*domain.Record
}

func NewReportRepo() *ReportRepo {
	return &ReportRepo{
		byID:   make(map[string]*domain.Record),
		byAddr: make(map[string][]*domain.Record),
	}
}

func (r *ReportRepo) Save(ctx context.Context, record *domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *record
	r.byID[record.ID] = &cp
	r.byAddr[record.Address] = append(r.byAddr[record.Address], &cp)
	return nil
}

func (r *ReportRepo) GetByID(ctx context.Context, id string) (*domain.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byID[id]
	if !ok {
		return nil, storage.ErrRecordNotFound
	}
	cp := *record
	return &cp, nil
}

func (r *ReportRepo) ListRecent(ctx context.Context, address string, limit int) ([]*domain.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := r.byAddr[address]
	out := make([]*domain.Record, len(records))
	for i, rec := range records {
		cp := *rec
		out[i] = &cp
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ObservedAt.After(out[j].ObservedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ReportRepo) DeleteOlderThan(ctx context.Context, cutoffUnix int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for addr, records := range r.byAddr {
		kept := records[:0]
		for _, rec := range records {
			if rec.ObservedAt.Unix() < cutoffUnix {
				delete(r.byID, rec.ID)
				deleted++
				continue
			}
			kept = append(kept, rec)
		}
		r.byAddr[addr] = kept
	}
	return deleted, nil
}
