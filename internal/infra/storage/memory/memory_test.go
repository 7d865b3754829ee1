package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vietddude/noncegap/internal/core/domain"
	"github.com/vietddude/noncegap/internal/infra/storage"
)

func record(addr string, observedAt time.Time) *domain.Record {
	rec := domain.NewRecord("ethereum", &domain.GapReport{Address: addr, ConfirmedNonce: 5})
	rec.ObservedAt = observedAt
	return rec
}

func TestReportRepo_SaveAndGet(t *testing.T) {
	repo := NewReportRepo()
	ctx := context.Background()

	rec := record("0xabc", time.Now())
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Address != "0xabc" || got.Report.ConfirmedNonce != 5 {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestReportRepo_GetMissing(t *testing.T) {
	repo := NewReportRepo()
	_, err := repo.GetByID(context.Background(), "nope")
	if !errors.Is(err, storage.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestReportRepo_ListRecentNewestFirst(t *testing.T) {
	repo := NewReportRepo()
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 5; i++ {
		if err := repo.Save(ctx, record("0xabc", now.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}
	_ = repo.Save(ctx, record("0xother", now))

	got, err := repo.ListRecent(ctx, "0xabc", 3)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].ObservedAt.After(got[i-1].ObservedAt) {
			t.Errorf("records not newest-first: %v then %v", got[i-1].ObservedAt, got[i].ObservedAt)
		}
	}
}

func TestReportRepo_DeleteOlderThan(t *testing.T) {
	repo := NewReportRepo()
	ctx := context.Background()
	now := time.Now()

	old := record("0xabc", now.Add(-48*time.Hour))
	fresh := record("0xabc", now)
	_ = repo.Save(ctx, old)
	_ = repo.Save(ctx, fresh)

	deleted, err := repo.DeleteOlderThan(ctx, now.Add(-24*time.Hour).Unix())
	if err != nil {
		t.Fatalf("DeleteOlderThan failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	if _, err := repo.GetByID(ctx, old.ID); !errors.Is(err, storage.ErrRecordNotFound) {
		t.Errorf("expected old record gone, got %v", err)
	}
	if _, err := repo.GetByID(ctx, fresh.ID); err != nil {
		t.Errorf("expected fresh record kept, got %v", err)
	}
}
