package nonce

import (
	"reflect"
	"testing"

	"github.com/vietddude/noncegap/internal/core/domain"
)

const addr = "0xabc0000000000000000000000000000000000def"

func snapshot(t *testing.T, confirmed int64, pending, queued []int64) *domain.Snapshot {
	t.Helper()
	snap, err := domain.NewSnapshot(addr, confirmed, pending, queued)
	if err != nil {
		t.Fatalf("NewSnapshot failed: %v", err)
	}
	return snap
}

func TestAnalyze_EmptyPool(t *testing.T) {
	report := Analyze(snapshot(t, 42, nil, nil))

	if report.HasGaps() {
		t.Errorf("expected no gaps, got %v", report.Gaps)
	}
	if report.Summary.PendingCount != 0 || report.Summary.QueuedCount != 0 {
		t.Errorf("expected empty summary, got %+v", report.Summary)
	}
	if report.Summary.FirstPending != nil || report.Summary.LastQueued != nil {
		t.Errorf("expected nil first/last for empty sets, got %+v", report.Summary)
	}
}

func TestAnalyze_ContiguousPending(t *testing.T) {
	report := Analyze(snapshot(t, 5, []int64{5, 6, 7}, nil))

	if report.HasGaps() {
		t.Errorf("expected no gaps, got %v", report.Gaps)
	}
	if got := *report.Summary.LastPending; got != 7 {
		t.Errorf("expected lastPending 7, got %d", got)
	}
	if report.Summary.PendingCount != 3 {
		t.Errorf("expected pendingCount 3, got %d", report.Summary.PendingCount)
	}
}

func TestAnalyze_GapBeforePending(t *testing.T) {
	report := Analyze(snapshot(t, 5, []int64{7, 8}, nil))

	want := []domain.Gap{
		{Location: domain.GapBeforePending, ExpectedStart: 5, ActualStart: 7},
	}
	if !reflect.DeepEqual(report.Gaps, want) {
		t.Errorf("gaps = %v, want %v", report.Gaps, want)
	}
	if w := report.Gaps[0].Width(); w != 2 {
		t.Errorf("width = %d, want 2", w)
	}
}

func TestAnalyze_GapWithinPending(t *testing.T) {
	report := Analyze(snapshot(t, 5, []int64{5, 6, 9, 10}, nil))

	want := []domain.Gap{
		{Location: domain.GapWithinPending, ExpectedStart: 7, ActualStart: 9},
	}
	if !reflect.DeepEqual(report.Gaps, want) {
		t.Errorf("gaps = %v, want %v", report.Gaps, want)
	}
}

func TestAnalyze_GapBetweenPendingAndQueued(t *testing.T) {
	report := Analyze(snapshot(t, 5, []int64{5, 6}, []int64{9, 10}))

	want := []domain.Gap{
		{Location: domain.GapBetweenPendingAndQueued, ExpectedStart: 7, ActualStart: 9},
	}
	if !reflect.DeepEqual(report.Gaps, want) {
		t.Errorf("gaps = %v, want %v", report.Gaps, want)
	}
}

func TestAnalyze_GapBeforeQueued(t *testing.T) {
	report := Analyze(snapshot(t, 5, nil, []int64{8}))

	want := []domain.Gap{
		{Location: domain.GapBeforeQueued, ExpectedStart: 5, ActualStart: 8},
	}
	if !reflect.DeepEqual(report.Gaps, want) {
		t.Errorf("gaps = %v, want %v", report.Gaps, want)
	}
}

func TestAnalyze_QueuedContinuesPending(t *testing.T) {
	report := Analyze(snapshot(t, 5, []int64{5, 6}, []int64{7, 8}))

	if report.HasGaps() {
		t.Errorf("expected no gaps, got %v", report.Gaps)
	}
}

// Holes strictly inside the queued tier are not scanned: queued transactions
// are not block-eligible regardless of internal ordering.
func TestAnalyze_IntraQueuedHolesIgnored(t *testing.T) {
	report := Analyze(snapshot(t, 5, []int64{5, 6}, []int64{7, 20, 99}))

	if report.HasGaps() {
		t.Errorf("expected no gaps, got %v", report.Gaps)
	}
	if got := *report.Summary.LastQueued; got != 99 {
		t.Errorf("expected lastQueued 99, got %d", got)
	}
}

func TestAnalyze_MultipleGapsInScanOrder(t *testing.T) {
	report := Analyze(snapshot(t, 3, []int64{5, 6, 9, 12}, []int64{20}))

	want := []domain.Gap{
		{Location: domain.GapBeforePending, ExpectedStart: 3, ActualStart: 5},
		{Location: domain.GapWithinPending, ExpectedStart: 7, ActualStart: 9},
		{Location: domain.GapWithinPending, ExpectedStart: 10, ActualStart: 12},
		{Location: domain.GapBetweenPendingAndQueued, ExpectedStart: 13, ActualStart: 20},
	}
	if !reflect.DeepEqual(report.Gaps, want) {
		t.Errorf("gaps = %v, want %v", report.Gaps, want)
	}
	for i := 1; i < len(report.Gaps); i++ {
		if report.Gaps[i].ExpectedStart <= report.Gaps[i-1].ExpectedStart {
			t.Errorf("gaps not in ascending expectedStart order: %v", report.Gaps)
		}
	}
}

// The cursor resynchronizes after each hole, so a single mid-sequence hole
// does not inflate the gaps recorded after it.
func TestAnalyze_CursorResynchronizes(t *testing.T) {
	report := Analyze(snapshot(t, 0, []int64{0, 5, 6, 10}, nil))

	want := []domain.Gap{
		{Location: domain.GapWithinPending, ExpectedStart: 1, ActualStart: 5},
		{Location: domain.GapWithinPending, ExpectedStart: 7, ActualStart: 10},
	}
	if !reflect.DeepEqual(report.Gaps, want) {
		t.Errorf("gaps = %v, want %v", report.Gaps, want)
	}
}

// A pool nonce below the confirmed nonce violates the fetcher's ordering
// guarantee. The analyzer surfaces it as a negative-width gap instead of
// hiding it.
func TestAnalyze_AnomalousOrdering(t *testing.T) {
	report := Analyze(snapshot(t, 10, []int64{7, 8}, nil))

	if len(report.Gaps) != 1 {
		t.Fatalf("expected one gap, got %v", report.Gaps)
	}
	g := report.Gaps[0]
	if g.Location != domain.GapBeforePending {
		t.Errorf("location = %s, want %s", g.Location, domain.GapBeforePending)
	}
	if g.Width() != -3 {
		t.Errorf("width = %d, want -3", g.Width())
	}
	if !g.Anomalous() {
		t.Error("expected gap to be flagged anomalous")
	}
	if !report.HasAnomaly() {
		t.Error("expected report to carry an anomaly")
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	snap := snapshot(t, 5, []int64{5, 8, 9}, []int64{12})

	first := Analyze(snap)
	second := Analyze(snap)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated analysis differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestAnalyze_UnsortedInputHandled(t *testing.T) {
	// NewSnapshot sorts and dedupes; the analyzer sees ordered sets.
	report := Analyze(snapshot(t, 5, []int64{10, 5, 9, 6, 9}, nil))

	want := []domain.Gap{
		{Location: domain.GapWithinPending, ExpectedStart: 7, ActualStart: 9},
	}
	if !reflect.DeepEqual(report.Gaps, want) {
		t.Errorf("gaps = %v, want %v", report.Gaps, want)
	}
}
