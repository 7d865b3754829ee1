// Package nonce implements gap detection over a transaction-pool snapshot.
//
// The analyzer reconstructs the contiguous nonce sequence an account needs
// for its pool transactions to become block-eligible, starting from the
// confirmed on-chain nonce, and records every deviation. Queued nonces are
// checked only at the boundary transition from pending: transactions inside
// the queued tier are not block-eligible regardless of internal ordering, so
// intra-queued holes are intentionally not scanned.
package nonce

import (
	"github.com/vietddude/noncegap/internal/core/domain"
)

// Analyze computes the gap report for one snapshot. Pure and deterministic:
// identical snapshots yield identical reports, bounded by the size of the
// two sets. Input validation happens at snapshot construction.
func Analyze(snap *domain.Snapshot) *domain.GapReport {
	report := &domain.GapReport{
		Address:        snap.Address,
		ConfirmedNonce: snap.ConfirmedNonce,
	}

	var lastPending uint64
	hasPending := !snap.Pending.IsEmpty()

	if hasPending {
		first := snap.Pending.First()
		if first != snap.ConfirmedNonce {
			report.Gaps = append(report.Gaps, domain.Gap{
				Location:      domain.GapBeforePending,
				ExpectedStart: snap.ConfirmedNonce,
				ActualStart:   first,
			})
		}

		// The cursor resynchronizes to n+1 after every element, so only the
		// originally-expected point of each hole is recorded and a single
		// mid-sequence hole never inflates the gaps that follow it.
		expected := first
		for _, n := range snap.Pending {
			if n != expected {
				report.Gaps = append(report.Gaps, domain.Gap{
					Location:      domain.GapWithinPending,
					ExpectedStart: expected,
					ActualStart:   n,
				})
			}
			expected = n + 1
		}
		lastPending = snap.Pending.Last()
	}

	if !snap.Queued.IsEmpty() {
		firstQueued := snap.Queued.First()
		if hasPending {
			if firstQueued != lastPending+1 {
				report.Gaps = append(report.Gaps, domain.Gap{
					Location:      domain.GapBetweenPendingAndQueued,
					ExpectedStart: lastPending + 1,
					ActualStart:   firstQueued,
				})
			}
		} else if firstQueued != snap.ConfirmedNonce {
			report.Gaps = append(report.Gaps, domain.Gap{
				Location:      domain.GapBeforeQueued,
				ExpectedStart: snap.ConfirmedNonce,
				ActualStart:   firstQueued,
			})
		}
	}

	report.Summary = summarize(snap)
	return report
}

func summarize(snap *domain.Snapshot) domain.Summary {
	s := domain.Summary{
		PendingCount: snap.Pending.Len(),
		QueuedCount:  snap.Queued.Len(),
	}
	if !snap.Pending.IsEmpty() {
		first, last := snap.Pending.First(), snap.Pending.Last()
		s.FirstPending, s.LastPending = &first, &last
	}
	if !snap.Queued.IsEmpty() {
		first, last := snap.Queued.First(), snap.Queued.Last()
		s.FirstQueued, s.LastQueued = &first, &last
	}
	return s
}
