package domain

// GapLocation identifies which logical run a gap was detected in.
type GapLocation string

const (
	// GapBeforePending: the chain's next required nonce is not in the pool at all.
	GapBeforePending GapLocation = "before_pending"
	// GapWithinPending: a hole inside the pending sequence.
	GapWithinPending GapLocation = "within_pending"
	// GapBetweenPendingAndQueued: queued does not continue where pending ends.
	GapBetweenPendingAndQueued GapLocation = "between_pending_and_queued"
	// GapBeforeQueued: pending is empty and queued does not start at the confirmed nonce.
	GapBeforeQueued GapLocation = "before_queued"
)

// Gap is a discontinuity in the expected nonce sequence.
type Gap struct {
	Location      GapLocation `json:"location"`
	ExpectedStart uint64      `json:"expected_start"`
	ActualStart   uint64      `json:"actual_start"`
}

// Width is the size of the hole. Negative when the observed nonce sits below
// the expected one, which only happens on a malformed pool read.
func (g Gap) Width() int64 {
	return int64(g.ActualStart) - int64(g.ExpectedStart)
}

// Anomalous reports whether this gap violates the fetcher's ordering
// guarantee (pool nonce below the confirmed/expected nonce). Surfaced for
// the caller to decide, never suppressed.
func (g Gap) Anomalous() bool {
	return g.ActualStart < g.ExpectedStart
}

// Summary aggregates the two nonce sets. First/Last pointers are nil when
// the corresponding set is empty.
type Summary struct {
	FirstPending *uint64 `json:"first_pending,omitempty"`
	LastPending  *uint64 `json:"last_pending,omitempty"`
	PendingCount int     `json:"pending_count"`
	FirstQueued  *uint64 `json:"first_queued,omitempty"`
	LastQueued   *uint64 `json:"last_queued,omitempty"`
	QueuedCount  int     `json:"queued_count"`
}

// GapReport is the analyzer's output: gaps in scan order plus summary
// fields. A passive value; rendering belongs to the presentation layer.
type GapReport struct {
	Address        string  `json:"address"`
	ConfirmedNonce uint64  `json:"confirmed_nonce"`
	Gaps           []Gap   `json:"gaps"`
	Summary        Summary `json:"summary"`
}

// HasGaps reports whether any discontinuity was found.
func (r *GapReport) HasGaps() bool {
	return len(r.Gaps) > 0
}

// HasAnomaly reports whether any gap has negative width.
func (r *GapReport) HasAnomaly() bool {
	for _, g := range r.Gaps {
		if g.Anomalous() {
			return true
		}
	}
	return false
}
