package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/vietddude/noncegap/internal/core/domain"
)

func locationLabel(loc domain.GapLocation) string {
	switch loc {
	case domain.GapBeforePending:
		return "before pending"
	case domain.GapWithinPending:
		return "within pending"
	case domain.GapBetweenPendingAndQueued:
		return "pending -> queued"
	case domain.GapBeforeQueued:
		return "before queued"
	}
	return string(loc)
}

func fmtNonce(v *uint64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

// renderReport prints a report for human eyes. The report itself stays a
// structured value; this is the only place that turns it into text.
func renderReport(out io.Writer, report *domain.GapReport) {
	fmt.Fprintf(out, "Address:          %s\n", report.Address)
	fmt.Fprintf(out, "Confirmed nonce:  %d\n\n", report.ConfirmedNonce)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "TIER\tFIRST\tLAST\tCOUNT")
	_, _ = fmt.Fprintf(w, "pending\t%s\t%s\t%d\n",
		fmtNonce(report.Summary.FirstPending), fmtNonce(report.Summary.LastPending),
		report.Summary.PendingCount)
	_, _ = fmt.Fprintf(w, "queued\t%s\t%s\t%d\n",
		fmtNonce(report.Summary.FirstQueued), fmtNonce(report.Summary.LastQueued),
		report.Summary.QueuedCount)
	_ = w.Flush()

	if !report.HasGaps() {
		fmt.Fprintln(out, "\nNo nonce gaps detected.")
		return
	}

	fmt.Fprintf(out, "\n%d gap(s) detected:\n", len(report.Gaps))
	w = tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "LOCATION\tEXPECTED\tACTUAL\tWIDTH")
	for _, g := range report.Gaps {
		marker := ""
		if g.Anomalous() {
			marker = " (anomalous)"
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%d%s\n",
			locationLabel(g.Location), g.ExpectedStart, g.ActualStart, g.Width(), marker)
	}
	_ = w.Flush()
}
