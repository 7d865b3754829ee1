package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vietddude/noncegap/internal/core/domain"
	"github.com/vietddude/noncegap/internal/infra/storage/postgres"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history <address>",
	Short: "Show recent stored reports for an address",
	Args:  cobra.ExactArgs(1),
	Run:   runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of reports to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Database.URL == "" {
		slog.Error("History requires database configuration")
		os.Exit(1)
	}

	address, err := domain.NormalizeAddress(args[0])
	if err != nil {
		slog.Error("Invalid address", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	records, err := postgres.NewReportRepo(db).ListRecent(ctx, address, historyLimit)
	if err != nil {
		slog.Error("Failed to query reports", "error", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Printf("No stored reports for %s\n", address)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "OBSERVED\tCONFIRMED\tPENDING\tQUEUED\tGAPS\tANOMALY")
	for _, rec := range records {
		anomaly := ""
		if rec.Report.HasAnomaly() {
			anomaly = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%s\n",
			rec.ObservedAt.Format("2006-01-02 15:04:05"),
			rec.Report.ConfirmedNonce,
			rec.Report.Summary.PendingCount,
			rec.Report.Summary.QueuedCount,
			len(rec.Report.Gaps),
			anomaly,
		)
	}
	_ = w.Flush()
}
