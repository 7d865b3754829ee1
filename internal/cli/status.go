package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vietddude/noncegap/internal/core/config"
	"github.com/vietddude/noncegap/internal/core/domain"
	redisclient "github.com/vietddude/noncegap/internal/infra/redis"
	"github.com/vietddude/noncegap/internal/infra/storage/postgres"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last known report for each watched address",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if len(cfg.Watch.Addresses) == 0 {
		slog.Error("No watch addresses configured")
		os.Exit(1)
	}

	ctx := context.Background()
	lookup, cleanup, err := lastRecordLookup(ctx, cfg)
	if err != nil {
		slog.Error("Status requires redis or database configuration", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "ADDRESS\tOBSERVED\tCONFIRMED\tPENDING\tQUEUED\tGAPS")

	for _, addr := range cfg.Watch.Addresses {
		normalized, err := domain.NormalizeAddress(addr)
		if err != nil {
			slog.Warn("Skipping invalid address", "address", addr, "error", err)
			continue
		}

		rec, err := lookup(ctx, normalized)
		if err != nil {
			_, _ = fmt.Fprintf(w, "%s\t-\t-\t-\t-\t-\n", normalized)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\n",
			rec.Address,
			rec.ObservedAt.Format("2006-01-02 15:04:05"),
			rec.Report.ConfirmedNonce,
			rec.Report.Summary.PendingCount,
			rec.Report.Summary.QueuedCount,
			len(rec.Report.Gaps),
		)
	}
	_ = w.Flush()
}

type recordLookup func(ctx context.Context, address string) (*domain.Record, error)

// lastRecordLookup prefers the Redis cache and falls back to storage.
func lastRecordLookup(ctx context.Context, cfg *config.AppConfig) (recordLookup, func(), error) {
	if cfg.Redis.URL != "" {
		rc, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		cache := redisclient.NewReportCache(rc, cfg.Chain.ID, cfg.Watch.HistoryTTL)
		return cache.GetLast, func() { _ = rc.Close() }, nil
	}

	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		repo := postgres.NewReportRepo(db)
		lookup := func(ctx context.Context, address string) (*domain.Record, error) {
			records, err := repo.ListRecent(ctx, address, 1)
			if err != nil {
				return nil, err
			}
			if len(records) == 0 {
				return nil, redisclient.ErrNoCachedReport
			}
			return records[0], nil
		}
		return lookup, func() { _ = db.Close() }, nil
	}

	return nil, nil, errors.New("neither redis nor database configured")
}
