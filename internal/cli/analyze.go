package cli

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/vietddude/noncegap/internal/control"
	"github.com/vietddude/noncegap/internal/core/config"
	"github.com/vietddude/noncegap/internal/core/nonce"
)

var (
	rpcURL     string
	jsonOutput bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <address>",
	Short: "Run a one-shot nonce-gap analysis for an address",
	Args:  cobra.ExactArgs(1),
	Run:   runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&rpcURL, "rpc", "", "RPC endpoint (overrides config providers)")
	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the report as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil && rpcURL == "" {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	chain := config.ChainConfig{ID: "ethereum"}
	if cfg != nil {
		chain = cfg.Chain
	}
	if rpcURL != "" {
		chain.Providers = []config.ProviderConfig{
			{Name: "cli", URL: rpcURL, Timeout: 30 * time.Second},
		}
	}

	fetcher, client, err := control.NewFetcher(chain)
	if err != nil {
		slog.Error("Failed to build RPC stack", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = client.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	snap, err := fetcher.FetchSnapshot(ctx, args[0])
	if err != nil {
		slog.Error("Failed to fetch pool snapshot", "error", err)
		os.Exit(1)
	}

	report := nonce.Analyze(snap)

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
		return
	}
	renderReport(os.Stdout, report)

	if report.HasGaps() {
		os.Exit(2) // distinguishable from operational failure
	}
}
