package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "feescope",
		Short:        "Daily fee and revenue stats for gauge/bribe DEX subgraphs",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Compute the stats of one day",
		RunE:  runDay,
	}

	addCommonFlags(runCmd.Flags())
	runCmd.Flags().String("day", "", "day start (YYYY-MM-DD, RFC3339 or unix seconds), empty means yesterday")

	root.AddCommand(runCmd)

	backfillCmd := &cobra.Command{
		Use:   "backfill",
		Short: "Compute and store the stats of a range of days",
		RunE:  runBackfill,
	}

	addCommonFlags(backfillCmd.Flags())
	backfillCmd.Flags().String("from", "", "first day (inclusive), empty means the deployment day")
	backfillCmd.Flags().String("to", "", "last day (inclusive), empty means yesterday")
	backfillCmd.Flags().String("state-file", "", "local state file for resume, empty uses Postgres when --pg-dsn is set")

	root.AddCommand(backfillCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addCommonFlags(flags *pflag.FlagSet) {
	flags.String("chain", "sonic", "chain to compute")
	flags.String("endpoint", "", "subgraph endpoint override")
	flags.String("rpc", "", "RPC URL used to find the block at the start of a day")
	flags.Uint64("block", 0, "fixed block for point-in-time queries, skips the RPC lookup")
	flags.Int("page-size", 1000, "entities per page")
	flags.Duration("page-delay", 200*time.Millisecond, "delay between pages")
	flags.Duration("timeout", 30*time.Second, "per-request timeout")
	flags.Int("max-retries", 3, "maximum retry attempts per request")
	flags.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	flags.String("report-pool-type", "cl", "pool type surfaced in the summary (legacy, cl)")
	flags.String("out", "", "output JSONL path")
	flags.String("pg-dsn", "", "Postgres DSN")
	flags.String("metrics-addr", "", "address serving /metrics, empty disables it")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
