package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"feeScope/internal/backfill"
	"feeScope/internal/config"
	"feeScope/internal/metrics"
	"feeScope/internal/stats"
)

func runBackfill(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadBackfill(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Out == "" && cfg.PGDSN == "" {
		return fmt.Errorf("backfill needs --out or --pg-dsn")
	}
	if cfg.Block > 0 {
		return fmt.Errorf("--block cannot be used with backfill, every day needs its own block")
	}

	from, err := config.ParseDay(cfg.From)
	if err != nil {
		return fmt.Errorf("parse from: %w", err)
	}
	to, err := config.ParseDay(cfg.To)
	if err != nil {
		return fmt.Errorf("parse to: %w", err)
	}
	if cfg.To == "" {
		to = config.LastCompletedDay(time.Now())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		metrics.Serve(ctx, cfg.MetricsAddr, logger)
	}

	a, err := newApp(ctx, cfg.Common, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	var state backfill.StateStore
	if cfg.StateFile != "" {
		state = &backfill.FileStateStore{Path: cfg.StateFile}
	} else if a.store != nil {
		state = &backfill.DBStateStore{Store: a.store, Name: backfill.StateName(string(a.chain))}
	}

	earliest := earliestDay(a.deployment)
	runner := backfill.NewRunner(backfill.RunConfig{
		Chain:          a.chain,
		From:           from,
		To:             to,
		Earliest:       earliest,
		ReportPoolType: a.reportFor,
	}, a.service, a.resolve, a.sinks, state, logger)

	logger.Info("backfill start",
		zap.String("chain", string(a.chain)),
		zap.String("from", stats.DayLabel(from)),
		zap.String("to", stats.DayLabel(to)),
		zap.String("earliest", stats.DayLabel(earliest)),
		zap.String("endpoint", a.deployment.Endpoint),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("state_file", cfg.StateFile),
	)

	return runner.Run(ctx)
}
