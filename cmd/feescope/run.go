package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"feeScope/internal/config"
	"feeScope/internal/metrics"
	"feeScope/internal/model"
	"feeScope/internal/stats"
)

type runOutput struct {
	Day     string            `json:"day"`
	Summary model.Summary     `json:"summary"`
	Record  model.DailyRecord `json:"record"`
}

func runDay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	day, err := config.ParseDay(cfg.Day)
	if err != nil {
		return fmt.Errorf("parse day: %w", err)
	}
	if cfg.Day == "" {
		day = config.LastCompletedDay(time.Now())
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

	if earliest := earliestDay(a.deployment); day < earliest {
		return fmt.Errorf("day %s is before the %s deployment (%s)", stats.DayLabel(day), a.chain, stats.DayLabel(earliest))
	}

	logger.Info("run start",
		zap.String("chain", string(a.chain)),
		zap.String("day", stats.DayLabel(day)),
		zap.String("endpoint", a.deployment.Endpoint),
		zap.Uint64("block", cfg.Block),
		zap.String("report_pool_type", string(a.reportFor)),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	opts := model.FetchOptions{Chain: a.chain, StartOfDay: day, StartBlock: a.resolve(day)}
	res, err := a.service.FetchStats(ctx, opts)
	if err != nil {
		return err
	}

	record := stats.Record(opts, res, a.reportFor, time.Now())
	if len(a.sinks) > 0 {
		if err := a.sinks.PutDailyRecords(ctx, []model.DailyRecord{record}); err != nil {
			return fmt.Errorf("store record: %w", err)
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(runOutput{Day: stats.DayLabel(day), Summary: record.Summary, Record: record})
}
