package backfill

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"feeScope/internal/model"
	"feeScope/internal/stats"
	"feeScope/internal/storage"
)

// Computer computes one day.
type Computer interface {
	FetchStats(ctx context.Context, opts model.FetchOptions) (stats.Result, error)
}

// ResolverFunc builds the start block resolver of a day.
type ResolverFunc func(startOfDay int64) model.BlockResolver

// RunConfig holds runtime settings for a backfill.
type RunConfig struct {
	Chain          model.Chain
	From           int64
	To             int64
	Earliest       int64
	ReportPoolType model.PoolType
}

// Runner computes a range of days and writes them to a sink.
type Runner struct {
	cfg      RunConfig
	computer Computer
	resolve  ResolverFunc
	sink     storage.Sink
	state    StateStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewRunner builds a Runner with its dependencies. state may be nil.
func NewRunner(cfg RunConfig, computer Computer, resolve ResolverFunc, sink storage.Sink, state StateStore, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:      cfg,
		computer: computer,
		resolve:  resolve,
		sink:     sink,
		state:    state,
		logger:   logger,
		now:      time.Now,
	}
}

// Run computes every pending day in order. A failing day stops the run and
// the checkpoint stays at the last stored day.
func (r *Runner) Run(ctx context.Context) error {
	if r.computer == nil {
		return fmt.Errorf("stats computer is nil")
	}
	if r.resolve == nil {
		return fmt.Errorf("block resolver is nil")
	}
	if r.sink == nil {
		return fmt.Errorf("sink is nil")
	}

	from, to := r.cfg.From, r.cfg.To
	if r.cfg.Earliest > from {
		r.logger.Info("clamp to deployment start", zap.Int64("from", from), zap.Int64("earliest", r.cfg.Earliest))
		from = r.cfg.Earliest
	}

	if r.state != nil {
		last, ok, err := r.state.Load(ctx)
		if err != nil {
			return fmt.Errorf("load state: %w", err)
		}
		if ok && last >= from {
			from = last + model.SecondsPerDay
			r.logger.Info("resume from checkpoint", zap.Int64("last_processed", last), zap.Int64("from", from))
		}
	}

	if from > to {
		r.logger.Info("nothing to backfill", zap.Int64("from", from), zap.Int64("to", to))
		return nil
	}

	days, err := DayRange(from, to)
	if err != nil {
		return err
	}

	for _, day := range days {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		opts := model.FetchOptions{
			Chain:      r.cfg.Chain,
			StartOfDay: day,
			StartBlock: r.resolve(day),
		}
		res, err := r.computer.FetchStats(ctx, opts)
		if err != nil {
			return fmt.Errorf("compute day %s: %w", stats.DayLabel(day), err)
		}

		record := stats.Record(opts, res, r.cfg.ReportPoolType, r.now())
		if err := r.sink.PutDailyRecords(ctx, []model.DailyRecord{record}); err != nil {
			return fmt.Errorf("store day %s: %w", stats.DayLabel(day), err)
		}

		if r.state != nil {
			if err := r.state.Save(ctx, day); err != nil {
				return fmt.Errorf("save state: %w", err)
			}
		}

		r.logger.Info("day stored",
			zap.String("day", stats.DayLabel(day)),
			zap.Uint64("block", res.Block),
			zap.String("daily_fees", record.Summary.DailyFees.String()),
			zap.String("daily_revenue", record.Summary.DailyRevenue.String()),
		)
	}

	return nil
}
