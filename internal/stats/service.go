package stats

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"feeScope/internal/metrics"
	"feeScope/internal/model"
	"feeScope/internal/revenue"
)

// Source provides the entity sets of one chain's subgraph.
type Source interface {
	Bribes(ctx context.Context, window model.DayWindow) ([]model.IncentivePayment, error)
	TokenPrices(ctx context.Context, block uint64, ids []string) ([]model.TokenPrice, error)
	DaySummaries(ctx context.Context, startOfDay int64) (map[model.PoolType]model.DaySummary, error)
	PoolDayMetrics(ctx context.Context, pt model.PoolType, startOfDay int64) ([]model.PoolDayMetric, error)
	AliveGauges(ctx context.Context, block uint64) ([]model.Gauge, error)
}

// Result is one computed day.
type Result struct {
	Block        uint64
	Metrics      model.MetricsResult
	Attributions map[model.PoolType]revenue.Attribution
}

// Service computes daily metrics for registered chains.
type Service struct {
	mu      sync.RWMutex
	sources map[model.Chain]Source
	logger  *zap.Logger
}

func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{sources: make(map[model.Chain]Source), logger: logger}
}

// Register sets the source of a chain.
func (s *Service) Register(chain model.Chain, src Source) {
	s.mu.Lock()
	s.sources[chain] = src
	s.mu.Unlock()
}

func (s *Service) source(chain model.Chain) (Source, error) {
	s.mu.RLock()
	src, ok := s.sources[chain]
	s.mu.RUnlock()
	if !ok || src == nil {
		return nil, fmt.Errorf("%w: %q", model.ErrUnsupportedChain, chain)
	}
	return src, nil
}

// FetchStats computes the metrics of one day. Any failing fetch aborts the
// computation and no partial result is returned.
func (s *Service) FetchStats(ctx context.Context, opts model.FetchOptions) (Result, error) {
	res, err := s.fetchStats(ctx, opts)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.DaysComputed.WithLabelValues(string(opts.Chain), status).Inc()
	if err == nil {
		metrics.LastComputedDay.WithLabelValues(string(opts.Chain)).Set(float64(opts.StartOfDay))
	}
	return res, err
}

func (s *Service) fetchStats(ctx context.Context, opts model.FetchOptions) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	src, err := s.source(opts.Chain)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	logger := s.logger.With(zap.String("chain", string(opts.Chain)), zap.Int64("start_of_day", opts.StartOfDay))

	bribes, err := src.Bribes(ctx, opts.Window())
	if err != nil {
		return Result{}, fmt.Errorf("fetch bribes: %w", err)
	}
	tokenIDs := distinctTokenIDs(bribes)

	block, err := opts.StartBlock(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("resolve start block: %w", err)
	}

	var (
		prices    []model.TokenPrice
		summaries map[model.PoolType]model.DaySummary
		clDays    []model.PoolDayMetric
		legDays   []model.PoolDayMetric
		gauges    []model.Gauge
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if prices, err = src.TokenPrices(gctx, block, tokenIDs); err != nil {
			return fmt.Errorf("fetch token prices: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if summaries, err = src.DaySummaries(gctx, opts.StartOfDay); err != nil {
			return fmt.Errorf("fetch day summaries: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if clDays, err = src.PoolDayMetrics(gctx, model.PoolTypeCL, opts.StartOfDay); err != nil {
			return fmt.Errorf("fetch cl pool days: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if legDays, err = src.PoolDayMetrics(gctx, model.PoolTypeLegacy, opts.StartOfDay); err != nil {
			return fmt.Errorf("fetch legacy pool days: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if gauges, err = src.AliveGauges(gctx, block); err != nil {
			return fmt.Errorf("fetch alive gauges: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	alive := revenue.NewGaugeSet(gauges)
	book := revenue.NewPriceBook(prices)
	days := map[model.PoolType][]model.PoolDayMetric{
		model.PoolTypeCL:     clDays,
		model.PoolTypeLegacy: legDays,
	}

	res := Result{Block: block, Attributions: make(map[model.PoolType]revenue.Attribution, len(model.PoolTypes))}
	for _, pt := range model.PoolTypes {
		attr := revenue.Attribute(alive, days[pt], bribes, book, pt)
		res.Attributions[pt] = attr

		summary := summaries[pt]
		figures := model.PoolTypeMetrics{
			VolumeUSD:           summary.VolumeUSD,
			FeesUSD:             summary.FeesUSD,
			ProtocolRevenueUSD:  attr.ProtocolRevenueUSD,
			HolderFeeRevenueUSD: attr.HolderFeeRevenueUSD,
			BribeRevenueUSD:     attr.BribeRevenueUSD,
		}
		if pt == model.PoolTypeLegacy {
			res.Metrics.Legacy = figures
		} else {
			res.Metrics.CL = figures
		}

		logger.Debug("pool type attributed",
			zap.String("pool_type", string(pt)),
			zap.Int("gauged_pools", attr.GaugedPools),
			zap.Int("gaugeless_pools", attr.GaugelessPools),
			zap.Int("bribes", attr.Bribes),
		)
	}

	logger.Info("day computed",
		zap.Uint64("block", block),
		zap.Int("bribes", len(bribes)),
		zap.Int("tokens", len(tokenIDs)),
		zap.Int("priced_tokens", len(book)),
		zap.Int("alive_gauges", len(alive)),
		zap.Int("cl_pool_days", len(clDays)),
		zap.Int("legacy_pool_days", len(legDays)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return res, nil
}

// distinctTokenIDs returns the sorted set of tokens referenced by bribes.
func distinctTokenIDs(bribes []model.IncentivePayment) []string {
	seen := make(map[string]struct{}, len(bribes))
	ids := make([]string, 0, len(bribes))
	for _, b := range bribes {
		if b.Token.ID == "" {
			continue
		}
		if _, ok := seen[b.Token.ID]; ok {
			continue
		}
		seen[b.Token.ID] = struct{}{}
		ids = append(ids, b.Token.ID)
	}
	sort.Strings(ids)
	return ids
}

// Summarize derives the adapter-facing figures of one pool type.
func Summarize(m model.MetricsResult, pt model.PoolType) model.Summary {
	figures := m.For(pt)
	return model.Summary{
		DailyVolume:            figures.VolumeUSD,
		DailyFees:              figures.FeesUSD,
		DailyUserFees:          figures.FeesUSD,
		DailyHoldersRevenue:    figures.HolderFeeRevenueUSD,
		DailyProtocolRevenue:   figures.ProtocolRevenueUSD,
		DailyRevenue:           figures.ProtocolRevenueUSD.Add(figures.HolderFeeRevenueUSD),
		DailySupplySideRevenue: figures.FeesUSD.Sub(figures.HolderFeeRevenueUSD).Sub(figures.ProtocolRevenueUSD),
		DailyBribesRevenue:     figures.BribeRevenueUSD,
	}
}

// Record wraps a result into a sink record reporting pt.
func Record(opts model.FetchOptions, res Result, pt model.PoolType, now time.Time) model.DailyRecord {
	return model.DailyRecord{
		Chain:       opts.Chain,
		StartOfDay:  opts.StartOfDay,
		Block:       res.Block,
		Metrics:     res.Metrics,
		Summary:     Summarize(res.Metrics, pt),
		ReportedFor: pt,
		ComputedAt:  now.UTC().Format(time.RFC3339Nano),
	}
}

// DayLabel formats a day start as YYYY-MM-DD.
func DayLabel(startOfDay int64) string {
	if startOfDay%model.SecondsPerDay != 0 {
		return strconv.FormatInt(startOfDay, 10)
	}
	return model.DayTime(startOfDay).Format(time.DateOnly)
}
