package fetch

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"feeScope/internal/metrics"
	"feeScope/internal/model"
	"feeScope/internal/paginate"
)

// Querier runs a GraphQL query and decodes its data object into out.
type Querier interface {
	Query(ctx context.Context, query string, vars map[string]any, out any) error
}

// Fetcher retrieves the entity sets of one subgraph.
type Fetcher struct {
	querier Querier
	pager   paginate.Config
	logger  *zap.Logger
}

// NewFetcher builds a Fetcher. A zero pager config falls back to the
// default page size and delay.
func NewFetcher(querier Querier, pager paginate.Config, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pager.PageSize == 0 && pager.Delay == 0 && pager.Sleep == nil {
		pager = paginate.DefaultConfig()
	}
	return &Fetcher{querier: querier, pager: pager, logger: logger}
}

// Bribes returns every vote bribe created inside the window.
func (f *Fetcher) Bribes(ctx context.Context, window model.DayWindow) ([]model.IncentivePayment, error) {
	return collect[model.IncentivePayment](ctx, f, "voteBribes", bribesQuery, map[string]any{
		"from": window.From,
		"to":   window.To,
	})
}

// PoolDayMetrics returns the fee-earning pool days of one pool type.
func (f *Fetcher) PoolDayMetrics(ctx context.Context, pt model.PoolType, startOfDay int64) ([]model.PoolDayMetric, error) {
	vars := map[string]any{"startOfDay": startOfDay}
	switch pt {
	case model.PoolTypeCL:
		return collect[model.PoolDayMetric](ctx, f, "clPoolDayDatas", clPoolDayDataQuery, vars)
	case model.PoolTypeLegacy:
		return collect[model.PoolDayMetric](ctx, f, "legacyPoolDayDatas", legacyPoolDayDataQuery, vars)
	default:
		return nil, fmt.Errorf("unknown pool type: %q", pt)
	}
}

// AliveGauges returns the gauges alive at block.
func (f *Fetcher) AliveGauges(ctx context.Context, block uint64) ([]model.Gauge, error) {
	return collect[model.Gauge](ctx, f, "gauges", aliveGaugesQuery, map[string]any{"block": block})
}

// TokenPrices returns the positive prices of ids at block. An empty id set
// needs no request.
func (f *Fetcher) TokenPrices(ctx context.Context, block uint64, ids []string) ([]model.TokenPrice, error) {
	if len(ids) == 0 {
		return []model.TokenPrice{}, nil
	}
	return collect[model.TokenPrice](ctx, f, "tokens", tokenPricesQuery, map[string]any{
		"block": block,
		"ids":   ids,
	})
}

// DaySummaries returns the protocol day record of each pool type. A pool
// type without a record is absent from the map.
func (f *Fetcher) DaySummaries(ctx context.Context, startOfDay int64) (map[model.PoolType]model.DaySummary, error) {
	var out struct {
		CL     []model.DaySummary `json:"clProtocolDayDatas"`
		Legacy []model.DaySummary `json:"legacyProtocolDayDatas"`
	}
	if err := f.querier.Query(ctx, daySummaryQuery, map[string]any{"startOfDay": startOfDay}, &out); err != nil {
		return nil, fmt.Errorf("query day summaries: %w", err)
	}

	summaries := make(map[model.PoolType]model.DaySummary, 2)
	if len(out.CL) > 0 {
		summaries[model.PoolTypeCL] = out.CL[0]
	}
	if len(out.Legacy) > 0 {
		summaries[model.PoolTypeLegacy] = out.Legacy[0]
	}
	return summaries, nil
}

func collect[T any](ctx context.Context, f *Fetcher, field, query string, base map[string]any) ([]T, error) {
	cfg := f.pager
	observe := metrics.PageObserver(field)
	cfg.OnPage = func(page, items int) {
		observe(page, items)
		f.logger.Debug("page fetched", zap.String("entity", field), zap.Int("page", page), zap.Int("items", items))
	}

	items, err := paginate.Collect(ctx, cfg, func(ctx context.Context, first, skip int) ([]T, error) {
		vars := make(map[string]any, len(base)+2)
		for k, v := range base {
			vars[k] = v
		}
		vars["first"] = first
		vars["skip"] = skip

		var data map[string]json.RawMessage
		if err := f.querier.Query(ctx, query, vars, &data); err != nil {
			return nil, err
		}
		raw, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("response missing field %q", field)
		}
		var page []T
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("decode %s: %w", field, err)
		}
		return page, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", field, err)
	}

	f.logger.Debug("entities fetched", zap.String("entity", field), zap.Int("count", len(items)))
	return items, nil
}
