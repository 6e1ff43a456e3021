package model

import "github.com/shopspring/decimal"

// PoolTypeMetrics are the five daily figures of one pool type.
type PoolTypeMetrics struct {
	VolumeUSD           decimal.Decimal `json:"volume_usd"`
	FeesUSD             decimal.Decimal `json:"fees_usd"`
	ProtocolRevenueUSD  decimal.Decimal `json:"protocol_revenue_usd"`
	HolderFeeRevenueUSD decimal.Decimal `json:"holder_fee_revenue_usd"`
	BribeRevenueUSD     decimal.Decimal `json:"bribe_revenue_usd"`
}

// MetricsResult is the output of one daily computation.
type MetricsResult struct {
	Legacy PoolTypeMetrics `json:"legacy"`
	CL     PoolTypeMetrics `json:"cl"`
}

// For returns the figures of a pool type.
func (r MetricsResult) For(pt PoolType) PoolTypeMetrics {
	if pt == PoolTypeLegacy {
		return r.Legacy
	}
	return r.CL
}

// Summary is the adapter-facing view of one pool type.
type Summary struct {
	DailyVolume            decimal.Decimal `json:"dailyVolume"`
	DailyFees              decimal.Decimal `json:"dailyFees"`
	DailyUserFees          decimal.Decimal `json:"dailyUserFees"`
	DailyHoldersRevenue    decimal.Decimal `json:"dailyHoldersRevenue"`
	DailyProtocolRevenue   decimal.Decimal `json:"dailyProtocolRevenue"`
	DailyRevenue           decimal.Decimal `json:"dailyRevenue"`
	DailySupplySideRevenue decimal.Decimal `json:"dailySupplySideRevenue"`
	DailyBribesRevenue     decimal.Decimal `json:"dailyBribesRevenue"`
}

// DailyRecord is a computed day ready for a sink.
type DailyRecord struct {
	Chain       Chain         `json:"chain"`
	StartOfDay  int64         `json:"start_of_day"`
	Block       uint64        `json:"block"`
	Metrics     MetricsResult `json:"metrics"`
	Summary     Summary       `json:"summary"`
	ReportedFor PoolType      `json:"reported_pool_type"`
	ComputedAt  string        `json:"computed_at"`
}
