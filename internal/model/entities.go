package model

import "github.com/shopspring/decimal"

// Ref is a nested `{ id }` reference in a subgraph response.
type Ref struct {
	ID string `json:"id"`
}

func refID(ref *Ref) (string, bool) {
	if ref == nil || ref.ID == "" {
		return "", false
	}
	return ref.ID, true
}

// IncentivePayment is a vote bribe offered for one pool.
type IncentivePayment struct {
	ID         string          `json:"id"`
	Token      Ref             `json:"token"`
	LegacyPool *Ref            `json:"legacyPool"`
	CLPool     *Ref            `json:"clPool"`
	Amount     decimal.Decimal `json:"amount"`
}

// LegacyPoolID returns the targeted legacy pool, if any.
func (p IncentivePayment) LegacyPoolID() (string, bool) { return refID(p.LegacyPool) }

// CLPoolID returns the targeted concentrated-liquidity pool, if any.
func (p IncentivePayment) CLPoolID() (string, bool) { return refID(p.CLPool) }

// Targets reports whether the payment is directed at a pool of the given type.
func (p IncentivePayment) Targets(pt PoolType) bool {
	switch pt {
	case PoolTypeLegacy:
		_, ok := p.LegacyPoolID()
		return ok
	case PoolTypeCL:
		_, ok := p.CLPoolID()
		return ok
	default:
		return false
	}
}

// TokenPrice is a token USD price at a pinned block.
type TokenPrice struct {
	ID       string          `json:"id"`
	PriceUSD decimal.Decimal `json:"priceUSD"`
}

// PoolGauges holds the optional gauge references of a pool.
type PoolGauges struct {
	Gauge   *Ref `json:"gauge"`
	GaugeV2 *Ref `json:"gaugeV2"`
}

// PoolDayMetric is one pool's fees for the day.
type PoolDayMetric struct {
	Pool    PoolGauges      `json:"pool"`
	FeesUSD decimal.Decimal `json:"feesUSD"`
}

// GaugeIDs returns the set gauge ids of the pool, v1 first.
func (m PoolDayMetric) GaugeIDs() []string {
	ids := make([]string, 0, 2)
	if id, ok := refID(m.Pool.Gauge); ok {
		ids = append(ids, id)
	}
	if id, ok := refID(m.Pool.GaugeV2); ok {
		ids = append(ids, id)
	}
	return ids
}

// Gauge is a reward gauge.
type Gauge struct {
	ID      string `json:"id"`
	IsAlive bool   `json:"isAlive"`
}

// DaySummary is the pre-aggregated protocol day record of one pool type.
type DaySummary struct {
	StartOfDay int64           `json:"startOfDay"`
	VolumeUSD  decimal.Decimal `json:"volumeUSD"`
	FeesUSD    decimal.Decimal `json:"feesUSD"`
}
