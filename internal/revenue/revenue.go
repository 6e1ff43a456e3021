package revenue

import (
	"github.com/shopspring/decimal"

	"feeScope/internal/model"
)

// ProtocolFeeShare is the protocol's take on fees of pools without an alive gauge.
var ProtocolFeeShare = decimal.New(5, -2)

// GaugeSet is the set of gauge ids alive at the pinned block.
type GaugeSet map[string]struct{}

// NewGaugeSet indexes gauges by id.
func NewGaugeSet(gauges []model.Gauge) GaugeSet {
	set := make(GaugeSet, len(gauges))
	for _, g := range gauges {
		if g.ID == "" {
			continue
		}
		set[g.ID] = struct{}{}
	}
	return set
}

// Contains reports whether id is an alive gauge.
func (s GaugeSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// PriceBook maps token ids to USD prices.
type PriceBook map[string]decimal.Decimal

// NewPriceBook indexes prices by token id. The first price of a token wins.
func NewPriceBook(prices []model.TokenPrice) PriceBook {
	book := make(PriceBook, len(prices))
	for _, p := range prices {
		if _, ok := book[p.ID]; ok {
			continue
		}
		book[p.ID] = p.PriceUSD
	}
	return book
}

// Price returns the USD price of a token, zero when unknown.
func (b PriceBook) Price(tokenID string) decimal.Decimal {
	if price, ok := b[tokenID]; ok {
		return price
	}
	return decimal.Zero
}

// IsGauged reports whether a pool day belongs to a pool with an alive gauge.
func IsGauged(gauges GaugeSet, day model.PoolDayMetric) bool {
	for _, id := range day.GaugeIDs() {
		if gauges.Contains(id) {
			return true
		}
	}
	return false
}

// Partition splits pool days into gauged and gaugeless, keeping input order.
func Partition(gauges GaugeSet, days []model.PoolDayMetric) (gauged, gaugeless []model.PoolDayMetric) {
	for _, day := range days {
		if IsGauged(gauges, day) {
			gauged = append(gauged, day)
		} else {
			gaugeless = append(gaugeless, day)
		}
	}
	return gauged, gaugeless
}

// Attribution is the revenue split of one pool type.
type Attribution struct {
	ProtocolRevenueUSD  decimal.Decimal
	HolderFeeRevenueUSD decimal.Decimal
	BribeRevenueUSD     decimal.Decimal

	GaugedPools    int
	GaugelessPools int
	Bribes         int
}

// Attribute splits one pool type's fees and bribes:
// gaugeless fees go 5% to the protocol, gauged fees go entirely to holders,
// and bribes are valued at the pinned token prices (unpriced tokens count 0).
func Attribute(gauges GaugeSet, days []model.PoolDayMetric, bribes []model.IncentivePayment, prices PriceBook, pt model.PoolType) Attribution {
	gauged, gaugeless := Partition(gauges, days)

	out := Attribution{
		ProtocolRevenueUSD:  sumFees(gaugeless).Mul(ProtocolFeeShare),
		HolderFeeRevenueUSD: sumFees(gauged),
		BribeRevenueUSD:     decimal.Zero,
		GaugedPools:         len(gauged),
		GaugelessPools:      len(gaugeless),
	}

	for _, bribe := range bribes {
		if !bribe.Targets(pt) {
			continue
		}
		out.Bribes++
		out.BribeRevenueUSD = out.BribeRevenueUSD.Add(bribe.Amount.Mul(prices.Price(bribe.Token.ID)))
	}
	return out
}

func sumFees(days []model.PoolDayMetric) decimal.Decimal {
	total := decimal.Zero
	for _, day := range days {
		total = total.Add(day.FeesUSD)
	}
	return total
}
