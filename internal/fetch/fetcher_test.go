package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"feeScope/internal/model"
	"feeScope/internal/paginate"
)

type call struct {
	field string
	vars  map[string]any
}

type fakeQuerier struct {
	tables  map[string][]string
	summary string
	err     error
	calls   []call
}

func (q *fakeQuerier) Query(_ context.Context, query string, vars map[string]any, out any) error {
	if strings.Contains(query, "clProtocolDayDatas(") {
		q.calls = append(q.calls, call{field: "summary", vars: vars})
		if q.err != nil {
			return q.err
		}
		return json.Unmarshal([]byte(q.summary), out)
	}

	field := ""
	for name := range q.tables {
		if strings.Contains(query, name+"(") {
			field = name
		}
	}
	q.calls = append(q.calls, call{field: field, vars: vars})
	if q.err != nil {
		return q.err
	}

	rows := q.tables[field]
	first, skip := vars["first"].(int), vars["skip"].(int)
	if skip > len(rows) {
		skip = len(rows)
	}
	end := skip + first
	if end > len(rows) {
		end = len(rows)
	}
	payload := `{"` + field + `":[` + strings.Join(rows[skip:end], ",") + `]}`
	return json.Unmarshal([]byte(payload), out)
}

func noSleep(context.Context, time.Duration) error { return nil }

func testFetcher(q Querier) *Fetcher {
	return NewFetcher(q, paginate.Config{PageSize: 2, Sleep: noSleep}, nil)
}

func TestBribesPaginatesWithWindow(t *testing.T) {
	q := &fakeQuerier{tables: map[string][]string{
		"voteBribes": {
			`{"id":"b1","token":{"id":"t1"},"clPool":{"id":"p1"},"amount":"10"}`,
			`{"id":"b2","token":{"id":"t2"},"legacyPool":{"id":"p2"},"amount":"1.5"}`,
			`{"id":"b3","token":{"id":"t1"},"clPool":{"id":"p3"},"amount":"2"}`,
		},
	}}

	window := model.DayWindow{From: 1738368000, To: 1738454400}
	bribes, err := testFetcher(q).Bribes(context.Background(), window)
	if err != nil {
		t.Fatalf("bribes: %v", err)
	}

	ids := make([]string, 0, len(bribes))
	for _, b := range bribes {
		ids = append(ids, b.ID)
	}
	if !reflect.DeepEqual(ids, []string{"b1", "b2", "b3"}) {
		t.Fatalf("ids mismatch: %v", ids)
	}
	if len(q.calls) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(q.calls))
	}
	for i, c := range q.calls {
		if c.vars["from"] != window.From || c.vars["to"] != window.To {
			t.Fatalf("call %d window mismatch: %v", i, c.vars)
		}
		if c.vars["skip"] != i*2 || c.vars["first"] != 2 {
			t.Fatalf("call %d paging mismatch: %v", i, c.vars)
		}
	}
}

func TestPoolDayMetricsPerPoolType(t *testing.T) {
	q := &fakeQuerier{tables: map[string][]string{
		"clPoolDayDatas":     {`{"pool":{"gauge":{"id":"g1"}},"feesUSD":"100"}`},
		"legacyPoolDayDatas": {`{"pool":{"gaugeV2":{"id":"g9"}},"feesUSD":"7"}`, `{"pool":{},"feesUSD":"1"}`},
	}}
	f := testFetcher(q)

	cl, err := f.PoolDayMetrics(context.Background(), model.PoolTypeCL, 1738368000)
	if err != nil {
		t.Fatalf("cl: %v", err)
	}
	if len(cl) != 1 || cl[0].FeesUSD.String() != "100" {
		t.Fatalf("cl mismatch: %+v", cl)
	}

	legacy, err := f.PoolDayMetrics(context.Background(), model.PoolTypeLegacy, 1738368000)
	if err != nil {
		t.Fatalf("legacy: %v", err)
	}
	if len(legacy) != 2 {
		t.Fatalf("legacy mismatch: %+v", legacy)
	}
	for _, c := range q.calls {
		if c.vars["startOfDay"] != int64(1738368000) {
			t.Fatalf("startOfDay mismatch: %v", c.vars)
		}
	}

	if _, err := f.PoolDayMetrics(context.Background(), model.PoolType("v4"), 0); err == nil {
		t.Fatalf("expected error for unknown pool type")
	}
}

func TestAliveGaugesPinsBlock(t *testing.T) {
	q := &fakeQuerier{tables: map[string][]string{
		"gauges": {`{"id":"g1","isAlive":true}`, `{"id":"g2","isAlive":true}`},
	}}

	gauges, err := testFetcher(q).AliveGauges(context.Background(), 4242)
	if err != nil {
		t.Fatalf("gauges: %v", err)
	}
	if len(gauges) != 2 {
		t.Fatalf("gauges mismatch: %+v", gauges)
	}
	// two items fill the first page, so a second (empty) page is requested
	if len(q.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(q.calls))
	}
	for _, c := range q.calls {
		if c.vars["block"] != uint64(4242) {
			t.Fatalf("block mismatch: %v", c.vars)
		}
	}
}

func TestTokenPrices(t *testing.T) {
	q := &fakeQuerier{tables: map[string][]string{
		"tokens": {`{"id":"t1","priceUSD":"2"}`},
	}}
	f := testFetcher(q)

	prices, err := f.TokenPrices(context.Background(), 10, []string{"t1", "t2"})
	if err != nil {
		t.Fatalf("prices: %v", err)
	}
	if len(prices) != 1 || prices[0].ID != "t1" || prices[0].PriceUSD.String() != "2" {
		t.Fatalf("prices mismatch: %+v", prices)
	}
	if ids, _ := q.calls[0].vars["ids"].([]string); !reflect.DeepEqual(ids, []string{"t1", "t2"}) {
		t.Fatalf("ids var mismatch: %v", q.calls[0].vars["ids"])
	}

	q.calls = nil
	empty, err := f.TokenPrices(context.Background(), 10, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty id set: %v %v", empty, err)
	}
	if len(q.calls) != 0 {
		t.Fatalf("empty id set should not query, got %d calls", len(q.calls))
	}
}

func TestDaySummaries(t *testing.T) {
	q := &fakeQuerier{summary: `{
		"clProtocolDayDatas":[{"startOfDay":1738368000,"volumeUSD":"1000000","feesUSD":"2500.5"}],
		"legacyProtocolDayDatas":[]
	}`}

	summaries, err := testFetcher(q).DaySummaries(context.Background(), 1738368000)
	if err != nil {
		t.Fatalf("summaries: %v", err)
	}
	cl, ok := summaries[model.PoolTypeCL]
	if !ok || cl.FeesUSD.String() != "2500.5" || cl.VolumeUSD.String() != "1000000" {
		t.Fatalf("cl summary mismatch: %+v", cl)
	}
	if _, ok := summaries[model.PoolTypeLegacy]; ok {
		t.Fatalf("legacy summary should be absent")
	}
}

func TestFetchErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	q := &fakeQuerier{tables: map[string][]string{"gauges": nil}, err: boom}

	if _, err := testFetcher(q).AliveGauges(context.Background(), 1); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := testFetcher(q).DaySummaries(context.Background(), 0); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestMissingFieldIsError(t *testing.T) {
	q := &fakeQuerier{tables: map[string][]string{}}
	if _, err := testFetcher(q).AliveGauges(context.Background(), 1); err == nil {
		t.Fatalf("expected error for missing response field")
	}
}
