package paginate

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

type recorder struct {
	sleeps []time.Duration
	skips  []int
}

func (r *recorder) sleep(_ context.Context, d time.Duration) error {
	r.sleeps = append(r.sleeps, d)
	return nil
}

func sourceOf(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

func (r *recorder) pageFunc(source []int) PageFunc[int] {
	return func(_ context.Context, first, skip int) ([]int, error) {
		r.skips = append(r.skips, skip)
		if skip >= len(source) {
			return nil, nil
		}
		end := skip + first
		if end > len(source) {
			end = len(source)
		}
		return source[skip:end], nil
	}
}

func TestCollectPageCounts(t *testing.T) {
	const pageSize = 3

	tests := []struct {
		name      string
		total     int
		wantSkips []int
	}{
		{"empty", 0, []int{0}},
		{"short first page", 2, []int{0}},
		{"exactly one page", pageSize, []int{0, 3}},
		{"one page plus one", pageSize + 1, []int{0, 3}},
		{"exactly two pages", 2 * pageSize, []int{0, 3, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			source := sourceOf(tt.total)
			cfg := Config{PageSize: pageSize, Delay: DefaultDelay, Sleep: rec.sleep}

			got, err := Collect(context.Background(), cfg, rec.pageFunc(source))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, source) {
				t.Fatalf("items mismatch: %v != %v", got, source)
			}
			if !reflect.DeepEqual(rec.skips, tt.wantSkips) {
				t.Fatalf("skips mismatch: %v != %v", rec.skips, tt.wantSkips)
			}
			if len(rec.sleeps) != len(tt.wantSkips)-1 {
				t.Fatalf("expected %d delays, got %d", len(tt.wantSkips)-1, len(rec.sleeps))
			}
			for _, d := range rec.sleeps {
				if d != DefaultDelay {
					t.Fatalf("delay mismatch: %s", d)
				}
			}
		})
	}
}

func TestCollectPropagatesError(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("boom")
	calls := 0
	fetch := func(_ context.Context, first, skip int) ([]int, error) {
		calls++
		if calls == 2 {
			return nil, boom
		}
		return sourceOf(first), nil
	}

	got, err := Collect(context.Background(), Config{PageSize: 2, Sleep: rec.sleep}, fetch)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if got != nil {
		t.Fatalf("partial results should be discarded, got %v", got)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestCollectStopsOnCancelledSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetch := func(_ context.Context, first, _ int) ([]int, error) {
		cancel()
		return sourceOf(first), nil
	}

	_, err := Collect(ctx, Config{PageSize: 1, Delay: time.Hour}, fetch)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCollectOnPageHook(t *testing.T) {
	rec := &recorder{}
	var pages, items []int
	cfg := Config{
		PageSize: 2,
		Sleep:    rec.sleep,
		OnPage: func(page, n int) {
			pages = append(pages, page)
			items = append(items, n)
		},
	}

	if _, err := Collect(context.Background(), cfg, rec.pageFunc(sourceOf(3))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(pages, []int{1, 2}) || !reflect.DeepEqual(items, []int{2, 1}) {
		t.Fatalf("hook mismatch: pages=%v items=%v", pages, items)
	}
}

func TestCollectNilFunc(t *testing.T) {
	if _, err := Collect[int](context.Background(), DefaultConfig(), nil); err == nil {
		t.Fatalf("expected error for nil page func")
	}
}
