package paginate

import (
	"context"
	"fmt"
	"time"
)

const (
	DefaultPageSize = 1000
	DefaultDelay    = 200 * time.Millisecond
)

// PageFunc fetches up to first items starting at offset skip.
type PageFunc[T any] func(ctx context.Context, first, skip int) ([]T, error)

// SleepFunc waits between two page fetches.
type SleepFunc func(ctx context.Context, d time.Duration) error

// PageHook is invoked after every fetched page.
type PageHook func(page, items int)

// Config controls pagination.
type Config struct {
	PageSize int
	Delay    time.Duration
	Sleep    SleepFunc
	OnPage   PageHook
}

// DefaultConfig returns the 1000 items / 200ms policy.
func DefaultConfig() Config {
	return Config{PageSize: DefaultPageSize, Delay: DefaultDelay, Sleep: Sleep}
}

func (c Config) normalize() Config {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.Delay < 0 {
		c.Delay = 0
	}
	if c.Sleep == nil {
		c.Sleep = Sleep
	}
	return c
}

// pager is the {offset, accumulated, done} state of one pagination run.
type pager[T any] struct {
	cfg    Config
	fetch  PageFunc[T]
	offset int
	pages  int
	items  []T
	done   bool
}

func (p *pager[T]) next(ctx context.Context) error {
	if p.pages > 0 {
		if err := p.cfg.Sleep(ctx, p.cfg.Delay); err != nil {
			return err
		}
	}

	page, err := p.fetch(ctx, p.cfg.PageSize, p.offset)
	if err != nil {
		return fmt.Errorf("fetch page %d (skip %d): %w", p.pages, p.offset, err)
	}
	p.pages++
	p.items = append(p.items, page...)
	p.offset += p.cfg.PageSize
	if p.cfg.OnPage != nil {
		p.cfg.OnPage(p.pages, len(page))
	}

	if len(page) < p.cfg.PageSize {
		p.done = true
	}
	return nil
}

// Collect fetches pages until one is shorter than the page size and returns
// every item in page order. Any fetch error aborts the run and discards the
// items gathered so far. There is no upper bound on the number of pages.
func Collect[T any](ctx context.Context, cfg Config, fetch PageFunc[T]) ([]T, error) {
	if fetch == nil {
		return nil, fmt.Errorf("page func is nil")
	}

	p := &pager[T]{cfg: cfg.normalize(), fetch: fetch}
	for !p.done {
		if err := p.next(ctx); err != nil {
			return nil, err
		}
	}

	if p.items == nil {
		return []T{}, nil
	}
	return p.items, nil
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
