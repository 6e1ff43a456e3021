package model

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SecondsPerDay is the length of an aggregation window.
const SecondsPerDay int64 = 24 * 60 * 60

// ErrNotDayAligned is returned when a timestamp is not a UTC midnight.
var ErrNotDayAligned = errors.New("timestamp is not aligned to a UTC day")

// BlockResolver returns the block used to pin point-in-time queries.
type BlockResolver func(ctx context.Context) (uint64, error)

// FetchOptions describes one daily computation.
type FetchOptions struct {
	Chain      Chain
	StartOfDay int64
	StartBlock BlockResolver
}

// Window returns the half-open [from, to) range covered by the day.
func (o FetchOptions) Window() DayWindow {
	return DayWindow{From: o.StartOfDay, To: o.StartOfDay + SecondsPerDay}
}

// Validate checks the invariants every fetch relies on.
func (o FetchOptions) Validate() error {
	if o.Chain == "" {
		return fmt.Errorf("chain is required")
	}
	if o.StartOfDay < 0 || o.StartOfDay%SecondsPerDay != 0 {
		return fmt.Errorf("%w: %d", ErrNotDayAligned, o.StartOfDay)
	}
	if o.StartBlock == nil {
		return fmt.Errorf("start block resolver is required")
	}
	return nil
}

// DayWindow is a [From, To) unix second range.
type DayWindow struct {
	From int64
	To   int64
}

// StartOfDay truncates a unix timestamp to its UTC midnight.
func StartOfDay(ts int64) int64 {
	return ts - ((ts%SecondsPerDay)+SecondsPerDay)%SecondsPerDay
}

// DayTime renders a day start as a UTC time.
func DayTime(startOfDay int64) time.Time {
	return time.Unix(startOfDay, 0).UTC()
}
