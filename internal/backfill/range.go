package backfill

import (
	"fmt"

	"feeScope/internal/model"
)

// DayRange returns every day start in the inclusive range [from, to].
func DayRange(from, to int64) ([]int64, error) {
	if from%model.SecondsPerDay != 0 {
		return nil, fmt.Errorf("from %d: %w", from, model.ErrNotDayAligned)
	}
	if to%model.SecondsPerDay != 0 {
		return nil, fmt.Errorf("to %d: %w", to, model.ErrNotDayAligned)
	}
	if to < from {
		return nil, fmt.Errorf("to day must be >= from day")
	}

	days := make([]int64, 0, (to-from)/model.SecondsPerDay+1)
	for day := from; day <= to; day += model.SecondsPerDay {
		days = append(days, day)
	}
	return days, nil
}
