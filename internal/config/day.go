package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"feeScope/internal/model"
)

// ParseDay parses a day start given as unix seconds, RFC3339 or YYYY-MM-DD.
// An empty input returns 0. The result must be a UTC midnight.
func ParseDay(input string) (int64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, nil
	}

	var ts int64
	switch {
	case isNumeric(input):
		val, err := strconv.ParseInt(input, 10, 64)
		if err != nil {
			return 0, err
		}
		ts = val
	case len(input) == len(time.DateOnly):
		tm, err := time.Parse(time.DateOnly, input)
		if err != nil {
			return 0, err
		}
		ts = tm.Unix()
	default:
		tm, err := time.Parse(time.RFC3339, input)
		if err != nil {
			return 0, err
		}
		ts = tm.Unix()
	}

	if ts%model.SecondsPerDay != 0 {
		return 0, fmt.Errorf("%w: %s", model.ErrNotDayAligned, input)
	}
	return ts, nil
}

// LastCompletedDay returns the start of the UTC day before now.
func LastCompletedDay(now time.Time) int64 {
	return model.StartOfDay(now.Unix()) - model.SecondsPerDay
}

func isNumeric(input string) bool {
	for _, r := range input {
		if r < '0' || r > '9' {
			return false
		}
	}
	return input != ""
}
