package storage

import (
	"context"
	"errors"

	"feeScope/internal/model"
)

// Sink defines a target for computed daily records.
type Sink interface {
	PutDailyRecords(ctx context.Context, records []model.DailyRecord) error
}

// MultiSink writes every batch to each sink in order.
type MultiSink []Sink

func (m MultiSink) PutDailyRecords(ctx context.Context, records []model.DailyRecord) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.PutDailyRecords(ctx, records); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
