package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"feeScope/internal/model"
)

// Store provides Postgres persistence for daily stats.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// PutDailyRecords implements storage.Sink.
func (s *Store) PutDailyRecords(ctx context.Context, records []model.DailyRecord) error {
	return s.UpsertDailyStats(ctx, records)
}

// UpsertDailyStats inserts or replaces one row per (chain, start_of_day).
func (s *Store) UpsertDailyStats(ctx context.Context, records []model.DailyRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, rec := range records {
		summary, err := json.Marshal(rec.Summary)
		if err != nil {
			return fmt.Errorf("marshal summary: %w", err)
		}
		computedAt, err := time.Parse(time.RFC3339Nano, rec.ComputedAt)
		if err != nil {
			return fmt.Errorf("parse computed_at %q: %w", rec.ComputedAt, err)
		}
		legacy, cl := rec.Metrics.Legacy, rec.Metrics.CL
		batch.Queue(`
			INSERT INTO daily_stats (
				chain, start_of_day, block,
				legacy_volume_usd, legacy_fees_usd, legacy_protocol_revenue_usd,
				legacy_holder_fee_revenue_usd, legacy_bribe_revenue_usd,
				cl_volume_usd, cl_fees_usd, cl_protocol_revenue_usd,
				cl_holder_fee_revenue_usd, cl_bribe_revenue_usd,
				reported_pool_type, summary, computed_at, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,now(),now())
			ON CONFLICT (chain, start_of_day)
			DO UPDATE SET
				block = EXCLUDED.block,
				legacy_volume_usd = EXCLUDED.legacy_volume_usd,
				legacy_fees_usd = EXCLUDED.legacy_fees_usd,
				legacy_protocol_revenue_usd = EXCLUDED.legacy_protocol_revenue_usd,
				legacy_holder_fee_revenue_usd = EXCLUDED.legacy_holder_fee_revenue_usd,
				legacy_bribe_revenue_usd = EXCLUDED.legacy_bribe_revenue_usd,
				cl_volume_usd = EXCLUDED.cl_volume_usd,
				cl_fees_usd = EXCLUDED.cl_fees_usd,
				cl_protocol_revenue_usd = EXCLUDED.cl_protocol_revenue_usd,
				cl_holder_fee_revenue_usd = EXCLUDED.cl_holder_fee_revenue_usd,
				cl_bribe_revenue_usd = EXCLUDED.cl_bribe_revenue_usd,
				reported_pool_type = EXCLUDED.reported_pool_type,
				summary = EXCLUDED.summary,
				computed_at = EXCLUDED.computed_at,
				updated_at = now()
		`,
			string(rec.Chain),
			rec.StartOfDay,
			int64(rec.Block),
			legacy.VolumeUSD,
			legacy.FeesUSD,
			legacy.ProtocolRevenueUSD,
			legacy.HolderFeeRevenueUSD,
			legacy.BribeRevenueUSD,
			cl.VolumeUSD,
			cl.FeesUSD,
			cl.ProtocolRevenueUSD,
			cl.HolderFeeRevenueUSD,
			cl.BribeRevenueUSD,
			string(rec.ReportedFor),
			summary,
			computedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for _, rec := range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert daily stats %s/%d: %w", rec.Chain, rec.StartOfDay, err)
		}
	}
	return nil
}

// LoadState returns last_processed_ts for a name.
func (s *Store) LoadState(ctx context.Context, name string) (int64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var ts int64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_ts FROM indexer_state WHERE name=$1`, name)
	if err := row.Scan(&ts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return ts, true, nil
}

// SaveState upserts last_processed_ts for a name.
func (s *Store) SaveState(ctx context.Context, name string, ts int64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO indexer_state (name, last_processed_ts, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_ts = EXCLUDED.last_processed_ts, updated_at = now()
	`, name, ts)
	return err
}
