package postgres

import "context"

const migrationSQL = `
CREATE TABLE IF NOT EXISTS daily_stats (
    chain TEXT NOT NULL,
    start_of_day BIGINT NOT NULL,
    block BIGINT NOT NULL,
    legacy_volume_usd NUMERIC NOT NULL DEFAULT 0,
    legacy_fees_usd NUMERIC NOT NULL DEFAULT 0,
    legacy_protocol_revenue_usd NUMERIC NOT NULL DEFAULT 0,
    legacy_holder_fee_revenue_usd NUMERIC NOT NULL DEFAULT 0,
    legacy_bribe_revenue_usd NUMERIC NOT NULL DEFAULT 0,
    cl_volume_usd NUMERIC NOT NULL DEFAULT 0,
    cl_fees_usd NUMERIC NOT NULL DEFAULT 0,
    cl_protocol_revenue_usd NUMERIC NOT NULL DEFAULT 0,
    cl_holder_fee_revenue_usd NUMERIC NOT NULL DEFAULT 0,
    cl_bribe_revenue_usd NUMERIC NOT NULL DEFAULT 0,
    reported_pool_type TEXT NOT NULL,
    summary JSONB NOT NULL,
    computed_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (chain, start_of_day)
);

CREATE TABLE IF NOT EXISTS indexer_state (
    name TEXT PRIMARY KEY,
    last_processed_ts BIGINT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate creates the tables the store writes to.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, migrationSQL)
	return err
}
