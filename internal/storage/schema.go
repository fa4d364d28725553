package storage

import (
	"context"
	"fmt"
)

const (
	createPricesTableSQL = `CREATE TABLE IF NOT EXISTS crypto_prices (
        id BIGSERIAL PRIMARY KEY,
        coin_id VARCHAR(50) NOT NULL,
        coin_name VARCHAR(100) NOT NULL,
        symbol VARCHAR(20) NOT NULL,
        price_usd NUMERIC(24, 12) NOT NULL,
        market_cap NUMERIC(24, 2),
        volume_24h NUMERIC(24, 2),
        price_change_24h NUMERIC(12, 6),
        price_change_percentage_24h NUMERIC(12, 6),
        last_updated TIMESTAMPTZ NOT NULL,
        timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
    );`

	createCoinTimestampIndexSQL = `CREATE INDEX IF NOT EXISTS idx_coin_timestamp
    ON crypto_prices (coin_id, timestamp);`
)

// EnsureSchema creates the price table and supporting index if absent.
// Idempotent; a failure here is fatal to startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, createPricesTableSQL); err != nil {
		return fmt.Errorf("create crypto_prices table: %w", err)
	}
	if _, err := pool.Exec(ctx, createCoinTimestampIndexSQL); err != nil {
		return fmt.Errorf("create coin/timestamp index: %w", err)
	}
	return nil
}
