package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	observationColumns = `id,
        coin_id,
        coin_name,
        symbol,
        price_usd,
        market_cap,
        volume_24h,
        price_change_24h,
        price_change_percentage_24h,
        last_updated,
        timestamp`

	insertObservationSQL = `INSERT INTO crypto_prices (
        coin_id,
        coin_name,
        symbol,
        price_usd,
        market_cap,
        volume_24h,
        price_change_24h,
        price_change_percentage_24h,
        last_updated,
        timestamp
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
    );`

	// One row per coin: max timestamp wins, ties broken by highest id.
	latestPricesSQL = `WITH latest_prices AS (
        SELECT
            coin_id,
            MAX(timestamp) AS latest_timestamp
        FROM crypto_prices
        GROUP BY coin_id
    ),
    picked AS (
        SELECT DISTINCT ON (cp.coin_id) cp.id,
            cp.coin_id,
            cp.coin_name,
            cp.symbol,
            cp.price_usd,
            cp.market_cap,
            cp.volume_24h,
            cp.price_change_24h,
            cp.price_change_percentage_24h,
            cp.last_updated,
            cp.timestamp
        FROM crypto_prices cp
        JOIN latest_prices lp
          ON cp.coin_id = lp.coin_id
         AND cp.timestamp = lp.latest_timestamp
        ORDER BY cp.coin_id, cp.id DESC
    )
    SELECT ` + observationColumns + `
    FROM picked
    ORDER BY market_cap DESC NULLS LAST;`

	priceHistorySQL = `SELECT ` + observationColumns + `
    FROM crypto_prices
    WHERE coin_id = $1
      AND timestamp >= NOW() - make_interval(days => $2)
    ORDER BY timestamp, id;`

	listForExportSQL = `SELECT ` + observationColumns + `
    FROM crypto_prices
    ORDER BY timestamp, market_cap DESC NULLS LAST;`

	countObservationsSQL = `SELECT COUNT(*) FROM crypto_prices;`
)

// ObservationStore defines operations for price observation persistence.
type ObservationStore interface {
	InsertObservations(ctx context.Context, observations []PriceObservation) error
	LatestPrices(ctx context.Context) ([]PriceObservation, error)
	PriceHistory(ctx context.Context, coinID string, days int) ([]PriceObservation, error)
	ListForExport(ctx context.Context) ([]PriceObservation, error)
	CountObservations(ctx context.Context) (int64, error)
}

// Store provides access to the crypto_prices table.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// InsertObservations appends one row per observation in a single batch.
// The table is append-only; there is deliberately no update path.
func (s *Store) InsertObservations(ctx context.Context, observations []PriceObservation) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if len(observations) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, obs := range observations {
		batch.Queue(insertObservationSQL,
			obs.CoinID,
			obs.CoinName,
			obs.Symbol,
			obs.PriceUSD.String(),
			decimalOrNil(obs.MarketCap),
			decimalOrNil(obs.Volume24h),
			decimalOrNil(obs.PriceChange24h),
			decimalOrNil(obs.PriceChangePct),
			obs.LastUpdated,
			obs.ObservedAt,
		)
	}

	results := pool.SendBatch(ctx, batch)
	defer results.Close()

	for range observations {
		if _, execErr := results.Exec(); execErr != nil {
			return fmt.Errorf("insert observation: %w", execErr)
		}
	}
	return nil
}

// LatestPrices returns exactly one observation per coin, ordered by market
// cap descending with nulls last. An empty table yields an empty slice.
func (s *Store) LatestPrices(ctx context.Context) ([]PriceObservation, error) {
	return s.queryObservations(ctx, latestPricesSQL)
}

// PriceHistory returns all observations for a coin within the trailing day
// window, ascending by timestamp. days must already be validated positive.
func (s *Store) PriceHistory(ctx context.Context, coinID string, days int) ([]PriceObservation, error) {
	return s.queryObservations(ctx, priceHistorySQL, coinID, days)
}

// ListForExport returns every observation ordered for visualization exports.
func (s *Store) ListForExport(ctx context.Context) ([]PriceObservation, error) {
	return s.queryObservations(ctx, listForExportSQL)
}

// CountObservations counts stored rows.
func (s *Store) CountObservations(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countObservationsSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count observations: %w", scanErr)
	}
	return count, nil
}

func (s *Store) queryObservations(ctx context.Context, query string, args ...any) ([]PriceObservation, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, query, args...)
	if queryErr != nil {
		return nil, fmt.Errorf("query observations: %w", queryErr)
	}
	defer rows.Close()

	observations := make([]PriceObservation, 0)
	for rows.Next() {
		obs, scanErr := scanObservation(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		observations = append(observations, obs)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return observations, nil
}

func scanObservation(rows pgx.Rows) (PriceObservation, error) {
	var (
		id          int64
		coinID      string
		coinName    string
		symbol      string
		priceStr    string
		marketCap   sql.NullString
		volume      sql.NullString
		change      sql.NullString
		changePct   sql.NullString
		lastUpdated time.Time
		observedAt  time.Time
	)

	if err := rows.Scan(
		&id,
		&coinID,
		&coinName,
		&symbol,
		&priceStr,
		&marketCap,
		&volume,
		&change,
		&changePct,
		&lastUpdated,
		&observedAt,
	); err != nil {
		return PriceObservation{}, err
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return PriceObservation{}, fmt.Errorf("parse price_usd: %w", err)
	}

	obs := PriceObservation{
		ID:          id,
		CoinID:      coinID,
		CoinName:    coinName,
		Symbol:      symbol,
		PriceUSD:    price,
		LastUpdated: lastUpdated,
		ObservedAt:  observedAt,
	}

	if obs.MarketCap, err = nullableDecimal(marketCap); err != nil {
		return PriceObservation{}, fmt.Errorf("parse market_cap: %w", err)
	}
	if obs.Volume24h, err = nullableDecimal(volume); err != nil {
		return PriceObservation{}, fmt.Errorf("parse volume_24h: %w", err)
	}
	if obs.PriceChange24h, err = nullableDecimal(change); err != nil {
		return PriceObservation{}, fmt.Errorf("parse price_change_24h: %w", err)
	}
	if obs.PriceChangePct, err = nullableDecimal(changePct); err != nil {
		return PriceObservation{}, fmt.Errorf("parse price_change_percentage_24h: %w", err)
	}

	return obs, nil
}

func nullableDecimal(v sql.NullString) (*decimal.Decimal, error) {
	if !v.Valid {
		return nil, nil
	}
	parsed, err := decimal.NewFromString(v.String)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func decimalOrNil(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}
