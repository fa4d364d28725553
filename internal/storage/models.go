package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceObservation represents one persisted market snapshot for a coin.
// Rows are append-only; nullable columns map to pointers.
type PriceObservation struct {
	ID             int64
	CoinID         string
	CoinName       string
	Symbol         string
	PriceUSD       decimal.Decimal
	MarketCap      *decimal.Decimal
	Volume24h      *decimal.Decimal
	PriceChange24h *decimal.Decimal
	PriceChangePct *decimal.Decimal
	LastUpdated    time.Time
	ObservedAt     time.Time
}
