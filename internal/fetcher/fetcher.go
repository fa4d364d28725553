package fetcher

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CoinMarket is one market-data record returned by the price feed.
type CoinMarket struct {
	ID             string
	Name           string
	Symbol         string
	CurrentPrice   decimal.Decimal
	MarketCap      *decimal.Decimal
	TotalVolume    *decimal.Decimal
	PriceChange24h *decimal.Decimal
	PriceChangePct *decimal.Decimal
	LastUpdated    time.Time
}

// MarketDataFetcher retrieves current market data for the tracked coins.
type MarketDataFetcher interface {
	FetchMarkets(ctx context.Context) ([]CoinMarket, error)
}
