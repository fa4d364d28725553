package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const marketsPath = "/coins/markets"

// CoinGeckoOptions parameterise the market data fetcher.
type CoinGeckoOptions struct {
	BaseURL    string
	VsCurrency string
	Coins      []string
	Timeout    time.Duration
	UserAgent  string
}

// CoinGecko fetches market data from the CoinGecko REST API.
type CoinGecko struct {
	opts    CoinGeckoOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewCoinGecko constructs a market data fetcher.
func NewCoinGecko(opts CoinGeckoOptions, logger zerolog.Logger) *CoinGecko {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.coingecko.com/api/v3"
	}

	return &CoinGecko{
		opts:    opts,
		logger:  logger.With().Str("component", "coingecko_fetcher").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// FetchMarkets retrieves one market record per tracked coin.
func (c *CoinGecko) FetchMarkets(ctx context.Context) ([]CoinMarket, error) {
	if len(c.opts.Coins) == 0 {
		return nil, errors.New("no coins configured")
	}

	vsCurrency := c.opts.VsCurrency
	if vsCurrency == "" {
		vsCurrency = "usd"
	}

	params := url.Values{}
	params.Set("vs_currency", vsCurrency)
	params.Set("ids", strings.Join(c.opts.Coins, ","))
	params.Set("order", "market_cap_desc")
	params.Set("per_page", "100")
	params.Set("page", "1")
	params.Set("sparkline", "false")
	params.Set("price_change_percentage", "24h")

	endpoint := c.baseURL + marketsPath + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "crypto-tracker/1.0")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payloadBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseHTTPError(resp.StatusCode, payloadBytes)
	}

	var records []marketRecord
	if err := json.Unmarshal(payloadBytes, &records); err != nil {
		return nil, fmt.Errorf("decode markets payload: %w", err)
	}

	markets := make([]CoinMarket, 0, len(records))
	for _, rec := range records {
		market, convErr := rec.toCoinMarket()
		if convErr != nil {
			// one malformed record must not sink the whole cycle
			c.logger.Warn().Err(convErr).Str("coin_id", rec.ID).Msg("skipping malformed market record")
			continue
		}
		markets = append(markets, market)
	}

	return markets, nil
}

type marketRecord struct {
	ID             string           `json:"id"`
	Symbol         string           `json:"symbol"`
	Name           string           `json:"name"`
	CurrentPrice   *decimal.Decimal `json:"current_price"`
	MarketCap      *decimal.Decimal `json:"market_cap"`
	TotalVolume    *decimal.Decimal `json:"total_volume"`
	PriceChange24h *decimal.Decimal `json:"price_change_24h"`
	PriceChangePct *decimal.Decimal `json:"price_change_percentage_24h"`
	LastUpdated    string           `json:"last_updated"`
}

func (r marketRecord) toCoinMarket() (CoinMarket, error) {
	if r.ID == "" {
		return CoinMarket{}, errors.New("record missing coin id")
	}
	if r.CurrentPrice == nil {
		return CoinMarket{}, errors.New("record missing current price")
	}

	lastUpdated, err := time.Parse(time.RFC3339Nano, r.LastUpdated)
	if err != nil {
		return CoinMarket{}, fmt.Errorf("parse last_updated: %w", err)
	}

	return CoinMarket{
		ID:             r.ID,
		Name:           r.Name,
		Symbol:         r.Symbol,
		CurrentPrice:   *r.CurrentPrice,
		MarketCap:      r.MarketCap,
		TotalVolume:    r.TotalVolume,
		PriceChange24h: r.PriceChange24h,
		PriceChangePct: r.PriceChangePct,
		LastUpdated:    lastUpdated,
	}, nil
}

type errorResponse struct {
	Error  string `json:"error"`
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		if apiErr.Status.ErrorMessage != "" {
			return fmt.Errorf("coingecko api error (%d): %s", status, apiErr.Status.ErrorMessage)
		}
		if apiErr.Error != "" {
			return fmt.Errorf("coingecko api error (%d): %s", status, apiErr.Error)
		}
	}
	if len(payload) > 0 {
		return fmt.Errorf("coingecko api error (%d): %s", status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("coingecko api error (%d)", status)
}

var _ MarketDataFetcher = (*CoinGecko)(nil)
