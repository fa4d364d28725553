package fetcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestFetchMarketsNoCoins(t *testing.T) {
	c := NewCoinGecko(CoinGeckoOptions{}, noopLogger())
	if _, err := c.FetchMarkets(context.Background()); err == nil {
		t.Fatal("expected error when no coins are configured")
	}
}

func TestFetchMarketsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": map[string]any{"error_code": 429, "error_message": "rate limited"},
		})
	}))
	defer srv.Close()

	c := NewCoinGecko(CoinGeckoOptions{
		BaseURL: srv.URL,
		Coins:   []string{"bitcoin"},
		Timeout: time.Second,
	}, noopLogger())

	if _, err := c.FetchMarkets(context.Background()); err == nil {
		t.Fatal("HTTP 429 should return an error")
	}
}

func TestFetchMarketsMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	}))
	defer srv.Close()

	c := NewCoinGecko(CoinGeckoOptions{
		BaseURL: srv.URL,
		Coins:   []string{"bitcoin"},
		Timeout: time.Second,
	}, noopLogger())

	if _, err := c.FetchMarkets(context.Background()); err == nil {
		t.Fatal("malformed payload should return an error")
	}
}

func TestFetchMarketsSuccess(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{
				"id":                          "bitcoin",
				"symbol":                      "btc",
				"name":                        "Bitcoin",
				"current_price":               65000.12,
				"market_cap":                  1280000000000.0,
				"total_volume":                35000000000.0,
				"price_change_24h":            -120.5,
				"price_change_percentage_24h": -0.18,
				"last_updated":                "2025-03-01T12:34:56.789Z",
			},
			{
				"id":                          "ethereum",
				"symbol":                      "eth",
				"name":                        "Ethereum",
				"current_price":               3400.5,
				"market_cap":                  nil,
				"total_volume":                nil,
				"price_change_24h":            nil,
				"price_change_percentage_24h": nil,
				"last_updated":                "2025-03-01T12:34:56.789Z",
			},
		})
	}))
	defer srv.Close()

	c := NewCoinGecko(CoinGeckoOptions{
		BaseURL:    srv.URL,
		VsCurrency: "usd",
		Coins:      []string{"bitcoin", "ethereum"},
		Timeout:    time.Second,
		UserAgent:  "test",
	}, noopLogger())

	markets, err := c.FetchMarkets(context.Background())
	if err != nil {
		t.Fatalf("successful response should not error: %v", err)
	}
	if len(markets) != 2 {
		t.Fatalf("expected 2 markets, got %d", len(markets))
	}

	if gotQuery["ids"][0] != "bitcoin,ethereum" {
		t.Fatalf("ids query param incorrect: %v", gotQuery["ids"])
	}
	if gotQuery["vs_currency"][0] != "usd" {
		t.Fatalf("vs_currency query param incorrect: %v", gotQuery["vs_currency"])
	}

	btc := markets[0]
	if btc.ID != "bitcoin" || btc.Symbol != "btc" {
		t.Fatalf("unexpected first market: %+v", btc)
	}
	if !btc.CurrentPrice.Equal(decimal.NewFromFloat(65000.12)) {
		t.Fatalf("price %s, want 65000.12", btc.CurrentPrice)
	}
	if btc.MarketCap == nil || btc.PriceChangePct == nil {
		t.Fatal("bitcoin nullable fields should be populated")
	}

	eth := markets[1]
	if eth.MarketCap != nil || eth.TotalVolume != nil || eth.PriceChangePct != nil {
		t.Fatalf("ethereum nullable fields should stay nil: %+v", eth)
	}
}

func TestFetchMarketsSkipsMalformedRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{
				// missing current_price, must be skipped
				"id":           "cardano",
				"symbol":       "ada",
				"name":         "Cardano",
				"last_updated": "2025-03-01T12:34:56.789Z",
			},
			{
				"id":            "bitcoin",
				"symbol":        "btc",
				"name":          "Bitcoin",
				"current_price": 65000.0,
				"last_updated":  "2025-03-01T12:34:56.789Z",
			},
		})
	}))
	defer srv.Close()

	c := NewCoinGecko(CoinGeckoOptions{
		BaseURL: srv.URL,
		Coins:   []string{"cardano", "bitcoin"},
		Timeout: time.Second,
	}, noopLogger())

	markets, err := c.FetchMarkets(context.Background())
	if err != nil {
		t.Fatalf("one bad record must not fail the fetch: %v", err)
	}
	if len(markets) != 1 || markets[0].ID != "bitcoin" {
		t.Fatalf("expected only bitcoin to survive, got %+v", markets)
	}
}
