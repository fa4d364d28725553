package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"crypto-tracker/internal/storage"
)

type stubStore struct {
	latest  []storage.PriceObservation
	history []storage.PriceObservation
	err     error
}

func (s *stubStore) InsertObservations(ctx context.Context, observations []storage.PriceObservation) error {
	return s.err
}

func (s *stubStore) LatestPrices(ctx context.Context) ([]storage.PriceObservation, error) {
	return s.latest, s.err
}

func (s *stubStore) PriceHistory(ctx context.Context, coinID string, days int) ([]storage.PriceObservation, error) {
	return s.history, s.err
}

func (s *stubStore) ListForExport(ctx context.Context) ([]storage.PriceObservation, error) {
	return nil, s.err
}

func (s *stubStore) CountObservations(ctx context.Context) (int64, error) {
	return 0, s.err
}

func testApp() *App {
	return &App{Logger: zerolog.Nop()}
}

func TestRenderLatestUnreachableStorePrintsNoData(t *testing.T) {
	store := &stubStore{err: errors.New("connection refused")}
	var out bytes.Buffer

	if err := testApp().renderLatest(context.Background(), store, &out); err != nil {
		t.Fatalf("a failed read must not propagate: %v", err)
	}
	if !strings.Contains(out.String(), "no price data found") {
		t.Fatalf("expected no-data message, got %q", out.String())
	}
}

func TestRenderHistoryUnreachableStorePrintsNoData(t *testing.T) {
	store := &stubStore{err: errors.New("connection refused")}
	var out bytes.Buffer
	opts := HistoryOptions{CoinID: "bitcoin", Days: 30}

	if err := testApp().renderHistory(context.Background(), store, &out, opts); err != nil {
		t.Fatalf("a failed read must not propagate: %v", err)
	}
	if !strings.Contains(out.String(), "no observations for bitcoin") {
		t.Fatalf("expected no-data message, got %q", out.String())
	}
}

func TestRenderRollingUnreachableStorePrintsNoData(t *testing.T) {
	store := &stubStore{err: errors.New("connection refused")}
	var out bytes.Buffer
	opts := RollingOptions{CoinID: "bitcoin", Days: 30, Window: 7}

	if err := testApp().renderRolling(context.Background(), store, &out, opts); err != nil {
		t.Fatalf("a failed read must not propagate: %v", err)
	}
	if !strings.Contains(out.String(), "no observations for bitcoin") {
		t.Fatalf("expected no-data message, got %q", out.String())
	}
}

func TestRenderTrendUnreachableStorePrintsNoData(t *testing.T) {
	store := &stubStore{err: errors.New("connection refused")}
	var out bytes.Buffer
	opts := TrendOptions{CoinID: "bitcoin", Days: 30}

	if err := testApp().renderTrend(context.Background(), store, &out, opts); err != nil {
		t.Fatalf("a failed read must not propagate: %v", err)
	}
	if !strings.Contains(out.String(), "not enough data to classify bitcoin") {
		t.Fatalf("expected no-data message, got %q", out.String())
	}
}

func TestRenderLatestPrintsRows(t *testing.T) {
	mcap := decimal.NewFromInt(1_280_000_000)
	store := &stubStore{latest: []storage.PriceObservation{
		{
			CoinID:     "bitcoin",
			CoinName:   "Bitcoin",
			Symbol:     "btc",
			PriceUSD:   decimal.NewFromFloat(65000.12),
			MarketCap:  &mcap,
			ObservedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		},
	}}
	var out bytes.Buffer

	if err := testApp().renderLatest(context.Background(), store, &out); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Bitcoin") || !strings.Contains(got, "BTC") {
		t.Fatalf("expected bitcoin row, got %q", got)
	}
	if !strings.Contains(got, "65000.1200") {
		t.Fatalf("expected formatted price, got %q", got)
	}
}
