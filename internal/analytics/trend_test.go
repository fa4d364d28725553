package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"crypto-tracker/internal/storage"
)

func dailySeries(coin string, start time.Time, prices []float64) []storage.PriceObservation {
	observations := make([]storage.PriceObservation, 0, len(prices))
	for i, price := range prices {
		observations = append(observations, makeObs(coin, start.AddDate(0, 0, i), price))
	}
	return observations
}

func TestMarketTrendEmptyInput(t *testing.T) {
	if points := MarketTrend(nil); len(points) != 0 {
		t.Fatalf("expected empty result, got %d points", len(points))
	}
}

func TestMarketTrendSingleDayDropped(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	points := MarketTrend(dailySeries("bitcoin", start, []float64{100}))
	if len(points) != 0 {
		t.Fatalf("a single bucketed date can never be classified, got %d points", len(points))
	}
}

func TestMarketTrendIncreasingSeries(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	prices := []float64{100, 101, 102, 103, 104, 105, 106, 107, 108, 109}
	points := MarketTrend(dailySeries("bitcoin", start, prices))

	if len(points) != 9 {
		t.Fatalf("expected 9 classified dates (first dropped), got %d", len(points))
	}
	if !points[0].Date.Equal(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("first classified date should be day two, got %s", points[0].Date)
	}

	for i, p := range points {
		if p.DailyDirection != DirectionUp {
			t.Fatalf("point %d: direction %s, want up", i, p.DailyDirection)
		}
	}

	// the vote needs 4 up days: short windows at the start stay neutral
	// even though every day is up
	for i := 0; i < 3; i++ {
		if points[i].MarketTrend != TrendNeutral {
			t.Fatalf("point %d: trend %s, want neutral", i, points[i].MarketTrend)
		}
	}
	for i := 3; i < len(points); i++ {
		if points[i].MarketTrend != TrendBullish {
			t.Fatalf("point %d: trend %s, want bullish", i, points[i].MarketTrend)
		}
	}
}

func TestMarketTrendDecreasingSeries(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	prices := []float64{109, 108, 107, 106, 105, 104, 103, 102, 101, 100}
	points := MarketTrend(dailySeries("bitcoin", start, prices))

	if len(points) != 9 {
		t.Fatalf("expected 9 classified dates, got %d", len(points))
	}
	for i, p := range points {
		if p.DailyDirection != DirectionDown {
			t.Fatalf("point %d: direction %s, want down", i, p.DailyDirection)
		}
	}
	for i := 3; i < len(points); i++ {
		if points[i].MarketTrend != TrendBearish {
			t.Fatalf("point %d: trend %s, want bearish", i, points[i].MarketTrend)
		}
	}
}

func TestMarketTrendFlatDay(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	points := MarketTrend(dailySeries("bitcoin", start, []float64{100, 100, 100}))

	if len(points) != 2 {
		t.Fatalf("expected 2 classified dates, got %d", len(points))
	}
	for i, p := range points {
		if p.DailyDirection != DirectionUnchanged {
			t.Fatalf("point %d: direction %s, want unchanged", i, p.DailyDirection)
		}
		if p.MarketTrend != TrendNeutral {
			t.Fatalf("point %d: trend %s, want neutral", i, p.MarketTrend)
		}
	}
}

func TestMarketTrendBucketsIntradayObservations(t *testing.T) {
	day1 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	observations := []storage.PriceObservation{
		makeObs("bitcoin", day1.Add(6*time.Hour), 90),
		makeObs("bitcoin", day1.Add(18*time.Hour), 110),
		makeObs("bitcoin", day2.Add(12*time.Hour), 120),
	}

	points := MarketTrend(observations)
	if len(points) != 1 {
		t.Fatalf("expected 1 classified date, got %d", len(points))
	}
	// day one averages (90+110)/2 = 100, so day two's change is +20
	if !points[0].DailyChange.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("daily change %s, want 20", points[0].DailyChange)
	}
	if points[0].DailyDirection != DirectionUp {
		t.Fatalf("direction %s, want up", points[0].DailyDirection)
	}
}

func TestMarketTrendRollingAverageSeesDroppedDate(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	points := MarketTrend(dailySeries("bitcoin", start, []float64{100, 101}))

	if len(points) != 1 {
		t.Fatalf("expected 1 classified date, got %d", len(points))
	}
	// the 7-date average is computed before the first date is dropped
	want := decimal.NewFromFloat(100.5)
	if !points[0].Rolling7DayAvg.Equal(want) {
		t.Fatalf("rolling avg %s, want %s", points[0].Rolling7DayAvg, want)
	}
	if points[0].AvgComparison != AboveAverage {
		t.Fatalf("comparison %s, want above_average", points[0].AvgComparison)
	}
}

func TestMarketTrendMixedWeek(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	// directions after the drop: up, down, up, down, up, down, unchanged;
	// no label ever reaches four votes
	prices := []float64{100, 105, 95, 104, 96, 103, 97, 97}
	points := MarketTrend(dailySeries("bitcoin", start, prices))

	if len(points) != 7 {
		t.Fatalf("expected 7 classified dates, got %d", len(points))
	}
	for i, p := range points {
		if p.MarketTrend != TrendNeutral {
			t.Fatalf("point %d: trend %s, want neutral", i, p.MarketTrend)
		}
	}
}
