package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"crypto-tracker/internal/storage"
)

// Direction labels for a single day's price movement.
const (
	DirectionUp        = "up"
	DirectionDown      = "down"
	DirectionUnchanged = "unchanged"
)

// Comparison labels against the trailing 7-day average.
const (
	AboveAverage = "above_average"
	BelowAverage = "below_average"
)

// Market trend labels.
const (
	TrendBullish = "bullish"
	TrendBearish = "bearish"
	TrendNeutral = "neutral"
)

// trendWindow is the trailing calendar-date bucket count used for both the
// rolling average and the up/down vote. The bullish/bearish vote needs at
// least trendThreshold matching days, an absolute count: short partial
// windows at the start of a series classify neutral even when unanimous.
const (
	trendWindow    = 7
	trendThreshold = 4
)

// TrendPoint is one classified calendar date for a coin.
type TrendPoint struct {
	CoinID         string
	Date           time.Time
	AvgDailyPrice  decimal.Decimal
	DailyChange    decimal.Decimal
	DailyDirection string
	Rolling7DayAvg decimal.Decimal
	AvgComparison  string
	MarketTrend    string
}

type dailyBucket struct {
	date  time.Time
	price decimal.Decimal
}

// MarketTrend buckets observations into calendar dates (UTC), derives daily
// changes and trailing 7-date averages, and classifies each date. The first
// bucketed date has no previous day and is dropped from the output; the
// up/down counting windows run over the remaining sequence. Observations are
// expected to be pre-filtered to the requested day range.
func MarketTrend(observations []storage.PriceObservation) []TrendPoint {
	if len(observations) == 0 {
		return []TrendPoint{}
	}

	coinID := observations[0].CoinID
	buckets := bucketByDate(observations)
	if len(buckets) < 2 {
		return []TrendPoint{}
	}

	// rolling 7-date price average is computed before the first date is
	// dropped, so its window still sees that bucket
	rolling := make([]decimal.Decimal, len(buckets))
	for i := range buckets {
		start := i - trendWindow + 1
		if start < 0 {
			start = 0
		}
		sum := decimal.Zero
		for _, b := range buckets[start : i+1] {
			sum = sum.Add(b.price)
		}
		rolling[i] = sum.Div(decimal.NewFromInt(int64(i - start + 1)))
	}

	points := make([]TrendPoint, 0, len(buckets)-1)
	for i := 1; i < len(buckets); i++ {
		change := buckets[i].price.Sub(buckets[i-1].price)
		point := TrendPoint{
			CoinID:         coinID,
			Date:           buckets[i].date,
			AvgDailyPrice:  buckets[i].price,
			DailyChange:    change,
			DailyDirection: classifyDirection(change),
			Rolling7DayAvg: rolling[i],
		}
		if buckets[i].price.GreaterThan(rolling[i]) {
			point.AvgComparison = AboveAverage
		} else {
			point.AvgComparison = BelowAverage
		}
		points = append(points, point)
	}

	for i := range points {
		start := i - trendWindow + 1
		if start < 0 {
			start = 0
		}
		up, down := 0, 0
		for _, p := range points[start : i+1] {
			switch p.DailyDirection {
			case DirectionUp:
				up++
			case DirectionDown:
				down++
			}
		}
		switch {
		case up >= trendThreshold:
			points[i].MarketTrend = TrendBullish
		case down >= trendThreshold:
			points[i].MarketTrend = TrendBearish
		default:
			points[i].MarketTrend = TrendNeutral
		}
	}

	return points
}

func classifyDirection(change decimal.Decimal) string {
	switch change.Sign() {
	case 1:
		return DirectionUp
	case -1:
		return DirectionDown
	default:
		return DirectionUnchanged
	}
}

// bucketByDate averages price_usd per UTC calendar date, ascending.
func bucketByDate(observations []storage.PriceObservation) []dailyBucket {
	type accum struct {
		sum   decimal.Decimal
		count int64
	}

	byDate := make(map[time.Time]*accum)
	for _, obs := range observations {
		t := obs.ObservedAt.UTC()
		date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		acc, ok := byDate[date]
		if !ok {
			acc = &accum{}
			byDate[date] = acc
		}
		acc.sum = acc.sum.Add(obs.PriceUSD)
		acc.count++
	}

	buckets := make([]dailyBucket, 0, len(byDate))
	for date, acc := range byDate {
		buckets = append(buckets, dailyBucket{
			date:  date,
			price: acc.sum.Div(decimal.NewFromInt(acc.count)),
		})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].date.Before(buckets[j].date)
	})
	return buckets
}
