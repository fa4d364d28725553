// Package analytics derives rolling averages and trend classifications from
// stored price observations. The computations mirror the SQL window queries
// the database used to run: a row-count window for rolling averages and a
// calendar-date window for trend detection. Partial windows shrink to the
// available rows instead of failing.
package analytics

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"crypto-tracker/internal/storage"
)

// ErrInvalidWindow indicates a non-positive window size.
var ErrInvalidWindow = errors.New("analytics: window size must be positive")

// DefaultWindow is the rolling window applied when the caller does not
// specify one.
const DefaultWindow = 7

// RollingAverage pairs an observation with its trailing row-window means.
type RollingAverage struct {
	CoinID           string
	Timestamp        time.Time
	PriceUSD         decimal.Decimal
	RollingAvgPrice  decimal.Decimal
	PriceChangePct   *decimal.Decimal
	RollingAvgChange *decimal.Decimal
}

// RollingAverages computes trailing means over the last `window` rows for
// each observation, in input order. The window counts rows, not calendar
// days: irregular polling density changes the result and that is intended.
// The change average skips null inputs the way SQL AVG does; a window with
// no non-null changes yields a nil average.
func RollingAverages(observations []storage.PriceObservation, window int) ([]RollingAverage, error) {
	if window <= 0 {
		return nil, ErrInvalidWindow
	}

	results := make([]RollingAverage, 0, len(observations))
	for i, obs := range observations {
		start := i - window + 1
		if start < 0 {
			start = 0
		}

		priceSum := decimal.Zero
		changeSum := decimal.Zero
		changeCount := 0
		for _, prev := range observations[start : i+1] {
			priceSum = priceSum.Add(prev.PriceUSD)
			if prev.PriceChangePct != nil {
				changeSum = changeSum.Add(*prev.PriceChangePct)
				changeCount++
			}
		}

		avg := RollingAverage{
			CoinID:          obs.CoinID,
			Timestamp:       obs.ObservedAt,
			PriceUSD:        obs.PriceUSD,
			RollingAvgPrice: priceSum.Div(decimal.NewFromInt(int64(i - start + 1))),
			PriceChangePct:  obs.PriceChangePct,
		}
		if changeCount > 0 {
			changeAvg := changeSum.Div(decimal.NewFromInt(int64(changeCount)))
			avg.RollingAvgChange = &changeAvg
		}
		results = append(results, avg)
	}

	return results, nil
}
