package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	chart "github.com/wcharczuk/go-chart/v2"

	"crypto-tracker/internal/analytics"
	"crypto-tracker/internal/storage"
)

// Export writes stored observations as CSV and/or renders a per-coin price
// chart as PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}
	if opts.PNGPath != "" {
		if err := validateCoinDays(opts.CoinID, opts.Days); err != nil {
			return err
		}
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if opts.CSVPath != "" {
		if err := a.exportCSV(ctx, store, opts); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := a.exportPNG(ctx, store, opts); err != nil {
			return err
		}
	}

	return nil
}

func (a *App) exportCSV(ctx context.Context, store *storage.Store, opts ExportOptions) error {
	observations, err := store.ListForExport(ctx)
	if err != nil {
		return err
	}
	if len(observations) == 0 {
		a.Logger.Info().Msg("no observations found for export")
		return nil
	}

	downsampled := downsampleObservations(observations, opts.MaxPoints)
	a.Logger.Info().
		Int("total", len(observations)).
		Int("exported", len(downsampled)).
		Str("path", opts.CSVPath).
		Msg("exporting observations")

	return writeObservationsCSV(opts.CSVPath, downsampled)
}

func (a *App) exportPNG(ctx context.Context, store *storage.Store, opts ExportOptions) error {
	history, err := store.PriceHistory(ctx, opts.CoinID, opts.Days)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		a.Logger.Info().Str("coin_id", opts.CoinID).Msg("no observations found for chart")
		return nil
	}

	averages, err := analytics.RollingAverages(history, analytics.DefaultWindow)
	if err != nil {
		return err
	}

	downsampled := downsampleAverages(averages, opts.MaxPoints)
	a.Logger.Info().
		Str("coin_id", opts.CoinID).
		Int("points", len(downsampled)).
		Str("path", opts.PNGPath).
		Msg("rendering price chart")

	return writePriceChartPNG(opts.PNGPath, opts.CoinID, downsampled)
}

func downsampleObservations(observations []storage.PriceObservation, max int) []storage.PriceObservation {
	if max <= 0 || len(observations) <= max {
		return observations
	}

	result := make([]storage.PriceObservation, 0, max)
	step := float64(len(observations)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(observations) {
			idx = len(observations) - 1
		}
		result = append(result, observations[idx])
	}
	return result
}

func downsampleAverages(averages []analytics.RollingAverage, max int) []analytics.RollingAverage {
	if max <= 0 || len(averages) <= max {
		return averages
	}

	result := make([]analytics.RollingAverage, 0, max)
	step := float64(len(averages)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(averages) {
			idx = len(averages) - 1
		}
		result = append(result, averages[idx])
	}
	return result
}

func writeObservationsCSV(path string, observations []storage.PriceObservation) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"coin_id", "coin_name", "symbol", "price_usd", "market_cap", "volume_24h",
		"price_change_24h", "price_change_percentage_24h", "last_updated", "timestamp",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, obs := range observations {
		record := []string{
			obs.CoinID,
			obs.CoinName,
			obs.Symbol,
			obs.PriceUSD.String(),
			nullableString(obs.MarketCap),
			nullableString(obs.Volume24h),
			nullableString(obs.PriceChange24h),
			nullableString(obs.PriceChangePct),
			obs.LastUpdated.UTC().Format(time.RFC3339),
			obs.ObservedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writePriceChartPNG(path, coinID string, averages []analytics.RollingAverage) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(averages))
	price := make([]float64, len(averages))
	rolling := make([]float64, len(averages))

	for i, avg := range averages {
		x[i] = avg.Timestamp
		price[i] = avg.PriceUSD.InexactFloat64()
		rolling[i] = avg.RollingAvgPrice.InexactFloat64()
	}

	priceFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.2f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           fmt.Sprintf("%s price (USD)", coinID),
			ValueFormatter: priceFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Price",
				XValues: x,
				YValues: price,
			},
			chart.TimeSeries{
				Name:    fmt.Sprintf("%d-row avg", analytics.DefaultWindow),
				XValues: x,
				YValues: rolling,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func nullableString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
