package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"crypto-tracker/internal/analytics"
	"crypto-tracker/internal/storage"
)

// Latest prints the most recent observation for every tracked coin, ordered
// by market cap descending.
func (a *App) Latest(ctx context.Context) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	return a.renderLatest(ctx, store, os.Stdout)
}

func (a *App) renderLatest(ctx context.Context, store storage.ObservationStore, out io.Writer) error {
	latest, err := store.LatestPrices(ctx)
	if err != nil {
		// an unreachable store reads as an empty one
		a.Logger.Error().Err(err).Msg("latest price query failed")
		latest = nil
	}
	if len(latest) == 0 {
		fmt.Fprintln(out, "no price data found")
		return nil
	}

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Coin\tSymbol\tPrice (USD)\tMarket Cap\t24h %\tObserved (UTC)")
	for _, obs := range latest {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\n",
			obs.CoinName,
			strings.ToUpper(obs.Symbol),
			formatDecimal(obs.PriceUSD, 4),
			formatNullableDecimal(obs.MarketCap, 0),
			formatNullableDecimal(obs.PriceChangePct, 2),
			obs.ObservedAt.UTC().Format(time.RFC3339),
		)
	}
	return writer.Flush()
}

// History prints all observations for a coin within the trailing day window.
func (a *App) History(ctx context.Context, opts HistoryOptions) error {
	if err := validateCoinDays(opts.CoinID, opts.Days); err != nil {
		return err
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	return a.renderHistory(ctx, store, os.Stdout, opts)
}

func (a *App) renderHistory(ctx context.Context, store storage.ObservationStore, out io.Writer, opts HistoryOptions) error {
	history := a.queryHistory(ctx, store, opts.CoinID, opts.Days)
	if len(history) == 0 {
		fmt.Fprintf(out, "no observations for %s in the last %d days\n", opts.CoinID, opts.Days)
		return nil
	}

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Observed (UTC)\tPrice (USD)\t24h %")
	for _, obs := range history {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\n",
			obs.ObservedAt.UTC().Format(time.RFC3339),
			formatDecimal(obs.PriceUSD, 4),
			formatNullableDecimal(obs.PriceChangePct, 2),
		)
	}
	return writer.Flush()
}

// Rolling prints trailing row-window averages for a coin.
func (a *App) Rolling(ctx context.Context, opts RollingOptions) error {
	if err := validateCoinDays(opts.CoinID, opts.Days); err != nil {
		return err
	}
	if opts.Window <= 0 {
		return fmt.Errorf("window must be a positive integer")
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	return a.renderRolling(ctx, store, os.Stdout, opts)
}

func (a *App) renderRolling(ctx context.Context, store storage.ObservationStore, out io.Writer, opts RollingOptions) error {
	history := a.queryHistory(ctx, store, opts.CoinID, opts.Days)

	averages, err := analytics.RollingAverages(history, opts.Window)
	if err != nil {
		return err
	}
	if len(averages) == 0 {
		fmt.Fprintf(out, "no observations for %s in the last %d days\n", opts.CoinID, opts.Days)
		return nil
	}

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "Observed (UTC)\tPrice (USD)\tAvg %d-row\t24h %%\tAvg 24h %%\n", opts.Window)
	for _, avg := range averages {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\n",
			avg.Timestamp.UTC().Format(time.RFC3339),
			formatDecimal(avg.PriceUSD, 4),
			formatDecimal(avg.RollingAvgPrice, 4),
			formatNullableDecimal(avg.PriceChangePct, 2),
			formatNullableDecimal(avg.RollingAvgChange, 2),
		)
	}
	return writer.Flush()
}

// Trend prints the daily trend classification for a coin.
func (a *App) Trend(ctx context.Context, opts TrendOptions) error {
	if err := validateCoinDays(opts.CoinID, opts.Days); err != nil {
		return err
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	return a.renderTrend(ctx, store, os.Stdout, opts)
}

func (a *App) renderTrend(ctx context.Context, store storage.ObservationStore, out io.Writer, opts TrendOptions) error {
	history := a.queryHistory(ctx, store, opts.CoinID, opts.Days)

	points := analytics.MarketTrend(history)
	if len(points) == 0 {
		fmt.Fprintf(out, "not enough data to classify %s over the last %d days\n", opts.CoinID, opts.Days)
		return nil
	}

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Date\tAvg Price\tChange\tDirection\t7-day Avg\tvs Avg\tTrend")
	for _, p := range points {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.Date.Format("2006-01-02"),
			formatDecimal(p.AvgDailyPrice, 4),
			formatDecimal(p.DailyChange, 4),
			p.DailyDirection,
			formatDecimal(p.Rolling7DayAvg, 4),
			p.AvgComparison,
			p.MarketTrend,
		)
	}
	return writer.Flush()
}

// queryHistory fetches the history window for the viewers. A failed read is
// logged and treated as an empty window so the commands degrade to their
// no-data output instead of aborting.
func (a *App) queryHistory(ctx context.Context, store storage.ObservationStore, coinID string, days int) []storage.PriceObservation {
	history, err := store.PriceHistory(ctx, coinID, days)
	if err != nil {
		a.Logger.Error().Err(err).Str("coin_id", coinID).Msg("price history query failed")
		return nil
	}
	return history
}

func validateCoinDays(coinID string, days int) error {
	if strings.TrimSpace(coinID) == "" {
		return fmt.Errorf("coin id must not be empty")
	}
	if days <= 0 {
		return fmt.Errorf("days must be a positive integer")
	}
	return nil
}

func formatDecimal(d decimal.Decimal, places int32) string {
	return d.StringFixed(places)
}

func formatNullableDecimal(d *decimal.Decimal, places int32) string {
	if d == nil {
		return "-"
	}
	return d.StringFixed(places)
}
