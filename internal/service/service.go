package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"crypto-tracker/internal/fetcher"
	"crypto-tracker/internal/scheduler"
	"crypto-tracker/internal/storage"
)

// Tracker orchestrates fetching and persistence of price observations.
type Tracker struct {
	scheduler *scheduler.Scheduler
	market    fetcher.MarketDataFetcher
	store     storage.ObservationStore
	logger    zerolog.Logger
}

// New constructs the tracking service.
func New(sched *scheduler.Scheduler, market fetcher.MarketDataFetcher, store storage.ObservationStore, logger zerolog.Logger) *Tracker {
	return &Tracker{
		scheduler: sched,
		market:    market,
		store:     store,
		logger:    logger.With().Str("component", "service").Logger(),
	}
}

// Run begins the polling loop.
func (t *Tracker) Run(ctx context.Context) error {
	if t.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return t.scheduler.Run(ctx, t.PollCycle)
}

// PollCycle executes a single poll: one fetch, one append per returned coin.
// A fetch failure abandons the cycle; there is no retry and no partial
// insert. A storage failure is logged and the cycle is skipped.
func (t *Tracker) PollCycle(ctx context.Context, tick time.Time) error {
	logger := t.logger.With().Str("cycle_id", uuid.NewString()).Logger()

	markets, err := t.market.FetchMarkets(ctx)
	if err != nil {
		return fmt.Errorf("fetch market data: %w", err)
	}
	if len(markets) == 0 {
		logger.Warn().Time("tick", tick).Msg("no market data received")
		return nil
	}

	observedAt := time.Now().UTC()
	observations := make([]storage.PriceObservation, 0, len(markets))
	for _, market := range markets {
		observations = append(observations, storage.PriceObservation{
			CoinID:         market.ID,
			CoinName:       market.Name,
			Symbol:         market.Symbol,
			PriceUSD:       market.CurrentPrice,
			MarketCap:      market.MarketCap,
			Volume24h:      market.TotalVolume,
			PriceChange24h: market.PriceChange24h,
			PriceChangePct: market.PriceChangePct,
			LastUpdated:    market.LastUpdated,
			ObservedAt:     observedAt,
		})
	}

	if t.store != nil {
		if err := t.store.InsertObservations(ctx, observations); err != nil {
			logger.Error().Err(err).Time("tick", tick).Msg("failed to store observations")
			return nil
		}
	}

	logger.Info().Time("tick", tick).
		Int("coins", len(observations)).
		Msg("observations recorded")
	return nil
}
