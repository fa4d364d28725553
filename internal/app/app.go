package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"crypto-tracker/internal/config"
	"crypto-tracker/internal/fetcher"
	"crypto-tracker/internal/scheduler"
	"crypto-tracker/internal/service"
	"crypto-tracker/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newFetcher() fetcher.MarketDataFetcher {
	return fetcher.NewCoinGecko(fetcher.CoinGeckoOptions{
		BaseURL:    a.Config.CoinGecko.BaseURL,
		VsCurrency: a.Config.CoinGecko.VsCurrency,
		Coins:      a.Config.CoinGecko.Coins,
		Timeout:    a.Config.CoinGecko.RequestTimeout,
		UserAgent:  a.Config.CoinGecko.UserAgent,
	}, a.Logger)
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, errors.New("database.dsn not configured")
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// Run executes the long-running tracking service.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	// schema bootstrap failure is the one unrecoverable startup error
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	if count, err := store.CountObservations(ctx); err == nil {
		a.Logger.Info().Int64("stored_observations", count).Msg("storage ready")
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		AlignToStart: a.Config.Scheduler.AlignToBucket,
		StartupDelay: a.Config.Scheduler.StartupDelay,
		TickOnStart:  a.Config.Scheduler.PollOnStart,
	}, a.Logger)

	svc := service.New(sched, a.newFetcher(), store, a.Logger)

	a.Logger.Info().
		Dur("interval", a.Config.Scheduler.Interval).
		Strs("coins", a.Config.CoinGecko.Coins).
		Msg("starting price tracker")
	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("tracker terminated with error")
		return err
	}

	a.Logger.Info().Msg("price tracker stopped")
	return nil
}

// PollOnce runs a single fetch-and-store cycle immediately.
func (a *App) PollOnce(ctx context.Context) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	svc := service.New(nil, a.newFetcher(), store, a.Logger)
	return svc.PollCycle(ctx, time.Now().UTC())
}

// InitDB creates the database schema.
func (a *App) InitDB(ctx context.Context) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	a.Logger.Info().Msg("database schema created/verified")
	return nil
}

// HistoryOptions configure per-coin history queries.
type HistoryOptions struct {
	CoinID string
	Days   int
}

// RollingOptions configure the rolling-average viewer.
type RollingOptions struct {
	CoinID string
	Days   int
	Window int
}

// TrendOptions configure the trend viewer.
type TrendOptions struct {
	CoinID string
	Days   int
}

// ExportOptions hold parameters for exporting stored observations.
type ExportOptions struct {
	CSVPath   string
	PNGPath   string
	CoinID    string
	Days      int
	MaxPoints int
}
