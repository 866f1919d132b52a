package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"google.golang.org/api/option"

	"sjsage522/pricechecker/config"
	"sjsage522/pricechecker/helpers"
	"sjsage522/pricechecker/internal/pricing"
	"sjsage522/pricechecker/logger"
	"sjsage522/pricechecker/services/cache"
	"sjsage522/pricechecker/services/history"
	"sjsage522/pricechecker/services/metrics"
	"sjsage522/pricechecker/services/publisher"
	"sjsage522/pricechecker/services/sheets"
	"sjsage522/pricechecker/services/worker"
)

func main() {
	// Load environment variables
	godotenv.Load()

	logger.Init()
	log := logger.Default

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("environment", cfg.Environment).
		Dur("fetch_timeout", cfg.FetchTimeout).
		Msg("Starting price checker")

	summary, err := run(ctx, cfg, runOptions{})
	if err != nil {
		stop()
		log.Fatal().Err(err).Msg("Price check failed")
	}

	log.Info().
		Str("run_id", summary.RunID).
		Int("rows", summary.Rows).
		Dur("duration", summary.Duration).
		Msg("Done, check the sheet")
}

// runOptions carries overrides used by tests
type runOptions struct {
	sheetOpts   []option.ClientOption
	fetcherOpts []helpers.FetcherOption
}

// run wires the services, executes one price check and releases everything
func run(ctx context.Context, cfg *config.Config, opts runOptions) (*worker.Summary, error) {
	services, err := initializeServices(ctx, cfg, opts.sheetOpts)
	if err != nil {
		return nil, err
	}
	defer services.Cleanup()

	fetcher := helpers.NewPageFetcher(cfg.FetchTimeout, services.Cache, cfg.RateLimitBlock, opts.fetcherOpts...)
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Warn("Failed to lift rate limit blocks: %v", err)
		}
	}()

	w := worker.NewWorker(
		sheets.NewConfigSource(services.Sheets, cfg.ConfigSheetName),
		pricing.NewChecker(fetcher),
		sheets.NewSink(services.Sheets, cfg.DataSheetName),
		services.Metrics,
		services.Recorders()...,
	)

	summary, runErr := w.Run(ctx)

	if cfg.PushgatewayURL != "" {
		if err := services.Metrics.Push(cfg.PushgatewayURL); err != nil {
			logger.Warn("Failed to push metrics to %s: %v", cfg.PushgatewayURL, err)
		}
	}

	return summary, runErr
}

// Services holds all the initialized services
type Services struct {
	Sheets    *sheets.Client
	Cache     cache.CacheService
	Publisher *publisher.RedisPublisher
	History   *history.PostgresStore
	Metrics   *metrics.Metrics
}

// Recorders returns the enabled best-effort row recorders
func (s *Services) Recorders() []worker.Recorder {
	var recorders []worker.Recorder
	if s.Publisher != nil {
		recorders = append(recorders, s.Publisher)
	}
	if s.History != nil {
		recorders = append(recorders, s.History)
	}
	return recorders
}

// Cleanup releases all services
func (s *Services) Cleanup() {
	if s.History != nil {
		s.History.Close(context.Background())
	}
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.Sheets != nil {
		s.Sheets.Close()
	}
}

// initializeServices opens the spreadsheet and the optional backends.
// Only the spreadsheet is required; optional backends that cannot be
// reached are disabled with a warning.
func initializeServices(ctx context.Context, cfg *config.Config, sheetOpts []option.ClientOption) (*Services, error) {
	services := &Services{Metrics: metrics.New()}

	client, err := sheets.Open(ctx, cfg.SheetID, cfg.CredentialsFile, sheetOpts...)
	if err != nil {
		return nil, err
	}
	services.Sheets = client

	if cfg.MemcacheAddr != "" {
		mc := cache.NewMemcacheService(cfg.MemcacheAddr)
		if err := mc.Ping(); err != nil {
			logger.Warn("Memcache at %s unavailable, rate limit blocking disabled: %v", cfg.MemcacheAddr, err)
		} else {
			services.Cache = mc
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
		}
	}

	if cfg.RedisAddr != "" {
		pub := publisher.NewRedisPublisher(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLength)
		if err := pub.Ping(ctx); err != nil {
			pub.Close()
			logger.Warn("Redis at %s unavailable, stream recorder disabled: %v", cfg.RedisAddr, err)
		} else {
			services.Publisher = pub
			logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)", cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
		}
	}

	if cfg.DatabaseURL != "" {
		store, err := history.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warn("Postgres unavailable, history recorder disabled: %v", err)
		} else {
			services.History = store
			logger.Info("Connected to Postgres price history")
		}
	}

	return services, nil
}
