package commands

import (
	"context"
	"fmt"

	"github.com/alphapulse/pulse/internal/contracts"
	"github.com/alphapulse/pulse/internal/ingest"
	"github.com/alphapulse/pulse/internal/pipeline"
	"github.com/alphapulse/pulse/internal/scoring"
	"github.com/alphapulse/pulse/internal/storage"
	"github.com/alphapulse/pulse/pkg/config"
	"github.com/alphapulse/pulse/pkg/database"
	"github.com/alphapulse/pulse/pkg/httputil"
	"github.com/alphapulse/pulse/pkg/logger"
	"github.com/alphapulse/pulse/pkg/metrics"
	"github.com/alphapulse/pulse/pkg/redis"
)

// runtime wires the full application stack: config, storage, providers,
// the scoring aggregator and the cycle runner.
type runtime struct {
	cfg    *config.Config
	log    *logger.Logger
	db     *database.DB
	redis  *redis.Client
	cache  *redis.Cache
	runner *pipeline.Runner

	assetRepo *storage.AssetRepository
	scoreRepo *storage.ScoreRepository
}

// buildRuntime constructs the stack. The publisher receives every fresh
// scoring result and may be nil.
func buildRuntime(ctx context.Context, publisher pipeline.Publisher) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := storage.Migrate(ctx, db.Pool); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("Connected to database")

	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(redisClient, "pulse")

	// One HTTP client per provider so rate limits stay independent.
	binanceClient := ingest.NewBinanceClient(
		httputil.New(log).WithRateLimit(5, 10), log, cfg.Binance.BaseURL)
	yahooClient := ingest.NewYahooClient(
		httputil.New(log).WithRateLimit(2, 5), log, cfg.Yahoo.BaseURL)
	moexClient := ingest.NewMOEXClient(
		httputil.New(log).WithRateLimit(2, 5), log, cfg.MOEX.BaseURL)

	// Alpha Vantage free tier allows 5 requests per minute. The Redis
	// limiter shares that quota across processes; the local limiter is
	// the fallback when Redis is disabled.
	avClient := ingest.NewAlphaVantageClient(
		httputil.New(log).WithRateLimit(5.0/60.0, 1), log,
		cfg.AlphaVantage.BaseURL, cfg.AlphaVantage.APIKey).
		WithLimiter(redis.NewRateLimiter(redisClient, "pulse"))

	registry := ingest.NewRegistry(binanceClient, yahooClient, moexClient, log)

	var news contracts.NewsProvider
	var fundamentals contracts.FundamentalsProvider
	if avClient.Enabled() {
		news = avClient
		fundamentals = avClient
	} else {
		log.Warn("Alpha Vantage API key not set, news and fundamentals disabled")
	}

	tracked, err := pipeline.ParseTrackedAssets(cfg.Scoring.TrackedAssets)
	if err != nil {
		db.Close()
		redisClient.Close()
		return nil, fmt.Errorf("parse tracked assets: %w", err)
	}

	aggregator, err := scoring.NewAggregator(nil, log)
	if err != nil {
		db.Close()
		redisClient.Close()
		return nil, fmt.Errorf("build aggregator: %w", err)
	}

	assetRepo := storage.NewAssetRepository(db.Pool)
	barRepo := storage.NewBarRepository(db.Pool)
	scoreRepo := storage.NewScoreRepository(db.Pool)

	runner := pipeline.NewRunner(pipeline.RunnerDeps{
		Tracked:      tracked,
		Registry:     registry,
		News:         news,
		Fundamentals: fundamentals,
		Aggregator:   aggregator,
		AssetRepo:    assetRepo,
		BarRepo:      barRepo,
		ScoreRepo:    scoreRepo,
		Cache:        cache,
		Metrics:      metrics.New(),
		Publisher:    publisher,
		Logger:       log,
		LookbackBars: cfg.Scoring.LookbackBars,
	})

	return &runtime{
		cfg:       cfg,
		log:       log,
		db:        db,
		redis:     redisClient,
		cache:     cache,
		runner:    runner,
		assetRepo: assetRepo,
		scoreRepo: scoreRepo,
	}, nil
}

// Close releases the runtime's connections.
func (rt *runtime) Close() {
	rt.db.Close()
	if err := rt.redis.Close(); err != nil {
		rt.log.WithError(err).Warn("Failed to close redis client")
	}
}
