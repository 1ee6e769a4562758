package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/alphapulse/pulse/internal/contracts"
	"github.com/alphapulse/pulse/internal/scoring"
	"github.com/alphapulse/pulse/pkg/logger"
	"github.com/alphapulse/pulse/pkg/metrics"
	"github.com/alphapulse/pulse/pkg/redis"
)

// Publisher receives every fresh scoring result, e.g. for a websocket
// fan-out. Implementations must not block.
type Publisher interface {
	Publish(result *contracts.Result)
}

// SeriesSource resolves providers and the shared benchmark/macro
// series. Satisfied by ingest.Registry.
type SeriesSource interface {
	Provider(name string) (contracts.SeriesProvider, error)
	FetchBenchmark(ctx context.Context, class contracts.AssetClass, limit int) (contracts.Series, error)
	FetchMacro(ctx context.Context, limit int) *contracts.MacroData
}

// ScoreCache stores fresh results for the API layer. Satisfied by
// redis.Cache.
type ScoreCache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Runner orchestrates one scoring cycle: fetch bars and context data for
// every tracked asset, score it, persist and publish the result.
type Runner struct {
	tracked      []TrackedAsset
	registry     SeriesSource
	news         contracts.NewsProvider
	fundamentals contracts.FundamentalsProvider
	aggregator   *scoring.Aggregator

	assetRepo contracts.AssetRepository
	barRepo   contracts.BarRepository
	scoreRepo contracts.ScoreRepository

	cache     ScoreCache
	metrics   *metrics.Recorder
	publisher Publisher
	logger    *logger.Logger

	lookbackBars int
}

// RunnerDeps bundles the collaborators a Runner needs.
type RunnerDeps struct {
	Tracked      []TrackedAsset
	Registry     SeriesSource
	News         contracts.NewsProvider
	Fundamentals contracts.FundamentalsProvider
	Aggregator   *scoring.Aggregator
	AssetRepo    contracts.AssetRepository
	BarRepo      contracts.BarRepository
	ScoreRepo    contracts.ScoreRepository
	Cache        ScoreCache
	Metrics      *metrics.Recorder
	Publisher    Publisher
	Logger       *logger.Logger
	LookbackBars int
}

// NewRunner creates a scoring cycle runner.
func NewRunner(deps RunnerDeps) *Runner {
	lookback := deps.LookbackBars
	if lookback <= 0 {
		lookback = 90
	}
	return &Runner{
		tracked:      deps.Tracked,
		registry:     deps.Registry,
		news:         deps.News,
		fundamentals: deps.Fundamentals,
		aggregator:   deps.Aggregator,
		assetRepo:    deps.AssetRepo,
		barRepo:      deps.BarRepo,
		scoreRepo:    deps.ScoreRepo,
		cache:        deps.Cache,
		metrics:      deps.Metrics,
		publisher:    deps.Publisher,
		logger:       deps.Logger,
		lookbackBars: lookback,
	}
}

// Tracked returns the configured universe.
func (r *Runner) Tracked() []TrackedAsset {
	return r.tracked
}

// SetPublisher attaches the result publisher. Must be called before the
// first cycle runs.
func (r *Runner) SetPublisher(p Publisher) {
	r.publisher = p
}

// cycleContext carries the per-cycle shared lookups so the macro and
// benchmark series are fetched once, not once per asset.
type cycleContext struct {
	macro      *contracts.MacroData
	benchmarks map[contracts.AssetClass]contracts.Series
}

func (r *Runner) newCycleContext(ctx context.Context) *cycleContext {
	cc := &cycleContext{
		macro:      r.registry.FetchMacro(ctx, r.lookbackBars),
		benchmarks: make(map[contracts.AssetClass]contracts.Series, 2),
	}
	for _, class := range []contracts.AssetClass{contracts.AssetStock, contracts.AssetCrypto} {
		benchmark, err := r.registry.FetchBenchmark(ctx, class, r.lookbackBars)
		if err != nil {
			r.logger.WithFields(map[string]interface{}{
				"asset_class": string(class),
				"error":       err.Error(),
			}).Warn("Benchmark unavailable, relative strength falls back")
			continue
		}
		cc.benchmarks[class] = benchmark
	}
	return cc
}

// RunCycle scores the whole tracked universe. Individual asset failures
// are logged and counted, not fatal.
func (r *Runner) RunCycle(ctx context.Context) error {
	start := time.Now()
	r.logger.WithField("assets", len(r.tracked)).Info("Scoring cycle started")

	cc := r.newCycleContext(ctx)

	scored := 0
	results := make([]*contracts.Result, 0, len(r.tracked))
	for _, tracked := range r.tracked {
		result, err := r.scoreTracked(ctx, tracked, cc)
		if err != nil {
			r.logger.WithFields(map[string]interface{}{
				"ticker": tracked.Asset.Ticker,
				"error":  err.Error(),
			}).Error("Asset scoring failed")
			r.metrics.RecordScoringError(tracked.Asset.Ticker)
			r.metrics.RecordAssetScored("failed")
			continue
		}
		results = append(results, result)
		scored++
		r.metrics.RecordAssetScored("ok")
		r.metrics.RecordAiScore(result.Asset.Ticker, result.AiScore)
	}

	// An all-failed cycle must not clobber the last good snapshot.
	if len(results) > 0 {
		if err := r.cache.Set(ctx, redis.LatestScoresKey, results, redis.TTLMedium); err != nil {
			r.logger.WithError(err).Warn("Failed to cache latest scores")
		}
	}

	elapsed := time.Since(start)
	r.metrics.RecordCycle(elapsed.Seconds())
	r.logger.WithFields(map[string]interface{}{
		"scored":   scored,
		"failed":   len(r.tracked) - scored,
		"duration": elapsed,
	}).Info("Scoring cycle completed")

	if scored == 0 {
		return fmt.Errorf("scoring cycle produced no results")
	}
	return nil
}

// ScoreTicker scores a single tracked asset on demand.
func (r *Runner) ScoreTicker(ctx context.Context, ticker string) (*contracts.Result, error) {
	for _, tracked := range r.tracked {
		if tracked.Asset.Ticker == ticker {
			return r.scoreTracked(ctx, tracked, r.newCycleContext(ctx))
		}
	}
	return nil, fmt.Errorf("ticker %s is not tracked", ticker)
}

func (r *Runner) scoreTracked(ctx context.Context, tracked TrackedAsset, cc *cycleContext) (*contracts.Result, error) {
	provider, err := r.registry.Provider(tracked.Source)
	if err != nil {
		return nil, err
	}

	series, err := provider.Fetch(ctx, tracked.Asset.Ticker, r.lookbackBars)
	if err != nil {
		r.metrics.RecordProviderError(provider.Name())
		return nil, fmt.Errorf("fetch %s from %s: %w", tracked.Asset.Ticker, provider.Name(), err)
	}

	if _, err := r.assetRepo.Upsert(ctx, tracked.Asset); err != nil {
		return nil, err
	}
	if err := r.barRepo.SaveBatch(ctx, tracked.Asset.Ticker, series); err != nil {
		return nil, err
	}

	sctx := r.buildScoringContext(ctx, tracked, cc)
	result, err := r.aggregator.ScoreAsset(tracked.Asset, series, sctx)
	if err != nil {
		return nil, err
	}

	if err := r.scoreRepo.Save(ctx, result); err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, redis.ScoreKey(result.Asset.Ticker), result, redis.TTLMedium); err != nil {
		r.logger.WithError(err).Warn("Failed to cache score")
	}
	if r.publisher != nil {
		r.publisher.Publish(result)
	}
	return result, nil
}

// buildScoringContext assembles the optional side data for one asset.
// News and fundamentals apply to stocks; missing data degrades the
// relevant factors, it never blocks the score.
func (r *Runner) buildScoringContext(ctx context.Context, tracked TrackedAsset, cc *cycleContext) *scoring.Context {
	sctx := &scoring.Context{
		Ticker:     tracked.Asset.Ticker,
		AssetClass: tracked.Asset.Class,
		Benchmark:  cc.benchmarks[tracked.Asset.Class],
		Macro:      cc.macro,
	}

	if tracked.Asset.Class != contracts.AssetStock {
		return sctx
	}

	if r.news != nil {
		news, err := r.news.FetchNews(ctx, tracked.Asset.Ticker)
		if err != nil {
			r.logger.WithFields(map[string]interface{}{
				"ticker": tracked.Asset.Ticker,
				"error":  err.Error(),
			}).Warn("News unavailable")
			r.metrics.RecordProviderError("alphavantage")
		} else {
			sctx.News = news
		}
	}

	if r.fundamentals != nil {
		fundamentals, ownership, err := r.fundamentals.FetchFundamentals(ctx, tracked.Asset.Ticker)
		if err != nil {
			r.logger.WithFields(map[string]interface{}{
				"ticker": tracked.Asset.Ticker,
				"error":  err.Error(),
			}).Warn("Fundamentals unavailable")
			r.metrics.RecordProviderError("alphavantage")
		} else {
			sctx.Fundamentals = fundamentals
			sctx.Ownership = ownership
		}
	}

	return sctx
}
