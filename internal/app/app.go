package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"catalog/internal/api"
	"catalog/internal/cache"
	"catalog/internal/config"
	"catalog/internal/database"
	"catalog/internal/logger"
	"catalog/internal/repository"
	"catalog/internal/services/llm"
	"catalog/internal/services/shopify"
	"catalog/internal/tools"
	"catalog/internal/worker"
	"catalog/internal/worker/processors"
	"catalog/internal/worker/processors/ai"
	"catalog/internal/worker/processors/bulk"
	"catalog/internal/worker/processors/export"
	"catalog/internal/worker/processors/shopifysync"
	"catalog/internal/worker/processors/validation"
)

type Repos struct {
	Products  repository.ProductRepository
	Optimized repository.OptimizedProductRepository
}

type Services struct {
	Shopify    *shopify.Client
	Validator  *validation.Validator
	Cache      cache.Cache
	Catalog    *ai.Catalog
	Insights   *ai.InsightService
	Aggregator *ai.Aggregator
	Exporter   *export.Exporter
	Sync       *shopifysync.Job
	Bulk       *bulk.Job
	Processor  *processors.EventProcessor
	Dispatcher worker.Dispatcher
	Tools      *tools.Registry
}

// App holds every long-lived dependency of the API and worker processes.
type App struct {
	Cfg      *config.Config
	Log      *logger.Logger
	DB       *database.Database
	Repos    Repos
	Services Services

	closers []func() error
}

func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	db, err := database.New(cfg.DatabaseURL, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	a := &App{Cfg: cfg, Log: log, DB: db}
	a.closers = append(a.closers, db.Close)

	a.Repos = Repos{
		Products:  repository.NewProductRepository(db.DB),
		Optimized: repository.NewOptimizedProductRepository(db.DB),
	}

	if err := a.wireServices(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wireServices(ctx context.Context) error {
	cfg, log := a.Cfg, a.Log
	s := &a.Services

	s.Shopify = shopify.NewClient(cfg.ShopifyStoreURL, cfg.ShopifyAccessToken, cfg.ShopifyAPIVersion, log.With("component", "shopify"),
		shopify.WithRateLimit(cfg.ShopifyRateLimit),
		shopify.WithHTTPClient(&http.Client{Timeout: cfg.ShopifyTimeout}))
	if !s.Shopify.Configured() {
		log.Warn("SHOPIFY_STORE_URL or SHOPIFY_ACCESS_TOKEN not set; Shopify calls will fail")
	}
	s.Validator = validation.New(log)

	insightCache, err := cache.New(ctx, cache.Options{RedisURL: cfg.RedisURL, TTL: cfg.InsightCacheTTL})
	if err != nil {
		return fmt.Errorf("init insight cache: %w", err)
	}
	if r, ok := insightCache.(*cache.Redis); ok {
		a.closers = append(a.closers, r.Close)
		log.Info("Insight cache backed by Redis")
	}
	s.Cache = insightCache

	// One client so all providers share a connection pool.
	llmHTTP := llm.WithHTTPClient(&http.Client{Timeout: cfg.LLMTimeout})
	gemini := llm.NewGeminiClient(cfg.GoogleAPIKey, cfg.GeminiModel, llm.WithBaseURL(cfg.GeminiBaseURL), llmHTTP)
	groq := llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel, llm.WithBaseURL(cfg.GroqBaseURL), llmHTTP)
	groqChat := llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqChatModel, llm.WithBaseURL(cfg.GroqBaseURL), llmHTTP)

	var optimizerModel llm.Generator = gemini
	if strings.EqualFold(cfg.OptimizerProvider, "groq") {
		optimizerModel = groq
	}
	log.Info("Optimizer using %s", optimizerModel.Name())

	policy := ai.NewRetryPolicy(cfg.OptimizerMaxAttempts, cfg.OptimizerInitialDelay, log)
	optimizer := ai.New(optimizerModel, policy, log.With("component", "optimizer"))

	insightOpts := []ai.InsightOption{ai.WithChatGenerator(groqChat)}
	if cfg.ComparisonRetry {
		insightOpts = append(insightOpts, ai.WithRetry(policy))
	}

	s.Catalog = ai.NewCatalog(a.Repos.Products, a.Repos.Optimized, optimizer, log)
	s.Insights = ai.NewInsightService(groq, s.Cache, log.With("component", "insights"), insightOpts...)
	s.Aggregator = ai.NewAggregator(a.Repos.Products, a.Repos.Optimized, s.Insights, log)
	s.Exporter = export.New(a.Repos.Optimized, s.Shopify, s.Validator, log.With("component", "export"))
	s.Sync = shopifysync.New(s.Shopify, a.Repos.Products, s.Validator, cfg.SyncLimit, log.With("component", "sync"))
	s.Bulk = bulk.New(a.Repos.Products, a.Repos.Optimized, optimizer, log.With("component", "bulk"))
	s.Processor = processors.NewEventProcessor(log, s.Sync, s.Bulk, s.Catalog, s.Exporter)

	if strings.EqualFold(cfg.JobDispatch, "kafka") {
		s.Dispatcher = worker.NewKafkaDispatcher(cfg.KafkaBrokerList(), cfg.KafkaTopic, log)
	} else {
		s.Dispatcher = worker.NewLocalDispatcher(s.Processor, log)
	}
	a.closers = append(a.closers, s.Dispatcher.Close)

	s.Tools = tools.NewRegistry(log.With("component", "tools"))
	tools.RegisterCatalog(s.Tools, tools.Deps{
		Shopify:   s.Shopify,
		Products:  a.Repos.Products,
		Optimized: a.Repos.Optimized,
		Optimizer: s.Catalog,
		Exporter:  s.Exporter,
	})
	return nil
}

// APIDeps exposes the services the HTTP layer needs.
func (a *App) APIDeps() api.Deps {
	s := a.Services
	return api.Deps{
		Products:   a.Repos.Products,
		Optimized:  a.Repos.Optimized,
		Validator:  s.Validator,
		Shopify:    s.Shopify,
		Sync:       s.Sync,
		Catalog:    s.Catalog,
		Exporter:   s.Exporter,
		Insights:   s.Insights,
		Summarizer: s.Aggregator,
		Dispatcher: s.Dispatcher,
		Tools:      s.Tools,
	}
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Log.Warn("Close: %v", err)
		}
	}
	a.closers = nil
	_ = a.Log.Sync()
}
