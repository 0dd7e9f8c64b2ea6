package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"catalog/internal/api/handlers"
	"catalog/internal/api/middleware"
	"catalog/internal/config"
	"catalog/internal/logger"
	"catalog/internal/repository"
	"catalog/internal/tools"
	"catalog/internal/worker"
	"catalog/internal/worker/processors/validation"

	"github.com/gin-gonic/gin"
)

// Deps are the services the HTTP layer is built from.
type Deps struct {
	Products   repository.ProductRepository
	Optimized  repository.OptimizedProductRepository
	Validator  *validation.Validator
	Shopify    tools.ShopifyAPI
	Sync       handlers.Syncer
	Catalog    handlers.Optimizer
	Exporter   handlers.Pusher
	Insights   handlers.Insights
	Summarizer handlers.Summarizer
	Dispatcher worker.Dispatcher
	Tools      *tools.Registry
}

type Server struct {
	config *config.Config
	logger *logger.Logger
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, deps Deps) *Server {
	return &Server{
		config: cfg,
		logger: logger,
		router: NewRouter(cfg, logger, deps),
	}
}

// NewRouter builds the gin engine with every /api/v1 route.
func NewRouter(cfg *config.Config, logger *logger.Logger, deps Deps) *gin.Engine {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Initialize handlers
	productHandler := handlers.NewProductHandler(deps.Products, deps.Optimized, deps.Validator, logger)
	shopifyHandler := handlers.NewShopifyHandler(deps.Shopify, deps.Sync, deps.Dispatcher, cfg.ShopifyWebhookSecret, logger)
	optimizerHandler := handlers.NewOptimizerHandler(deps.Catalog, deps.Exporter, deps.Dispatcher, logger)
	insightsHandler := handlers.NewInsightsHandler(deps.Insights, deps.Summarizer, deps.Products, deps.Optimized, logger)
	toolsHandler := handlers.NewToolsHandler(deps.Tools, logger)

	// Routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Products
		products := v1.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.Get)
			products.POST("", productHandler.Create)
			products.PUT("/:id", productHandler.Update)
			products.DELETE("/:id", productHandler.Delete)
			products.GET("/:id/optimized", productHandler.Optimized)
		}

		// Shopify Integration
		shopify := v1.Group("/shopify")
		{
			shopify.POST("/sync", shopifyHandler.SyncProducts)
			shopify.GET("/products", shopifyHandler.ListProducts)
			shopify.GET("/products/:id", shopifyHandler.GetProduct)
			shopify.POST("/products", shopifyHandler.CreateProduct)
			shopify.PUT("/products/:id", shopifyHandler.UpdateProduct)
			shopify.DELETE("/products/:id", shopifyHandler.DeleteProduct)
			shopify.POST("/webhook", shopifyHandler.Webhook)
		}

		// Optimization
		optimize := v1.Group("/optimize")
		{
			optimize.POST("/products/:id", optimizerHandler.OptimizeProduct)
			optimize.POST("/products/:id/push-latest", optimizerHandler.PushLatest)
			optimize.POST("/shopify/:shopify_id", optimizerHandler.OptimizeShopifyProduct)
			optimize.POST("/all-products", optimizerHandler.OptimizeAll)
			optimize.POST("/optimized/:id/push", optimizerHandler.PushOptimized)
		}

		// Insights
		insights := v1.Group("/insights")
		{
			insights.POST("/product-insights", insightsHandler.ProductInsights)
			insights.GET("/product-insights/:product_id", insightsHandler.CachedInsights)
			insights.POST("/groq-product-insights", insightsHandler.DescriptionInsights)
			insights.GET("/product-comparison/:optimized_id", insightsHandler.Comparison)
			insights.GET("/product-details/:optimized_id", insightsHandler.ProductDetails)
			insights.GET("/overall-product-comparison-summary", insightsHandler.Summary)
			insights.POST("/chat", insightsHandler.Chat)
		}

		// Agent tools
		toolRoutes := v1.Group("/tools")
		{
			toolRoutes.GET("", toolsHandler.List)
			toolRoutes.POST("/:name", toolsHandler.Call)
		}
	}

	return router
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // optimizations may sit in rate-limit backoff
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// GetRouter returns the Gin router for serverless handlers
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
