package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"catalog/internal/logger"
	"catalog/internal/models"
	"catalog/internal/worker"
	"catalog/internal/worker/processors"
	"catalog/internal/worker/processors/ai"

	"github.com/gin-gonic/gin"
)

type Optimizer interface {
	OptimizeProduct(ctx context.Context, productID uint, opts ai.Options) (*models.OptimizedProduct, ai.Result, error)
	OptimizeShopifyProduct(ctx context.Context, shopifyID string, opts ai.Options) (*models.Product, *models.OptimizedProduct, ai.Result, error)
}

type Pusher interface {
	PushOptimized(ctx context.Context, optimizedID uint) (*models.OptimizedProduct, error)
	PushLatest(ctx context.Context, productID uint) (*models.OptimizedProduct, error)
}

// OptimizerHandler handles AI optimization and push requests
type OptimizerHandler struct {
	catalog    Optimizer
	exporter   Pusher
	dispatcher worker.Dispatcher
	logger     *logger.Logger
}

func NewOptimizerHandler(catalog Optimizer, exporter Pusher, dispatcher worker.Dispatcher, logger *logger.Logger) *OptimizerHandler {
	return &OptimizerHandler{
		catalog:    catalog,
		exporter:   exporter,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// bindOptions reads optional optimization options. An empty body is fine.
func bindOptions(c *gin.Context) (ai.Options, bool) {
	var opts ai.Options
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return opts, true
	}
	if err := c.ShouldBindJSON(&opts); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return opts, false
	}
	return opts, true
}

// OptimizeProduct optimizes a stored product
// POST /api/v1/optimize/products/:id
func (h *OptimizerHandler) OptimizeProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	opts, ok := bindOptions(c)
	if !ok {
		return
	}

	op, res, err := h.catalog.OptimizeProduct(c.Request.Context(), id, opts)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if res.Failed() {
		h.logger.Warn("Optimization of product %d failed: %s", id, res.Error)
		c.JSON(http.StatusBadGateway, res.Map())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"optimized":  op,
		"raw_output": res.Data,
	})
}

// OptimizeShopifyProduct optimizes the stored product linked to a Shopify id
// POST /api/v1/optimize/shopify/:shopify_id
func (h *OptimizerHandler) OptimizeShopifyProduct(c *gin.Context) {
	shopifyID := c.Param("shopify_id")
	opts, ok := bindOptions(c)
	if !ok {
		return
	}

	product, op, res, err := h.catalog.OptimizeShopifyProduct(c.Request.Context(), shopifyID, opts)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if res.Failed() {
		h.logger.Warn("Optimization of Shopify product %s failed: %s", shopifyID, res.Error)
		c.JSON(http.StatusBadGateway, res.Map())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"original":   product,
		"optimized":  op,
		"raw_output": res.Data,
	})
}

// OptimizeAll starts a background optimization of every product
// POST /api/v1/optimize/all-products
func (h *OptimizerHandler) OptimizeAll(c *gin.Context) {
	opts, ok := bindOptions(c)
	if !ok {
		return
	}

	data := map[string]interface{}{
		"category":     opts.Category,
		"seo_focus":    opts.SEOFocus,
		"writing_tone": opts.WritingTone,
	}
	if err := h.dispatcher.Dispatch(c.Request.Context(), processors.NewEvent(processors.EventOptimizeAll, "", data)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Product optimization started in the background."})
}

// PushOptimized sends an optimized product to Shopify
// POST /api/v1/optimize/optimized/:id/push
func (h *OptimizerHandler) PushOptimized(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	op, err := h.exporter.PushOptimized(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"message":   fmt.Sprintf("Product %d updated on Shopify.", op.ID),
		"optimized": op,
	})
}

// PushLatest sends the newest optimized version of a product to Shopify
// POST /api/v1/optimize/products/:id/push-latest
func (h *OptimizerHandler) PushLatest(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	op, err := h.exporter.PushLatest(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"message":   fmt.Sprintf("Product %d updated on Shopify.", op.ID),
		"optimized": op,
	})
}
