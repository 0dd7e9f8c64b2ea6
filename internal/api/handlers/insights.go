package handlers

import (
	"context"
	"net/http"

	"catalog/internal/logger"
	"catalog/internal/models"
	"catalog/internal/repository"
	"catalog/internal/worker/processors/ai"

	"github.com/gin-gonic/gin"
)

type Insights interface {
	GenerateInsights(ctx context.Context, description string) (map[string]interface{}, error)
	CompetitorInsights(ctx context.Context, product *models.OptimizedProduct) (map[string]interface{}, error)
	CachedInsights(ctx context.Context, productID uint) (map[string]interface{}, error)
	Compare(ctx context.Context, original, optimized string) (map[string]interface{}, error)
	Chat(ctx context.Context, message string, original *models.Product, optimized *models.OptimizedProduct) (string, error)
}

type Summarizer interface {
	Summarize(ctx context.Context) (ai.Summary, error)
}

type InsightsHandler struct {
	insights   Insights
	summarizer Summarizer
	products   repository.ProductRepository
	optimized  repository.OptimizedProductRepository
	logger     *logger.Logger
}

func NewInsightsHandler(insights Insights, summarizer Summarizer, products repository.ProductRepository, optimized repository.OptimizedProductRepository, logger *logger.Logger) *InsightsHandler {
	return &InsightsHandler{
		insights:   insights,
		summarizer: summarizer,
		products:   products,
		optimized:  optimized,
		logger:     logger,
	}
}

type insightsRequest struct {
	ID          uint   `json:"id" binding:"required"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Tags        string `json:"tags"`
}

// ProductInsights generates competitor insights for an optimized product and
// caches them under its id.
func (h *InsightsHandler) ProductInsights(c *gin.Context) {
	var req insightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := &models.OptimizedProduct{ID: req.ID, Title: req.Title, Description: req.Description, Tags: req.Tags}
	insights, err := h.insights.CompetitorInsights(c.Request.Context(), product)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Product details received, insights generated",
		"product_id": req.ID,
		"insights":   insights,
	})
}

func (h *InsightsHandler) CachedInsights(c *gin.Context) {
	id, ok := idParam(c, "product_id")
	if !ok {
		return
	}

	insights, err := h.insights.CachedInsights(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product_id": id, "insights": insights})
}

func (h *InsightsHandler) DescriptionInsights(c *gin.Context) {
	var req struct {
		Description string `json:"description" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	insights, err := h.insights.GenerateInsights(c.Request.Context(), req.Description)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"insights": insights})
}

// pair loads an optimized product and the product it was made from.
func (h *InsightsHandler) pair(c *gin.Context) (*models.Product, *models.OptimizedProduct, bool) {
	id, ok := idParam(c, "optimized_id")
	if !ok {
		return nil, nil, false
	}

	op, err := h.optimized.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return nil, nil, false
	}
	original, err := h.products.FindByID(c.Request.Context(), op.OriginalProductID)
	if err != nil {
		respondError(c, h.logger, err)
		return nil, nil, false
	}
	return original, op, true
}

func (h *InsightsHandler) Comparison(c *gin.Context) {
	original, op, ok := h.pair(c)
	if !ok {
		return
	}

	comparison, err := h.insights.Compare(c.Request.Context(), original.Description, op.Description)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"optimized_product_id": op.ID, "comparison": comparison})
}

func productDetails(title, description string, price models.Money, sku *string, tags string) gin.H {
	return gin.H{
		"title":       title,
		"description": description,
		"price":       price,
		"sku":         sku,
		"tags":        tags,
	}
}

func (h *InsightsHandler) ProductDetails(c *gin.Context) {
	original, op, ok := h.pair(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"original_product":  productDetails(original.Title, original.Description, original.Price, original.SKU, original.Tags),
		"optimized_product": productDetails(op.Title, op.Description, op.Price, op.SKU, op.Tags),
	})
}

func (h *InsightsHandler) Summary(c *gin.Context) {
	summary, err := h.summarizer.Summarize(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

type chatRequest struct {
	Message            string `json:"message" binding:"required"`
	OriginalProductID  uint   `json:"original_product_id"`
	OptimizedProductID uint   `json:"optimized_product_id"`
}

// Chat answers a free-text question, with product context when ids are given.
// Unknown ids are ignored.
func (h *InsightsHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	var original *models.Product
	var optimized *models.OptimizedProduct
	if req.OriginalProductID != 0 {
		if p, err := h.products.FindByID(ctx, req.OriginalProductID); err == nil {
			original = p
		}
	}
	if req.OptimizedProductID != 0 {
		if op, err := h.optimized.FindByID(ctx, req.OptimizedProductID); err == nil {
			optimized = op
		}
	}

	reply, err := h.insights.Chat(ctx, req.Message, original, optimized)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
