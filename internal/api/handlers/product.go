package handlers

import (
	"net/http"

	"catalog/internal/logger"
	"catalog/internal/models"
	"catalog/internal/repository"
	"catalog/internal/worker/processors/validation"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	products  repository.ProductRepository
	optimized repository.OptimizedProductRepository
	validator *validation.Validator
	logger    *logger.Logger
}

func NewProductHandler(products repository.ProductRepository, optimized repository.OptimizedProductRepository, validator *validation.Validator, logger *logger.Logger) *ProductHandler {
	return &ProductHandler{
		products:  products,
		optimized: optimized,
		validator: validator,
		logger:    logger,
	}
}

type productRequest struct {
	Title       string       `json:"title" binding:"required"`
	Description string       `json:"description"`
	Price       models.Money `json:"price"`
	SKU         string       `json:"sku"`
	Tags        string       `json:"tags"`
	ShopifyID   string       `json:"shopify_id"`
}

func (r productRequest) apply(p *models.Product) {
	p.Title = r.Title
	p.Description = r.Description
	p.Price = r.Price
	p.SKU = models.StringPtr(r.SKU)
	p.Tags = r.Tags
	p.ShopifyID = models.StringPtr(r.ShopifyID)
}

func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.products.FindAll(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  products,
		"total": len(products),
	})
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	product, err := h.products.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var product models.Product
	req.apply(&product)
	if err := h.validator.ValidateProduct(&product); err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.products.Create(c.Request.Context(), &product); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": product})
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	product, err := h.products.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req.apply(product)
	if err := h.validator.ValidateProduct(product); err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.products.Update(c.Request.Context(), product); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Optimized lists the optimization history of a product, newest first.
func (h *ProductHandler) Optimized(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.products.FindByID(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	rows, err := h.optimized.FindByOriginalID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows})
}
