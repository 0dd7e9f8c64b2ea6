package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"catalog/internal/logger"
	"catalog/internal/services/shopify"
	"catalog/internal/tools"
	"catalog/internal/worker"
	"catalog/internal/worker/processors"
	"catalog/internal/worker/processors/shopifysync"

	"github.com/gin-gonic/gin"
)

// Syncer is the part of the sync job the handler drives directly.
type Syncer interface {
	Run(ctx context.Context, limit int) (shopifysync.Report, error)
	ApplyWebhook(ctx context.Context, topic string, payload *shopify.WebhookPayload) error
}

type ShopifyHandler struct {
	client        tools.ShopifyAPI
	sync          Syncer
	dispatcher    worker.Dispatcher
	webhookSecret string
	logger        *logger.Logger
}

func NewShopifyHandler(client tools.ShopifyAPI, sync Syncer, dispatcher worker.Dispatcher, webhookSecret string, logger *logger.Logger) *ShopifyHandler {
	return &ShopifyHandler{
		client:        client,
		sync:          sync,
		dispatcher:    dispatcher,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// SyncProducts starts a background sync. With ?wait=true the sync runs
// inline and its report is returned.
func (h *ShopifyHandler) SyncProducts(c *gin.Context) {
	limit := limitQuery(c, 0)

	if c.Query("wait") == "true" {
		report, err := h.sync.Run(c.Request.Context(), limit)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": "Shopify products synced",
			"report":  report,
		})
		return
	}

	event := processors.NewEvent(processors.EventSync, "", map[string]interface{}{"limit": limit})
	if err := h.dispatcher.Dispatch(c.Request.Context(), event); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Shopify sync started in the background.",
	})
}

func (h *ShopifyHandler) ListProducts(c *gin.Context) {
	products, err := h.client.GetProducts(c.Request.Context(), limitQuery(c, 10))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *ShopifyHandler) GetProduct(c *gin.Context) {
	product, err := h.client.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *ShopifyHandler) CreateProduct(c *gin.Context) {
	var payload shopify.ProductPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if payload.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	product, err := h.client.CreateProduct(c.Request.Context(), payload)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

func (h *ShopifyHandler) UpdateProduct(c *gin.Context) {
	var payload shopify.ProductPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.client.UpdateProduct(c.Request.Context(), c.Param("id"), payload)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *ShopifyHandler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := h.client.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "product_id": id})
}

// Webhook handles Shopify products/* webhooks.
func (h *ShopifyHandler) Webhook(c *gin.Context) {
	topic := c.GetHeader("X-Shopify-Topic")
	signature := c.GetHeader("X-Shopify-Hmac-Sha256")

	if topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required headers"})
		return
	}

	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read payload"})
		return
	}

	if h.webhookSecret != "" && !shopify.VerifyWebhook(h.webhookSecret, payload, signature) {
		h.logger.Warn("Rejected webhook %s with bad signature", topic)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid webhook signature"})
		return
	}

	switch topic {
	case shopify.TopicProductsCreate, shopify.TopicProductsUpdate, shopify.TopicProductsDelete:
	default:
		h.logger.Debug("Unhandled webhook topic: %s", topic)
		c.JSON(http.StatusOK, gin.H{"message": "Webhook received but not processed"})
		return
	}

	var product shopify.WebhookPayload
	if err := json.Unmarshal(payload, &product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload"})
		return
	}

	if err := h.sync.ApplyWebhook(c.Request.Context(), topic, &product); err != nil {
		h.logger.Error("Failed to process webhook %s: %v", topic, err)
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Webhook processed successfully"})
}
