package export

import (
	"context"

	"catalog/internal/logger"
	"catalog/internal/models"
	"catalog/internal/repository"
	"catalog/internal/services/shopify"
	"catalog/internal/worker/processors/validation"
)

// ShopifyUpdater is the part of the Shopify client the exporter uses.
type ShopifyUpdater interface {
	UpdateProduct(ctx context.Context, productID string, product shopify.ProductPayload) (*shopify.Product, error)
}

type Exporter struct {
	optimized   repository.OptimizedProductRepository
	shopify     ShopifyUpdater
	transformer *shopify.Transformer
	validator   *validation.Validator
	logger      *logger.Logger
}

func New(optimized repository.OptimizedProductRepository, client ShopifyUpdater, validator *validation.Validator, logger *logger.Logger) *Exporter {
	return &Exporter{
		optimized:   optimized,
		shopify:     client,
		transformer: shopify.NewTransformer(),
		validator:   validator,
		logger:      logger,
	}
}

// PushOptimized sends one optimized product to Shopify.
func (e *Exporter) PushOptimized(ctx context.Context, optimizedID uint) (*models.OptimizedProduct, error) {
	op, err := e.optimized.FindByID(ctx, optimizedID)
	if err != nil {
		return nil, err
	}
	return op, e.push(ctx, op)
}

// PushLatest sends the newest optimized row of a product to Shopify.
func (e *Exporter) PushLatest(ctx context.Context, productID uint) (*models.OptimizedProduct, error) {
	op, err := e.optimized.LatestForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return op, e.push(ctx, op)
}

func (e *Exporter) push(ctx context.Context, op *models.OptimizedProduct) error {
	if err := e.validator.ValidatePush(op); err != nil {
		return err
	}

	shopifyID := models.StringValue(op.ShopifyID)
	e.logger.Debug("Pushing optimized product %d to Shopify product %s", op.ID, shopifyID)

	if _, err := e.shopify.UpdateProduct(ctx, shopifyID, e.transformer.TransformToShopify(op)); err != nil {
		e.logger.Error("Failed to push optimized product %d: %v", op.ID, err)
		return err
	}
	e.logger.Info("Optimized product %d pushed to Shopify product %s", op.ID, shopifyID)
	return nil
}
