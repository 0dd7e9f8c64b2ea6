package ai

import (
	"context"

	"catalog/internal/logger"
	"catalog/internal/models"
	"catalog/internal/repository"
)

// ProductOptimizer is satisfied by *Optimizer.
type ProductOptimizer interface {
	Optimize(ctx context.Context, product ProductInput, opts Options) Result
}

// Catalog runs the optimizer against stored products and records results.
type Catalog struct {
	products  repository.ProductRepository
	optimized repository.OptimizedProductRepository
	optimizer ProductOptimizer
	logger    *logger.Logger
}

func NewCatalog(products repository.ProductRepository, optimized repository.OptimizedProductRepository, optimizer ProductOptimizer, logger *logger.Logger) *Catalog {
	return &Catalog{products: products, optimized: optimized, optimizer: optimizer, logger: logger}
}

// InputFor builds optimizer input from a stored product.
func InputFor(p *models.Product) ProductInput {
	return ProductInput{ID: p.ID, Title: p.Title, Description: p.Description, Tags: p.Tags}
}

// OptimizeProduct optimizes the product with the given id and appends an
// OptimizedProduct row on success. A failed Result is returned with a nil row
// and nil error; the error return is for storage problems and missing products.
func (c *Catalog) OptimizeProduct(ctx context.Context, productID uint, opts Options) (*models.OptimizedProduct, Result, error) {
	product, err := c.products.FindByID(ctx, productID)
	if err != nil {
		return nil, Result{}, err
	}
	return c.optimize(ctx, product, opts)
}

// OptimizeShopifyProduct is OptimizeProduct keyed by Shopify id.
func (c *Catalog) OptimizeShopifyProduct(ctx context.Context, shopifyID string, opts Options) (*models.Product, *models.OptimizedProduct, Result, error) {
	product, err := c.products.FindByShopifyID(ctx, shopifyID)
	if err != nil {
		return nil, nil, Result{}, err
	}
	op, res, err := c.optimize(ctx, product, opts)
	return product, op, res, err
}

func (c *Catalog) optimize(ctx context.Context, product *models.Product, opts Options) (*models.OptimizedProduct, Result, error) {
	res := c.optimizer.Optimize(ctx, InputFor(product), opts)
	if res.Failed() {
		return nil, res, nil
	}

	op := models.NewOptimizedProduct(product, res.Data)
	if err := c.optimized.Create(ctx, op); err != nil {
		return nil, res, err
	}
	c.logger.Info("Saved optimized product %d for product %d", op.ID, product.ID)
	return op, res, nil
}
