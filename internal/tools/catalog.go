package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"catalog/internal/models"
	"catalog/internal/repository"
	"catalog/internal/services/shopify"
	"catalog/internal/worker/processors/ai"
)

// ShopifyAPI is the part of the Shopify client exposed as tools.
type ShopifyAPI interface {
	GetProducts(ctx context.Context, limit int) ([]shopify.Product, error)
	GetProduct(ctx context.Context, productID string) (*shopify.Product, error)
	CreateProduct(ctx context.Context, product shopify.ProductPayload) (*shopify.Product, error)
	UpdateProduct(ctx context.Context, productID string, product shopify.ProductPayload) (*shopify.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
}

type Optimizer interface {
	OptimizeProduct(ctx context.Context, productID uint, opts ai.Options) (*models.OptimizedProduct, ai.Result, error)
}

type Pusher interface {
	PushOptimized(ctx context.Context, optimizedID uint) (*models.OptimizedProduct, error)
}

// Deps are the services the catalog tools call into.
type Deps struct {
	Shopify   ShopifyAPI
	Products  repository.ProductRepository
	Optimized repository.OptimizedProductRepository
	Optimizer Optimizer
	Exporter  Pusher
}

type shopifyIDArgs struct {
	ProductID string `json:"product_id" validate:"required"`
}

type listArgs struct {
	Limit int `json:"limit" validate:"gte=0,lte=250"`
}

type createArgs struct {
	Product shopify.ProductPayload `json:"product"`
}

type updateArgs struct {
	ProductID string                 `json:"product_id" validate:"required"`
	Updates   shopify.ProductPayload `json:"updates"`
}

type localIDArgs struct {
	ProductID uint `json:"product_id" validate:"required"`
}

type optimizeArgs struct {
	ProductID uint `json:"product_id" validate:"required"`
	ai.Options
}

type pushArgs struct {
	OptimizedProductID uint `json:"optimized_product_id" validate:"required"`
}

// RegisterCatalog adds the Shopify passthrough and catalog tools.
func RegisterCatalog(r *Registry, d Deps) {
	r.Register(Tool{
		Name:        "get_products",
		Description: "List products from the Shopify store.",
		Params:      []Param{{Name: "limit", Type: "integer", Description: "defaults to 10"}},
		run: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var args listArgs
			if err := r.decode(raw, &args); err != nil {
				return nil, err
			}
			if args.Limit == 0 {
				args.Limit = 10
			}
			return d.Shopify.GetProducts(ctx, args.Limit)
		},
	})

	r.Register(Tool{
		Name:        "get_product",
		Description: "Get one Shopify product by its Shopify id.",
		Params:      []Param{{Name: "product_id", Type: "string", Required: true}},
		run: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var args shopifyIDArgs
			if err := r.decode(raw, &args); err != nil {
				return nil, err
			}
			return d.Shopify.GetProduct(ctx, args.ProductID)
		},
	})

	r.Register(Tool{
		Name:        "create_product",
		Description: "Create a product in the Shopify store.",
		Params:      []Param{{Name: "product", Type: "object", Required: true}},
		run: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var args createArgs
			if err := r.decode(raw, &args); err != nil {
				return nil, err
			}
			if args.Product.Title == "" {
				return nil, fmt.Errorf("product.title is required")
			}
			return d.Shopify.CreateProduct(ctx, args.Product)
		},
	})

	r.Register(Tool{
		Name:        "update_product",
		Description: "Update fields of a Shopify product.",
		Params: []Param{
			{Name: "product_id", Type: "string", Required: true},
			{Name: "updates", Type: "object", Required: true},
		},
		run: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var args updateArgs
			if err := r.decode(raw, &args); err != nil {
				return nil, err
			}
			return d.Shopify.UpdateProduct(ctx, args.ProductID, args.Updates)
		},
	})

	r.Register(Tool{
		Name:        "delete_product",
		Description: "Delete a product from the Shopify store.",
		Params:      []Param{{Name: "product_id", Type: "string", Required: true}},
		run: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var args shopifyIDArgs
			if err := r.decode(raw, &args); err != nil {
				return nil, err
			}
			if err := d.Shopify.DeleteProduct(ctx, args.ProductID); err != nil {
				return nil, err
			}
			return map[string]string{"status": "deleted", "product_id": args.ProductID}, nil
		},
	})

	r.Register(Tool{
		Name:        "get_original_product_details",
		Description: "Get a stored product by its local id.",
		Params:      []Param{{Name: "product_id", Type: "integer", Required: true}},
		run: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var args localIDArgs
			if err := r.decode(raw, &args); err != nil {
				return nil, err
			}
			return d.Products.FindByID(ctx, args.ProductID)
		},
	})

	r.Register(Tool{
		Name:        "get_optimized_product_details",
		Description: "Get an optimized product by its id.",
		Params:      []Param{{Name: "product_id", Type: "integer", Required: true}},
		run: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var args localIDArgs
			if err := r.decode(raw, &args); err != nil {
				return nil, err
			}
			return d.Optimized.FindByID(ctx, args.ProductID)
		},
	})

	r.Register(Tool{
		Name:        "optimize_product",
		Description: "Rewrite a stored product's title, description and tags and save the result.",
		Params: []Param{
			{Name: "product_id", Type: "integer", Required: true},
			{Name: "category", Type: "string"},
			{Name: "seo_focus", Type: "string"},
			{Name: "writing_tone", Type: "string"},
		},
		run: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var args optimizeArgs
			if err := r.decode(raw, &args); err != nil {
				return nil, err
			}
			op, res, err := d.Optimizer.OptimizeProduct(ctx, args.ProductID, args.Options)
			if err != nil {
				return nil, err
			}
			if res.Failed() {
				return nil, fmt.Errorf("optimization failed: %s", res.Error)
			}
			return map[string]interface{}{
				"status":            "success",
				"optimized_data":    res.Data,
				"optimized_product": op,
			}, nil
		},
	})

	r.Register(Tool{
		Name:        "update_product_on_shopify",
		Description: "Push an optimized product to Shopify.",
		Params:      []Param{{Name: "optimized_product_id", Type: "integer", Required: true}},
		run: func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var args pushArgs
			if err := r.decode(raw, &args); err != nil {
				return nil, err
			}
			if _, err := d.Exporter.PushOptimized(ctx, args.OptimizedProductID); err != nil {
				return nil, err
			}
			return map[string]string{
				"status":  "success",
				"message": fmt.Sprintf("Product %d updated on Shopify.", args.OptimizedProductID),
			}, nil
		},
	})
}
