package repository

import (
	"context"
	"errors"
	"fmt"

	"catalog/internal/apperr"
	"catalog/internal/models"

	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindAll(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	FindByShopifyID(ctx context.Context, shopifyID string) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) error
	UpsertByShopifyID(ctx context.Context, products []models.Product) (UpsertResult, error)
	UnlinkShopify(ctx context.Context, shopifyID string) error
}

// UpsertResult counts what a batch upsert did.
type UpsertResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *productRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (r *productRepository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find product %d: %w", id, err)
	}
	return &product, nil
}

func (r *productRepository) FindByShopifyID(ctx context.Context, shopifyID string) (*models.Product, error) {
	product, err := findByShopifyID(r.db.WithContext(ctx), shopifyID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperr.NotFound("product", "shopify:"+shopifyID)
	}
	return product, nil
}

func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	if product.ID == 0 {
		return apperr.Invalid("product id is required")
	}
	res := r.db.WithContext(ctx).Model(&models.Product{ID: product.ID}).Select("*").Omit("created_at").Updates(product)
	if res.Error != nil {
		return fmt.Errorf("update product %d: %w", product.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product", product.ID)
	}
	return nil
}

// Delete removes the product together with its optimization history.
func (r *productRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("original_product_id = ?", id).Delete(&models.OptimizedProduct{}).Error; err != nil {
			return fmt.Errorf("delete optimized products for %d: %w", id, err)
		}
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete product %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("product", id)
		}
		return nil
	})
}

// UpsertByShopifyID writes the batch in one transaction. Products whose
// Shopify id already exists have their title, description, tags, price and
// SKU overwritten; the rest are inserted. Any failure rolls back the batch.
func (r *productRepository) UpsertByShopifyID(ctx context.Context, products []models.Product) (UpsertResult, error) {
	var result UpsertResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range products {
			incoming := products[i]
			sid := models.StringValue(incoming.ShopifyID)
			if sid == "" {
				return apperr.Invalid("product %q has no shopify id", incoming.Title)
			}

			existing, err := findByShopifyID(tx, sid)
			if err != nil {
				return err
			}
			if existing == nil {
				incoming.ID = 0
				if err := tx.Create(&incoming).Error; err != nil {
					return fmt.Errorf("insert shopify product %s: %w", sid, err)
				}
				result.Created++
				continue
			}

			err = tx.Model(existing).Updates(map[string]interface{}{
				"title":       incoming.Title,
				"description": incoming.Description,
				"tags":        incoming.Tags,
				"price":       incoming.Price,
				"sku":         incoming.SKU,
			}).Error
			if err != nil {
				return fmt.Errorf("update shopify product %s: %w", sid, err)
			}
			result.Updated++
		}
		return nil
	})
	if err != nil {
		return UpsertResult{}, err
	}
	return result, nil
}

// UnlinkShopify clears the Shopify id of the matching product, keeping the row
// and its optimization history.
func (r *productRepository) UnlinkShopify(ctx context.Context, shopifyID string) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("shopify_id = ?", shopifyID).Update("shopify_id", nil)
	if res.Error != nil {
		return fmt.Errorf("unlink shopify product %s: %w", shopifyID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product", "shopify:"+shopifyID)
	}
	return nil
}

func findByShopifyID(db *gorm.DB, shopifyID string) (*models.Product, error) {
	var product models.Product
	err := db.Where("shopify_id = ?", shopifyID).Limit(1).Find(&product).Error
	if err != nil {
		return nil, fmt.Errorf("find product by shopify id %s: %w", shopifyID, err)
	}
	if product.ID == 0 {
		return nil, nil
	}
	return &product, nil
}
