package repository

import (
	"context"
	"errors"
	"fmt"

	"catalog/internal/apperr"
	"catalog/internal/models"

	"gorm.io/gorm"
)

// OptimizedProductRepository has no update: optimization history is append-only.
type OptimizedProductRepository interface {
	Create(ctx context.Context, optimized *models.OptimizedProduct) error
	FindAll(ctx context.Context) ([]models.OptimizedProduct, error)
	FindByID(ctx context.Context, id uint) (*models.OptimizedProduct, error)
	FindByOriginalID(ctx context.Context, productID uint) ([]models.OptimizedProduct, error)
	LatestForProduct(ctx context.Context, productID uint) (*models.OptimizedProduct, error)
}

type optimizedProductRepository struct {
	db *gorm.DB
}

func NewOptimizedProductRepository(db *gorm.DB) OptimizedProductRepository {
	return &optimizedProductRepository{db: db}
}

// Create inserts the row after checking that its original product exists.
func (r *optimizedProductRepository) Create(ctx context.Context, optimized *models.OptimizedProduct) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Product{}).Where("id = ?", optimized.OriginalProductID).Count(&count).Error; err != nil {
			return fmt.Errorf("check original product %d: %w", optimized.OriginalProductID, err)
		}
		if count == 0 {
			return apperr.NotFound("product", optimized.OriginalProductID)
		}
		if err := tx.Omit("OriginalProduct").Create(optimized).Error; err != nil {
			return fmt.Errorf("create optimized product: %w", err)
		}
		return nil
	})
}

func (r *optimizedProductRepository) FindAll(ctx context.Context) ([]models.OptimizedProduct, error) {
	var rows []models.OptimizedProduct
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list optimized products: %w", err)
	}
	return rows, nil
}

func (r *optimizedProductRepository) FindByID(ctx context.Context, id uint) (*models.OptimizedProduct, error) {
	var row models.OptimizedProduct
	err := r.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("optimized product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find optimized product %d: %w", id, err)
	}
	return &row, nil
}

func (r *optimizedProductRepository) FindByOriginalID(ctx context.Context, productID uint) ([]models.OptimizedProduct, error) {
	var rows []models.OptimizedProduct
	err := r.db.WithContext(ctx).Where("original_product_id = ?", productID).Order("id DESC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list optimized products for %d: %w", productID, err)
	}
	return rows, nil
}

// LatestForProduct returns the optimized row with the highest id.
func (r *optimizedProductRepository) LatestForProduct(ctx context.Context, productID uint) (*models.OptimizedProduct, error) {
	var row models.OptimizedProduct
	err := r.db.WithContext(ctx).Where("original_product_id = ?", productID).Order("id DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("optimized product for product", productID)
	}
	if err != nil {
		return nil, fmt.Errorf("latest optimized product for %d: %w", productID, err)
	}
	return &row, nil
}
