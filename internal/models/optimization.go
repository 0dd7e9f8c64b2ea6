package models

import (
	"fmt"
	"strings"
	"time"
)

// OptimizedProduct is one optimization result for a Product. Rows are append-only;
// the newest row (highest ID) is the one pushed to Shopify.
type OptimizedProduct struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	OriginalProductID uint      `json:"original_product_id" gorm:"not null;index"`
	Title             string    `json:"title"`
	Description       string    `json:"description" gorm:"type:text"`
	Price             Money     `json:"price" gorm:"not null;default:0"`
	SKU               *string   `json:"sku"`
	Tags              string    `json:"tags"`
	ShopifyID         *string   `json:"shopify_id"`
	CreatedAt         time.Time `json:"created_at"`

	OriginalProduct *Product `json:"-" gorm:"foreignKey:OriginalProductID;constraint:OnDelete:CASCADE"`
}

// NewOptimizedProduct builds a row from optimizer output. Price, SKU and the
// Shopify link always come from the original, whatever data contains.
func NewOptimizedProduct(original *Product, data map[string]interface{}) *OptimizedProduct {
	op := &OptimizedProduct{
		OriginalProductID: original.ID,
		Title:             firstString(data, "suggested_title", "title"),
		Description:       firstString(data, "suggested_description", "description"),
		Tags:              tagsFrom(data),
		Price:             original.Price,
		SKU:               original.SKU,
		ShopifyID:         original.ShopifyID,
	}
	if op.Title == "" {
		op.Title = original.Title
	}
	return op
}

func firstString(data map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := data[k]; ok && v != nil {
			if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
				return s
			}
		}
	}
	return ""
}

func tagsFrom(data map[string]interface{}) string {
	for _, k := range []string{"seo_keywords", "tags"} {
		switch v := data[k].(type) {
		case []interface{}:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, ", ")
			}
		case []string:
			if len(v) > 0 {
				return strings.Join(v, ", ")
			}
		case string:
			if strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}
