package models

import (
	"strings"
	"time"
)

type Product struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	Price       Money     `json:"price" gorm:"not null;default:0"`
	SKU         *string   `json:"sku" gorm:"uniqueIndex"`
	Tags        string    `json:"tags"`
	ShopifyID   *string   `json:"shopify_id" gorm:"uniqueIndex"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TagList splits the comma-joined tags column.
func (p *Product) TagList() []string {
	return SplitTags(p.Tags)
}

func SplitTags(tags string) []string {
	var out []string
	for _, t := range strings.Split(tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// StringPtr returns nil for empty strings so unique nullable columns stay NULL.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
