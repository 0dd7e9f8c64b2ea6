package shopify

import (
	"time"
)

// Product represents a Shopify product
type Product struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	BodyHTML    string     `json:"body_html"`
	Vendor      string     `json:"vendor"`
	ProductType string     `json:"product_type"`
	Handle      string     `json:"handle"`
	Status      string     `json:"status"`
	Tags        string     `json:"tags"`
	Variants    []Variant  `json:"variants"`
	Images      []Image    `json:"images"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at"`
}

// Variant represents a product variant
type Variant struct {
	ID                int64   `json:"id"`
	ProductID         int64   `json:"product_id"`
	Title             string  `json:"title"`
	Price             string  `json:"price"`
	Sku               string  `json:"sku"`
	Position          int     `json:"position"`
	CompareAtPrice    *string `json:"compare_at_price"`
	InventoryQuantity int     `json:"inventory_quantity"`
	Barcode           *string `json:"barcode"`
}

// Image represents a product image
type Image struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Position  int     `json:"position"`
	Alt       *string `json:"alt"`
	Src       string  `json:"src"`
}

// Shop represents shop information
type Shop struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Domain          string `json:"domain"`
	Currency        string `json:"currency"`
	Timezone        string `json:"timezone"`
	MyshopifyDomain string `json:"myshopify_domain"`
	PlanName        string `json:"plan_name"`
}

// ProductsResponse represents the response from products API
type ProductsResponse struct {
	Products []Product `json:"products"`
}

// ProductPayload is the body of create and update calls. Empty fields are
// left untouched by Shopify.
type ProductPayload struct {
	ID          int64            `json:"id,omitempty"`
	Title       string           `json:"title,omitempty"`
	BodyHTML    string           `json:"body_html,omitempty"`
	Vendor      string           `json:"vendor,omitempty"`
	ProductType string           `json:"product_type,omitempty"`
	Status      string           `json:"status,omitempty"`
	Tags        string           `json:"tags,omitempty"`
	Variants    []VariantPayload `json:"variants,omitempty"`
}

type VariantPayload struct {
	ID    int64  `json:"id,omitempty"`
	Price string `json:"price,omitempty"`
	SKU   string `json:"sku,omitempty"`
}

// WebhookPayload is the body of products/* webhooks.
type WebhookPayload = Product
