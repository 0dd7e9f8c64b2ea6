package shopify

import (
	"strconv"
	"strings"

	"catalog/internal/models"
)

type Transformer struct{}

func NewTransformer() *Transformer {
	return &Transformer{}
}

// TransformProduct converts a Shopify product to a local product. Price and
// SKU come from the first variant; a product without variants gets price 0
// and no SKU.
func (t *Transformer) TransformProduct(shopifyProduct *Product) models.Product {
	product := models.Product{
		Title:       shopifyProduct.Title,
		Description: shopifyProduct.BodyHTML,
		Tags:        normalizeTags(shopifyProduct.Tags),
		ShopifyID:   models.StringPtr(strconv.FormatInt(shopifyProduct.ID, 10)),
	}
	if len(shopifyProduct.Variants) > 0 {
		first := shopifyProduct.Variants[0]
		product.Price = models.ParsePrice(first.Price)
		product.SKU = models.StringPtr(strings.TrimSpace(first.Sku))
	}
	return product
}

// TransformProducts converts a page of Shopify products, skipping any
// without an id.
func (t *Transformer) TransformProducts(shopifyProducts []Product) []models.Product {
	out := make([]models.Product, 0, len(shopifyProducts))
	for i := range shopifyProducts {
		if shopifyProducts[i].ID == 0 {
			continue
		}
		out = append(out, t.TransformProduct(&shopifyProducts[i]))
	}
	return out
}

// TransformToShopify builds the update payload for an optimized product:
// title, body_html, tags and a single variant carrying price and SKU.
func (t *Transformer) TransformToShopify(optimized *models.OptimizedProduct) ProductPayload {
	return ProductPayload{
		Title:    optimized.Title,
		BodyHTML: optimized.Description,
		Tags:     optimized.Tags,
		Variants: []VariantPayload{{
			Price: optimized.Price.String(),
			SKU:   models.StringValue(optimized.SKU),
		}},
	}
}

func normalizeTags(tags string) string {
	return strings.Join(models.SplitTags(tags), ", ")
}
