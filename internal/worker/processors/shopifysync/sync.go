package shopifysync

import (
	"context"
	"fmt"

	"catalog/internal/apperr"
	"catalog/internal/logger"
	"catalog/internal/models"
	"catalog/internal/repository"
	"catalog/internal/services/shopify"
	"catalog/internal/worker/processors/validation"
)

const DefaultLimit = 20

// Fetcher is the part of the Shopify client the sync job uses.
type Fetcher interface {
	GetProducts(ctx context.Context, limit int) ([]shopify.Product, error)
}

// Report summarizes one sync run.
type Report struct {
	Fetched int `json:"fetched"`
	Skipped int `json:"skipped"`
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// Job pulls products from Shopify and upserts them by Shopify id.
type Job struct {
	shopify      Fetcher
	products     repository.ProductRepository
	transformer  *shopify.Transformer
	validator    *validation.Validator
	defaultLimit int
	logger       *logger.Logger
}

func New(client Fetcher, products repository.ProductRepository, validator *validation.Validator, defaultLimit int, logger *logger.Logger) *Job {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	return &Job{
		shopify:      client,
		products:     products,
		transformer:  shopify.NewTransformer(),
		validator:    validator,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// Run fetches up to limit products (the configured default when limit <= 0)
// and writes them in one transaction. Products that fail validation are
// skipped; a storage error rolls back the whole batch.
func (j *Job) Run(ctx context.Context, limit int) (Report, error) {
	if limit <= 0 {
		limit = j.defaultLimit
	}

	remote, err := j.shopify.GetProducts(ctx, limit)
	if err != nil {
		return Report{}, fmt.Errorf("fetch shopify products: %w", err)
	}
	report := Report{Fetched: len(remote)}

	batch := make([]models.Product, 0, len(remote))
	for _, p := range j.transformer.TransformProducts(remote) {
		if err := j.validator.ValidateProduct(&p); err != nil {
			j.logger.Warn("Skipping Shopify product %s: %v", models.StringValue(p.ShopifyID), err)
			continue
		}
		batch = append(batch, p)
	}
	report.Skipped = len(remote) - len(batch)

	if len(batch) == 0 {
		return report, nil
	}

	res, err := j.products.UpsertByShopifyID(ctx, batch)
	if err != nil {
		return report, fmt.Errorf("upsert shopify products: %w", err)
	}
	report.Created = res.Created
	report.Updated = res.Updated

	j.logger.Info("Shopify sync complete: fetched=%d created=%d updated=%d skipped=%d",
		report.Fetched, report.Created, report.Updated, report.Skipped)
	return report, nil
}

// ApplyWebhook upserts or unlinks a single product from a products/* webhook.
func (j *Job) ApplyWebhook(ctx context.Context, topic string, payload *shopify.WebhookPayload) error {
	if payload.ID == 0 {
		return apperr.Invalid("webhook payload has no product id")
	}

	switch topic {
	case shopify.TopicProductsCreate, shopify.TopicProductsUpdate:
		p := j.transformer.TransformProduct(payload)
		if err := j.validator.ValidateProduct(&p); err != nil {
			return err
		}
		_, err := j.products.UpsertByShopifyID(ctx, []models.Product{p})
		return err
	case shopify.TopicProductsDelete:
		err := j.products.UnlinkShopify(ctx, fmt.Sprint(payload.ID))
		if apperr.IsNotFound(err) {
			return nil
		}
		return err
	default:
		return apperr.Invalid("unsupported webhook topic %q", topic)
	}
}
