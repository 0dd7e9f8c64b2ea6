package export

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"catalog/internal/apperr"
	"catalog/internal/database"
	"catalog/internal/logger"
	"catalog/internal/models"
	"catalog/internal/repository"
	"catalog/internal/services/shopify"
	"catalog/internal/worker/processors/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pushCall struct {
	id      string
	payload shopify.ProductPayload
}

type fakeShopify struct {
	calls []pushCall
	err   error
}

func (f *fakeShopify) UpdateProduct(_ context.Context, id string, p shopify.ProductPayload) (*shopify.Product, error) {
	f.calls = append(f.calls, pushCall{id, p})
	if f.err != nil {
		return nil, f.err
	}
	return &shopify.Product{Title: p.Title}, nil
}

func setup(t *testing.T) (repository.ProductRepository, repository.OptimizedProductRepository) {
	db, err := database.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { database.CleanupTestDB(db) })
	return repository.NewProductRepository(db), repository.NewOptimizedProductRepository(db)
}

func TestExporter_PushLatest(t *testing.T) {
	products, optimized := setup(t)
	ctx := context.Background()

	p := &models.Product{Title: "Mug", Price: 1250, SKU: models.StringPtr("MUG"), ShopifyID: models.StringPtr("555")}
	require.NoError(t, products.Create(ctx, p))
	require.NoError(t, optimized.Create(ctx, models.NewOptimizedProduct(p, map[string]interface{}{"title": "v1"})))
	require.NoError(t, optimized.Create(ctx, models.NewOptimizedProduct(p, map[string]interface{}{"title": "v2", "tags": "a, b"})))

	fake := &fakeShopify{}
	exp := New(optimized, fake, validation.New(logger.NewNop()), logger.NewNop())

	op, err := exp.PushLatest(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", op.Title)

	require.Len(t, fake.calls, 1)
	assert.Equal(t, "555", fake.calls[0].id)
	assert.Equal(t, shopify.ProductPayload{
		Title:    "v2",
		Tags:     "a, b",
		Variants: []shopify.VariantPayload{{Price: "12.50", SKU: "MUG"}},
	}, fake.calls[0].payload)
}

func TestExporter_RequiresShopifyID(t *testing.T) {
	products, optimized := setup(t)
	ctx := context.Background()

	p := &models.Product{Title: "Local only"}
	require.NoError(t, products.Create(ctx, p))
	op := models.NewOptimizedProduct(p, map[string]interface{}{"title": "Better"})
	require.NoError(t, optimized.Create(ctx, op))

	fake := &fakeShopify{}
	_, err := New(optimized, fake, validation.New(logger.NewNop()), logger.NewNop()).PushOptimized(ctx, op.ID)
	assert.Equal(t, http.StatusBadRequest, apperr.HTTPStatus(err))
	assert.Empty(t, fake.calls)
}

func TestExporter_Errors(t *testing.T) {
	products, optimized := setup(t)
	ctx := context.Background()

	exp := New(optimized, &fakeShopify{}, validation.New(logger.NewNop()), logger.NewNop())
	_, err := exp.PushOptimized(ctx, 42)
	assert.True(t, apperr.IsNotFound(err))
	_, err = exp.PushLatest(ctx, 42)
	assert.True(t, apperr.IsNotFound(err))

	p := &models.Product{Title: "Mug", ShopifyID: models.StringPtr("1")}
	require.NoError(t, products.Create(ctx, p))
	op := models.NewOptimizedProduct(p, map[string]interface{}{"title": "Better"})
	require.NoError(t, optimized.Create(ctx, op))

	upstream := apperr.Upstream("shopify", errors.New("API request failed: 500 - oops"))
	_, err = New(optimized, &fakeShopify{err: upstream}, validation.New(logger.NewNop()), logger.NewNop()).PushOptimized(ctx, op.ID)
	assert.Equal(t, http.StatusBadGateway, apperr.HTTPStatus(err))
}
