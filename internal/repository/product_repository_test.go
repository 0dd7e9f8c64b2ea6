package repository

import (
	"context"
	"testing"

	"catalog/internal/apperr"
	"catalog/internal/database"
	"catalog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepoTest(t *testing.T) (*gorm.DB, ProductRepository, OptimizedProductRepository) {
	testDB, err := database.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { database.CleanupTestDB(testDB) })

	return testDB, NewProductRepository(testDB), NewOptimizedProductRepository(testDB)
}

func TestProductRepository_CreateAndFind(t *testing.T) {
	_, repo, _ := setupRepoTest(t)
	ctx := context.Background()

	product := &models.Product{Title: "Linen Shirt", Price: 4500, SKU: models.StringPtr("LS-1"), Tags: "linen, summer"}
	require.NoError(t, repo.Create(ctx, product))
	assert.NotZero(t, product.ID)

	tests := []struct {
		name    string
		id      uint
		wantErr bool
	}{
		{"Existing product", product.ID, false},
		{"Non-existing product", 9999, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.FindByID(ctx, tt.id)
			if tt.wantErr {
				assert.True(t, apperr.IsNotFound(err))
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Linen Shirt", found.Title)
			assert.Equal(t, models.Money(4500), found.Price)
			assert.Equal(t, []string{"linen", "summer"}, found.TagList())
		})
	}
}

func TestProductRepository_UpdateAndDelete(t *testing.T) {
	_, repo, optRepo := setupRepoTest(t)
	ctx := context.Background()

	product := &models.Product{Title: "Old"}
	require.NoError(t, repo.Create(ctx, product))

	product.Title = "New"
	product.Price = 999
	require.NoError(t, repo.Update(ctx, product))

	found, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", found.Title)
	assert.Equal(t, models.Money(999), found.Price)

	assert.True(t, apperr.IsNotFound(repo.Update(ctx, &models.Product{ID: 404, Title: "x"})))

	require.NoError(t, optRepo.Create(ctx, models.NewOptimizedProduct(found, map[string]interface{}{"title": "Better"})))
	require.NoError(t, repo.Delete(ctx, product.ID))

	_, err = repo.FindByID(ctx, product.ID)
	assert.True(t, apperr.IsNotFound(err))
	rows, err := optRepo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	assert.True(t, apperr.IsNotFound(repo.Delete(ctx, product.ID)))
}

func TestProductRepository_UpsertByShopifyID(t *testing.T) {
	_, repo, _ := setupRepoTest(t)
	ctx := context.Background()

	batch := []models.Product{
		{Title: "A", ShopifyID: models.StringPtr("1"), Price: 100, SKU: models.StringPtr("SKU-A")},
		{Title: "B", ShopifyID: models.StringPtr("2"), Price: 200},
	}
	res, err := repo.UpsertByShopifyID(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, UpsertResult{Created: 2}, res)

	// Same batch again: no duplicates, rows overwritten.
	batch[0].Title = "A v2"
	batch[0].Price = 150
	res, err = repo.UpsertByShopifyID(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, UpsertResult{Updated: 2}, res)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "A v2", all[0].Title)
	assert.Equal(t, models.Money(150), all[0].Price)
}

func TestProductRepository_UpsertRollsBackBatch(t *testing.T) {
	_, repo, _ := setupRepoTest(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Product{Title: "Local", SKU: models.StringPtr("DUP")}))

	_, err := repo.UpsertByShopifyID(ctx, []models.Product{
		{Title: "First", ShopifyID: models.StringPtr("10")},
		{Title: "Clash", ShopifyID: models.StringPtr("11"), SKU: models.StringPtr("DUP")},
	})
	require.Error(t, err)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "first insert must be rolled back with the failing one")
}

func TestProductRepository_UnlinkShopify(t *testing.T) {
	_, repo, _ := setupRepoTest(t)
	ctx := context.Background()

	product := &models.Product{Title: "Linked", ShopifyID: models.StringPtr("77")}
	require.NoError(t, repo.Create(ctx, product))

	found, err := repo.FindByShopifyID(ctx, "77")
	require.NoError(t, err)
	assert.Equal(t, product.ID, found.ID)

	require.NoError(t, repo.UnlinkShopify(ctx, "77"))
	_, err = repo.FindByShopifyID(ctx, "77")
	assert.True(t, apperr.IsNotFound(err))

	kept, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.ShopifyID)

	assert.True(t, apperr.IsNotFound(repo.UnlinkShopify(ctx, "77")))
}
