package ai

import (
	"context"
	"errors"
	"testing"

	"catalog/internal/database"
	"catalog/internal/logger"
	"catalog/internal/models"
	"catalog/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeComparer struct {
	results map[string]map[string]interface{}
	errs    map[string]error
}

func (f *fakeComparer) Compare(_ context.Context, original, optimized string) (map[string]interface{}, error) {
	if err := f.errs[optimized]; err != nil {
		return nil, err
	}
	return f.results[optimized], nil
}

func scores(origOverall, optOverall, metric float64) map[string]interface{} {
	cmp := map[string]interface{}{}
	for _, name := range ComparisonMetrics {
		cmp[name] = map[string]interface{}{"original": 0.0, "optimized": metric}
	}
	return map[string]interface{}{
		"comparison":    cmp,
		"overall_score": map[string]interface{}{"original": origOverall, "optimized": optOverall},
	}
}

func setupAggregator(t *testing.T, descriptions ...string) (repository.ProductRepository, repository.OptimizedProductRepository) {
	db, err := database.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { database.CleanupTestDB(db) })

	products := repository.NewProductRepository(db)
	optimized := repository.NewOptimizedProductRepository(db)
	ctx := context.Background()
	for _, d := range descriptions {
		p := &models.Product{Title: d, Description: "orig " + d}
		require.NoError(t, products.Create(ctx, p))
		require.NoError(t, optimized.Create(ctx, &models.OptimizedProduct{OriginalProductID: p.ID, Title: d, Description: d}))
	}
	return products, optimized
}

func TestAggregator_NoRows(t *testing.T) {
	products, optimized := setupAggregator(t)
	agg := NewAggregator(products, optimized, &fakeComparer{}, logger.NewNop())

	summary, err := agg.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Message: NoComparisonData}, summary)
}

func TestAggregator_ExcludesFailures(t *testing.T) {
	products, optimized := setupAggregator(t, "p1", "p2", "p3", "p4", "p5")
	cmp := &fakeComparer{
		results: map[string]map[string]interface{}{
			"p1": scores(10, 70, 80),
			"p2": scores(20, 80, 90),
			"p3": scores(30, 90, 70),
			"p5": {"raw_output": "garbage", "error": ErrInvalidModelJSON},
		},
		errs: map[string]error{"p4": errors.New("upstream down")},
	}
	agg := NewAggregator(products, optimized, cmp, logger.NewNop())

	summary, err := agg.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.ComparedProductsCount)
	assert.Equal(t, 20.0, summary.AverageOriginalOverallScore)
	assert.Equal(t, 80.0, summary.AverageOptimizedOverallScore)
	assert.Equal(t, 80.0, summary.AverageSEOKeywordRichness)
	assert.Equal(t, 80.0, summary.AverageBestPractices)
	assert.Empty(t, summary.Message)
}

func TestAggregator_RoundsToTwoDecimals(t *testing.T) {
	products, optimized := setupAggregator(t, "a", "b", "c")
	cmp := &fakeComparer{results: map[string]map[string]interface{}{
		"a": scores(10, 10, 10),
		"b": scores(10, 10, 10),
		"c": scores(11, 11, 11),
	}}

	summary, err := NewAggregator(products, optimized, cmp, logger.NewNop()).Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10.33, summary.AverageOriginalOverallScore)
	assert.Equal(t, 10.33, summary.AverageUniqueness)
}
