package ai

import (
	"context"
	"math"

	"catalog/internal/logger"
	"catalog/internal/repository"
)

const NoComparisonData = "No products found for comparison or all comparisons failed."

// Comparer is the part of InsightService the aggregator needs.
type Comparer interface {
	Compare(ctx context.Context, original, optimized string) (map[string]interface{}, error)
}

// Summary holds average comparison scores over all optimized products.
type Summary struct {
	AverageOriginalOverallScore  float64 `json:"average_original_overall_score"`
	AverageOptimizedOverallScore float64 `json:"average_optimized_overall_score"`
	AverageSEOKeywordRichness    float64 `json:"average_seo_keyword_richness"`
	AverageClarityReadability    float64 `json:"average_clarity_readability"`
	AveragePersuasiveness        float64 `json:"average_persuasiveness"`
	AverageUniqueness            float64 `json:"average_uniqueness"`
	AverageBestPractices         float64 `json:"average_best_practices"`
	ComparedProductsCount        int     `json:"compared_products_count"`
	Message                      string  `json:"message,omitempty"`
}

type Aggregator struct {
	products  repository.ProductRepository
	optimized repository.OptimizedProductRepository
	comparer  Comparer
	logger    *logger.Logger
}

func NewAggregator(products repository.ProductRepository, optimized repository.OptimizedProductRepository, comparer Comparer, logger *logger.Logger) *Aggregator {
	return &Aggregator{products: products, optimized: optimized, comparer: comparer, logger: logger}
}

// Summarize compares every optimized product with its original and averages
// the scores. Pairs that fail to compare are logged and left out.
func (a *Aggregator) Summarize(ctx context.Context) (Summary, error) {
	rows, err := a.optimized.FindAll(ctx)
	if err != nil {
		return Summary{}, err
	}

	var (
		count            int
		origTotal, optTotal float64
		metrics          = make(map[string]float64, len(ComparisonMetrics))
	)
	for i := range rows {
		op := &rows[i]
		orig, err := a.products.FindByID(ctx, op.OriginalProductID)
		if err != nil {
			a.logger.Warn("Skipping optimized product %d: %v", op.ID, err)
			continue
		}

		data, err := a.comparer.Compare(ctx, orig.Description, op.Description)
		if err != nil {
			a.logger.Error("Error comparing product %d: %v", op.ID, err)
			continue
		}
		cmp, ok := ParseComparison(data)
		if !ok {
			a.logger.Warn("Comparison for product %d has no overall score", op.ID)
			continue
		}

		origTotal += cmp.Overall.Original
		optTotal += cmp.Overall.Optimized
		for name, score := range cmp.Metrics {
			metrics[name] += score.Optimized
		}
		count++
	}

	if count == 0 {
		return Summary{Message: NoComparisonData}, nil
	}

	n := float64(count)
	return Summary{
		AverageOriginalOverallScore:  round2(origTotal / n),
		AverageOptimizedOverallScore: round2(optTotal / n),
		AverageSEOKeywordRichness:    round2(metrics["seo_keyword_richness"] / n),
		AverageClarityReadability:    round2(metrics["clarity_readability"] / n),
		AveragePersuasiveness:        round2(metrics["persuasiveness"] / n),
		AverageUniqueness:            round2(metrics["uniqueness"] / n),
		AverageBestPractices:         round2(metrics["best_practices"] / n),
		ComparedProductsCount:        count,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
