package bulk

import (
	"context"
	"fmt"

	"catalog/internal/logger"
	"catalog/internal/models"
	"catalog/internal/repository"
	"catalog/internal/worker/processors/ai"
)

// Report summarizes one bulk run.
type Report struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Job optimizes every stored product, one at a time.
type Job struct {
	products  repository.ProductRepository
	optimized repository.OptimizedProductRepository
	optimizer ai.ProductOptimizer
	logger    *logger.Logger
}

func New(products repository.ProductRepository, optimized repository.OptimizedProductRepository, optimizer ai.ProductOptimizer, logger *logger.Logger) *Job {
	return &Job{products: products, optimized: optimized, optimizer: optimizer, logger: logger}
}

// Run optimizes all products sequentially. A product that fails is logged
// and skipped; only listing the products can fail the run.
func (j *Job) Run(ctx context.Context, opts ai.Options) (Report, error) {
	products, err := j.products.FindAll(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list products: %w", err)
	}

	report := Report{Total: len(products)}
	for i := range products {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		p := &products[i]

		res := j.optimizer.Optimize(ctx, ai.InputFor(p), opts)
		if res.Failed() {
			j.logger.Error("Optimizing product %d failed: %s", p.ID, res.Error)
			report.Failed++
			continue
		}

		if err := j.optimized.Create(ctx, models.NewOptimizedProduct(p, res.Data)); err != nil {
			j.logger.Error("Saving optimized product for %d failed: %v", p.ID, err)
			report.Failed++
			continue
		}
		report.Succeeded++
	}

	j.logger.Info("Bulk optimization complete: total=%d succeeded=%d failed=%d",
		report.Total, report.Succeeded, report.Failed)
	return report, nil
}
