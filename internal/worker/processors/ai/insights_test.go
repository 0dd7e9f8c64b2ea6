package ai

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"catalog/internal/apperr"
	"catalog/internal/cache"
	"catalog/internal/logger"
	"catalog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const comparisonJSON = `{
  "comparison": {
    "seo_keyword_richness": {"original": 40, "optimized": 80, "insight": "more keywords"},
    "clarity_readability": {"original": 50, "optimized": 70, "insight": "clearer"},
    "persuasiveness": {"original": 30, "optimized": 90, "insight": "stronger CTA"},
    "uniqueness": {"original": 20, "optimized": 60, "insight": "less generic"},
    "best_practices": {"original": 45, "optimized": 85, "insight": "better length"}
  },
  "overall_score": {"original": 35, "optimized": 80, "insight": "big lift"},
  "conclusion": "Optimized wins."
}`

func TestInsightService_GenerateInsights(t *testing.T) {
	gen := script(reply{text: `{"product_overview":"A mug","overall_optimization_score":70}`})
	svc := NewInsightService(gen, cache.NewMemory(), logger.NewNop())

	out, err := svc.GenerateInsights(context.Background(), "A mug")
	require.NoError(t, err)
	assert.Equal(t, "A mug", out["product_overview"])

	req := gen.reqs[0]
	assert.True(t, req.JSON)
	assert.Equal(t, 500, req.MaxTokens)
	assert.Equal(t, 0.7, *req.Temperature)
}

func TestInsightService_InvalidJSONIsNotAnError(t *testing.T) {
	svc := NewInsightService(script(reply{text: "sorry"}), cache.NewMemory(), logger.NewNop())

	out, err := svc.Compare(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "sorry", out["raw_output"])
	assert.Equal(t, ErrInvalidModelJSON, out["error"])
}

func TestInsightService_ProviderErrorIsUpstream(t *testing.T) {
	svc := NewInsightService(script(reply{err: errors.New("connection refused")}), cache.NewMemory(), logger.NewNop())

	_, err := svc.GenerateInsights(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, apperr.HTTPStatus(err))
}

func TestInsightService_ComparisonRetryIsOptIn(t *testing.T) {
	gen := script(reply{err: rateLimited}, reply{text: comparisonJSON})

	_, err := NewInsightService(gen, cache.NewMemory(), logger.NewNop()).Compare(context.Background(), "a", "b")
	assert.Error(t, err)
	assert.Equal(t, 1, gen.calls())

	gen = script(reply{err: rateLimited}, reply{text: comparisonJSON})
	svc := NewInsightService(gen, cache.NewMemory(), logger.NewNop(), WithRetry(testPolicy(nil)))
	out, err := svc.Compare(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "Optimized wins.", out["conclusion"])
	assert.Equal(t, 2, gen.calls())
	assert.Equal(t, 1000, gen.reqs[1].MaxTokens)
}

func TestInsightService_CompetitorInsightsAreCached(t *testing.T) {
	svc := NewInsightService(script(reply{text: `{"keyword_suggestions":["mug"]}`}), cache.NewMemory(), logger.NewNop())
	ctx := context.Background()

	_, err := svc.CachedInsights(ctx, 9)
	assert.True(t, apperr.IsNotFound(err))

	out, err := svc.CompetitorInsights(ctx, &models.OptimizedProduct{ID: 9, Title: "Mug"})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"mug"}, out["keyword_suggestions"])

	cached, err := svc.CachedInsights(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, out, cached)
}

func TestInsightService_ChatPrependsContext(t *testing.T) {
	chat := script(reply{text: "Use a warmer tone."})
	svc := NewInsightService(script(reply{text: "{}"}), cache.NewMemory(), logger.NewNop(), WithChatGenerator(chat))

	answer, err := svc.Chat(context.Background(), "How can I improve it?",
		&models.Product{Title: "Mug", Price: 1250, SKU: models.StringPtr("MUG")},
		&models.OptimizedProduct{Title: "Better Mug"})
	require.NoError(t, err)
	assert.Equal(t, "Use a warmer tone.", answer)

	prompt := chat.reqs[0].Prompt
	assert.Contains(t, prompt, "Original Product Details: Title: Mug")
	assert.Contains(t, prompt, "Price: 12.50, SKU: MUG")
	assert.Contains(t, prompt, "Optimized Product Details: Title: Better Mug")
	assert.Contains(t, prompt, "How can I improve it?")
	assert.False(t, chat.reqs[0].JSON)
}

func TestParseComparison(t *testing.T) {
	svc := NewInsightService(script(reply{text: comparisonJSON}), cache.NewMemory(), logger.NewNop())
	out, err := svc.Compare(context.Background(), "a", "b")
	require.NoError(t, err)

	cmp, ok := ParseComparison(out)
	require.True(t, ok)
	assert.Equal(t, Score{Original: 35, Optimized: 80}, cmp.Overall)
	assert.Equal(t, Score{Original: 30, Optimized: 90}, cmp.Metrics["persuasiveness"])
	assert.Len(t, cmp.Metrics, 5)

	_, ok = ParseComparison(map[string]interface{}{"raw_output": "x", "error": "bad"})
	assert.False(t, ok)

	cmp, ok = ParseComparison(map[string]interface{}{
		"overall_score": map[string]interface{}{"original": "10", "optimized": "20.5"},
	})
	require.True(t, ok)
	assert.Equal(t, Score{Original: 10, Optimized: 20.5}, cmp.Overall)
}
