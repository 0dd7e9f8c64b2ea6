package ai

import (
	"context"
	"strconv"

	"catalog/internal/apperr"
	"catalog/internal/cache"
	"catalog/internal/logger"
	"catalog/internal/models"
	"catalog/internal/retry"
	"catalog/internal/services/llm"
)

const ErrInvalidModelJSON = "model did not return valid JSON"

// Metrics scored by Compare, in report order.
var ComparisonMetrics = []string{
	"seo_keyword_richness",
	"clarity_readability",
	"persuasiveness",
	"uniqueness",
	"best_practices",
}

// InsightService produces marketing insights, comparisons and chat replies.
type InsightService struct {
	generator llm.Generator
	chat      llm.Generator
	cache     cache.Cache
	policy    *retry.Policy
	logger    *logger.Logger
}

type InsightOption func(*InsightService)

// WithRetry applies policy to insight and comparison calls. Without it a rate
// limit surfaces on the first failure.
func WithRetry(policy retry.Policy) InsightOption {
	return func(s *InsightService) { s.policy = &policy }
}

// WithChatGenerator uses a separate model for free-text chat.
func WithChatGenerator(g llm.Generator) InsightOption {
	return func(s *InsightService) { s.chat = g }
}

func NewInsightService(generator llm.Generator, c cache.Cache, logger *logger.Logger, opts ...InsightOption) *InsightService {
	s := &InsightService{
		generator: generator,
		chat:      generator,
		cache:     c,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateInsights returns marketing insights for a description.
func (s *InsightService) GenerateInsights(ctx context.Context, description string) (map[string]interface{}, error) {
	return s.generateJSON(ctx, buildInsightsPrompt(description), 500)
}

// CompetitorInsights analyzes an optimized product and caches the result under
// its id.
func (s *InsightService) CompetitorInsights(ctx context.Context, product *models.OptimizedProduct) (map[string]interface{}, error) {
	insights, err := s.generateJSON(ctx, buildCompetitorPrompt(product), 1000)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, cache.InsightKey(product.ID), insights); err != nil {
		s.logger.Warn("Failed to cache insights for product %d: %v", product.ID, err)
	}
	return insights, nil
}

// CachedInsights returns the last insights generated for productID.
func (s *InsightService) CachedInsights(ctx context.Context, productID uint) (map[string]interface{}, error) {
	var insights map[string]interface{}
	ok, err := s.cache.Get(ctx, cache.InsightKey(productID), &insights)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("insights for product", productID)
	}
	return insights, nil
}

// Compare scores an original and optimized description on each metric.
func (s *InsightService) Compare(ctx context.Context, original, optimized string) (map[string]interface{}, error) {
	return s.generateJSON(ctx, buildComparisonPrompt(original, optimized), 1000)
}

// Chat answers a free-text question with optional product context prepended.
func (s *InsightService) Chat(ctx context.Context, message string, original *models.Product, optimized *models.OptimizedProduct) (string, error) {
	reply, err := s.chat.Generate(ctx, llm.Request{Prompt: buildChatPrompt(message, original, optimized)})
	if err != nil {
		return "", apperr.Upstream(s.chat.Name(), err)
	}
	return reply, nil
}

// generateJSON calls the model in JSON mode. Unparseable output is returned
// as {"raw_output", "error"} rather than an error.
func (s *InsightService) generateJSON(ctx context.Context, prompt string, maxTokens int) (map[string]interface{}, error) {
	req := llm.Request{Prompt: prompt, JSON: true, MaxTokens: maxTokens, Temperature: llm.Float64(0.7)}

	var text string
	call := func(ctx context.Context) error {
		out, err := s.generator.Generate(ctx, req)
		if err != nil {
			return err
		}
		text = out
		return nil
	}

	var err error
	if s.policy != nil {
		err = s.policy.Do(ctx, call)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, apperr.Upstream(s.generator.Name(), err)
	}

	data, perr := llm.ParseObject(text)
	if perr != nil {
		s.logger.Warn("%s returned invalid JSON: %v", s.generator.Name(), perr)
		return map[string]interface{}{"raw_output": text, "error": ErrInvalidModelJSON}, nil
	}
	return data, nil
}

// Score is one original/optimized pair from a comparison.
type Score struct {
	Original  float64 `json:"original"`
	Optimized float64 `json:"optimized"`
}

// Comparison is the numeric part of Compare's output.
type Comparison struct {
	Overall Score
	Metrics map[string]Score
}

// ParseComparison reads scores out of Compare's output. It reports false when
// the overall score is missing, which is how failed comparisons look.
func ParseComparison(data map[string]interface{}) (Comparison, bool) {
	overall, ok := parseScore(data["overall_score"])
	if !ok {
		return Comparison{}, false
	}

	c := Comparison{Overall: overall, Metrics: make(map[string]Score, len(ComparisonMetrics))}
	nested, _ := data["comparison"].(map[string]interface{})
	for _, metric := range ComparisonMetrics {
		if score, ok := parseScore(nested[metric]); ok {
			c.Metrics[metric] = score
		} else if score, ok := parseScore(data[metric]); ok {
			c.Metrics[metric] = score
		}
	}
	return c, true
}

func parseScore(v interface{}) (Score, bool) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return Score{}, false
	}
	orig, ok1 := toFloat(m["original"])
	opt, ok2 := toFloat(m["optimized"])
	if !ok1 || !ok2 {
		return Score{}, false
	}
	return Score{Original: orig, Optimized: opt}, true
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
