package ai

import (
	"context"
	"strings"
	"time"

	"catalog/internal/logger"
	"catalog/internal/retry"
	"catalog/internal/services/llm"
)

const (
	ErrParseJSON    = "Failed to parse JSON"
	ErrMissingTitle = "Model output missing title"
)

// ProductInput is the copy the optimizer rewrites.
type ProductInput struct {
	ID          uint   `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Tags        string `json:"tags"`
}

// Options steer the rewrite. All fields are optional.
type Options struct {
	Category    string `json:"category,omitempty"`
	SEOFocus    string `json:"seo_focus,omitempty"`
	WritingTone string `json:"writing_tone,omitempty"`
}

// Result is either parsed model output (Data) or an error descriptor.
type Result struct {
	Data      map[string]interface{}
	Error     string
	RawOutput string
}

func (r Result) Failed() bool {
	return r.Error != ""
}

// Map renders the result the way API callers see it: the parsed object, or
// {"error": ..., "raw_output": ...}. Model output failures always carry
// raw_output, even when the model returned nothing.
func (r Result) Map() map[string]interface{} {
	if !r.Failed() {
		return r.Data
	}
	out := map[string]interface{}{"error": r.Error}
	if r.RawOutput != "" || r.Error == ErrParseJSON || r.Error == ErrMissingTitle {
		out["raw_output"] = r.RawOutput
	}
	return out
}

type Optimizer struct {
	generator llm.Generator
	policy    retry.Policy
	logger    *logger.Logger
}

func New(generator llm.Generator, policy retry.Policy, logger *logger.Logger) *Optimizer {
	return &Optimizer{
		generator: generator,
		policy:    policy,
		logger:    logger,
	}
}

// NewRetryPolicy retries provider rate limiting with doubling delays.
func NewRetryPolicy(maxAttempts int, initialDelay time.Duration, logger *logger.Logger) retry.Policy {
	return retry.Policy{
		MaxAttempts:  maxAttempts,
		InitialDelay: initialDelay,
		Retryable:    llm.IsResourceExhausted,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			logger.Warn("LLM rate limited (attempt %d/%d), retrying in %s: %v", attempt, maxAttempts, delay, err)
		},
	}
}

// Optimize asks the model for a better title, description and keyword list.
// It never returns a Go error: failures are reported through Result.Error.
func (o *Optimizer) Optimize(ctx context.Context, product ProductInput, opts Options) Result {
	prompt, err := buildOptimizePrompt(product, opts)
	if err != nil {
		return Result{Error: err.Error()}
	}

	o.logger.Debug("Optimizing product %d with %s", product.ID, o.generator.Name())

	var text string
	err = o.policy.Do(ctx, func(ctx context.Context) error {
		out, err := o.generator.Generate(ctx, llm.Request{Prompt: prompt, JSON: true})
		if err != nil {
			return err
		}
		text = out
		return nil
	})
	if err != nil {
		o.logger.Error("Optimization of product %d failed: %v", product.ID, err)
		return Result{Error: err.Error()}
	}

	data, err := llm.ParseObject(text)
	if err != nil {
		o.logger.Warn("Model output for product %d is not valid JSON: %v", product.ID, err)
		return Result{Error: ErrParseJSON, RawOutput: text}
	}
	if !hasTitle(data) {
		return Result{Error: ErrMissingTitle, RawOutput: text}
	}
	return Result{Data: data}
}

func hasTitle(data map[string]interface{}) bool {
	for _, k := range []string{"suggested_title", "title"} {
		if s, ok := data[k].(string); ok && strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}
