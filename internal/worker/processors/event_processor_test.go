package processors

import (
	"context"
	"errors"
	"testing"

	"catalog/internal/apperr"
	"catalog/internal/logger"
	"catalog/internal/models"
	"catalog/internal/worker/processors/ai"
	"catalog/internal/worker/processors/bulk"
	"catalog/internal/worker/processors/shopifysync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	syncLimit int
	bulkOpts  *ai.Options
	optimized []uint
	pushed    []uint
	optResult ai.Result
	pushErr   error
}

func (r *recorder) Run(_ context.Context, limit int) (shopifysync.Report, error) {
	r.syncLimit = limit
	return shopifysync.Report{Fetched: limit}, nil
}

type bulkRecorder struct{ r *recorder }

func (b bulkRecorder) Run(_ context.Context, opts ai.Options) (bulk.Report, error) {
	b.r.bulkOpts = &opts
	return bulk.Report{}, nil
}

func (r *recorder) OptimizeProduct(_ context.Context, id uint, _ ai.Options) (*models.OptimizedProduct, ai.Result, error) {
	r.optimized = append(r.optimized, id)
	if r.optResult.Failed() {
		return nil, r.optResult, nil
	}
	return &models.OptimizedProduct{ID: 1, OriginalProductID: id}, r.optResult, nil
}

func (r *recorder) PushLatest(_ context.Context, id uint) (*models.OptimizedProduct, error) {
	r.pushed = append(r.pushed, id)
	return nil, r.pushErr
}

func newProcessor() (*EventProcessor, *recorder) {
	r := &recorder{}
	return NewEventProcessor(logger.NewNop(), r, bulkRecorder{r}, r, r), r
}

func TestProcess_Sync(t *testing.T) {
	ep, r := newProcessor()

	require.NoError(t, ep.Process(context.Background(), NewEvent(EventSync, "", map[string]interface{}{"limit": float64(7)})))
	assert.Equal(t, 7, r.syncLimit)

	require.NoError(t, ep.Process(context.Background(), NewEvent(EventSync, "", nil)))
	assert.Equal(t, 0, r.syncLimit)
}

func TestProcess_OptimizeAllDecodesOptions(t *testing.T) {
	ep, r := newProcessor()

	err := ep.Process(context.Background(), NewEvent(EventOptimizeAll, "", map[string]interface{}{
		"category":     "kitchen",
		"writing_tone": "warm",
	}))
	require.NoError(t, err)
	require.NotNil(t, r.bulkOpts)
	assert.Equal(t, ai.Options{Category: "kitchen", WritingTone: "warm"}, *r.bulkOpts)
}

func TestProcess_OptimizeProduct(t *testing.T) {
	ep, r := newProcessor()
	r.optResult = ai.Result{Data: map[string]interface{}{"title": "x"}}

	require.NoError(t, ep.Process(context.Background(), NewEvent(EventOptimizeProduct, "42", nil)))
	assert.Equal(t, []uint{42}, r.optimized)

	r.optResult = ai.Result{Error: ai.ErrParseJSON}
	err := ep.Process(context.Background(), NewEvent(EventOptimizeProduct, "42", nil))
	assert.ErrorContains(t, err, ai.ErrParseJSON)
}

func TestProcess_PushLatest(t *testing.T) {
	ep, r := newProcessor()

	require.NoError(t, ep.Process(context.Background(), NewEvent(EventPushLatest, "3", nil)))
	assert.Equal(t, []uint{3}, r.pushed)

	r.pushErr = errors.New("shopify down")
	assert.ErrorContains(t, ep.Process(context.Background(), NewEvent(EventPushLatest, "3", nil)), "shopify down")
}

func TestProcess_RejectsBadEvents(t *testing.T) {
	ep, _ := newProcessor()
	var verr *apperr.ValidationError

	err := ep.Process(context.Background(), NewEvent("catalog.unknown", "", nil))
	assert.ErrorAs(t, err, &verr)

	err = ep.Process(context.Background(), NewEvent(EventPushLatest, "abc", nil))
	assert.ErrorAs(t, err, &verr)
}
