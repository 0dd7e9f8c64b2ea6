package processors

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"catalog/internal/apperr"
	"catalog/internal/logger"
	"catalog/internal/models"
	"catalog/internal/worker/processors/ai"
	"catalog/internal/worker/processors/bulk"
	"catalog/internal/worker/processors/shopifysync"
)

// Event types carried on the job topic.
const (
	EventSync            = "catalog.sync"
	EventOptimizeAll     = "catalog.optimize_all"
	EventOptimizeProduct = "catalog.optimize_product"
	EventPushLatest      = "catalog.push_latest"
)

type Event struct {
	Type      string                 `json:"type"`
	ProductID string                 `json:"product_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewEvent stamps an event with the current time.
func NewEvent(eventType string, productID string, data map[string]interface{}) Event {
	return Event{Type: eventType, ProductID: productID, Data: data, Timestamp: time.Now().UTC()}
}

type Syncer interface {
	Run(ctx context.Context, limit int) (shopifysync.Report, error)
}

type BulkOptimizer interface {
	Run(ctx context.Context, opts ai.Options) (bulk.Report, error)
}

type ProductOptimizer interface {
	OptimizeProduct(ctx context.Context, productID uint, opts ai.Options) (*models.OptimizedProduct, ai.Result, error)
}

type Pusher interface {
	PushLatest(ctx context.Context, productID uint) (*models.OptimizedProduct, error)
}

type EventProcessor struct {
	logger   *logger.Logger
	sync     Syncer
	bulk     BulkOptimizer
	catalog  ProductOptimizer
	exporter Pusher
}

func NewEventProcessor(logger *logger.Logger, syncJob Syncer, bulkJob BulkOptimizer, catalog ProductOptimizer, exporter Pusher) *EventProcessor {
	return &EventProcessor{
		logger:   logger,
		sync:     syncJob,
		bulk:     bulkJob,
		catalog:  catalog,
		exporter: exporter,
	}
}

// Process runs the job named by the event type.
func (ep *EventProcessor) Process(ctx context.Context, event Event) error {
	ep.logger.Debug("Processing event: %s product=%s", event.Type, event.ProductID)

	switch event.Type {
	case EventSync:
		report, err := ep.sync.Run(ctx, intField(event.Data, "limit"))
		if err != nil {
			return fmt.Errorf("sync: %w", err)
		}
		ep.logger.Info("Sync event done: %+v", report)

	case EventOptimizeAll:
		opts, err := optionsFrom(event.Data)
		if err != nil {
			return err
		}
		report, err := ep.bulk.Run(ctx, opts)
		if err != nil {
			return fmt.Errorf("optimize all: %w", err)
		}
		ep.logger.Info("Bulk optimize event done: %+v", report)

	case EventOptimizeProduct:
		id, err := productID(event)
		if err != nil {
			return err
		}
		opts, err := optionsFrom(event.Data)
		if err != nil {
			return err
		}
		op, res, err := ep.catalog.OptimizeProduct(ctx, id, opts)
		if err != nil {
			return fmt.Errorf("optimize product %d: %w", id, err)
		}
		if res.Failed() {
			return fmt.Errorf("optimize product %d: %s", id, res.Error)
		}
		ep.logger.Info("Product %d optimized as %d", id, op.ID)

	case EventPushLatest:
		id, err := productID(event)
		if err != nil {
			return err
		}
		if _, err := ep.exporter.PushLatest(ctx, id); err != nil {
			return fmt.Errorf("push product %d: %w", id, err)
		}

	default:
		return apperr.Invalid("unknown event type %q", event.Type)
	}
	return nil
}

func productID(event Event) (uint, error) {
	id, err := strconv.ParseUint(event.ProductID, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Invalid("event %s has invalid product_id %q", event.Type, event.ProductID)
	}
	return uint(id), nil
}

func optionsFrom(data map[string]interface{}) (ai.Options, error) {
	var opts ai.Options
	if len(data) == 0 {
		return opts, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return opts, err
	}
	if err := json.Unmarshal(raw, &opts); err != nil {
		return opts, apperr.Invalid("bad optimize options: %v", err)
	}
	return opts, nil
}

// intField reads a JSON number (decoded as float64) or numeric string.
func intField(data map[string]interface{}, key string) int {
	switch v := data[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}
