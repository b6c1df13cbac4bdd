// Package jobs defines background tasks and the Asynq worker wiring.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeOrderSync applies a Shopify order webhook to the catalog.
	TaskTypeOrderSync = "shopify:order_sync"
)

// OrderSyncPayload carries a verified webhook delivery into the queue.
type OrderSyncPayload struct {
	DeliveryID string          `json:"delivery_id"`
	Body       json.RawMessage `json:"body"`
}

// NewOrderSyncTask constructs an Asynq task for an order webhook. The
// delivery id doubles as the task id so redelivered webhooks collapse
// into one job.
func NewOrderSyncTask(payload OrderSyncPayload) (*asynq.Task, []asynq.Option, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	opts := []asynq.Option{asynq.Queue(QueueDefault)}
	if payload.DeliveryID != "" {
		opts = append(opts, asynq.TaskID(payload.DeliveryID))
	}
	return asynq.NewTask(TaskTypeOrderSync, data), opts, nil
}

// OrderProcessor applies an order payload to the catalog.
type OrderProcessor interface {
	ProcessOrder(ctx context.Context, body []byte) error
}

// OrderSyncJob handles TaskTypeOrderSync tasks.
type OrderSyncJob struct {
	Logger  *slog.Logger
	Service OrderProcessor
}

// NewOrderSyncJob initialises the order sync handler.
func NewOrderSyncJob(logger *slog.Logger, service OrderProcessor) *OrderSyncJob {
	return &OrderSyncJob{Logger: logger, Service: service}
}

// Handle executes the order sync logic.
func (j *OrderSyncJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("order sync: handler not configured")
	}
	var payload OrderSyncPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger().With(slog.String("delivery_id", payload.DeliveryID))
	start := time.Now()
	if err := j.Service.ProcessOrder(ctx, payload.Body); err != nil {
		logger.Error("order sync failed", slog.Any("error", err))
		return err
	}
	logger.Info("order sync completed", slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *OrderSyncJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeOrderSync))
	}
	return slog.Default().With(slog.String("job", TaskTypeOrderSync))
}
