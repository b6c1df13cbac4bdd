package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProcessor struct {
	bodies [][]byte
	err    error
}

func (m *mockProcessor) ProcessOrder(ctx context.Context, body []byte) error {
	if m.err != nil {
		return m.err
	}
	m.bodies = append(m.bodies, body)
	return nil
}

func TestNewOrderSyncTaskCarriesDeliveryID(t *testing.T) {
	task, opts, err := NewOrderSyncTask(OrderSyncPayload{
		DeliveryID: "delivery-42",
		Body:       json.RawMessage(`{"id":5001}`),
	})
	require.NoError(t, err)
	assert.Equal(t, TaskTypeOrderSync, task.Type())
	// Queue option plus the task id derived from the delivery.
	assert.Len(t, opts, 2)

	var payload OrderSyncPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "delivery-42", payload.DeliveryID)
}

func TestNewOrderSyncTaskWithoutDeliveryID(t *testing.T) {
	_, opts, err := NewOrderSyncTask(OrderSyncPayload{Body: json.RawMessage(`{}`)})
	require.NoError(t, err)
	assert.Len(t, opts, 1)
}

func TestOrderSyncJobHandle(t *testing.T) {
	processor := &mockProcessor{}
	job := NewOrderSyncJob(slog.New(slog.NewTextHandler(io.Discard, nil)), processor)

	task, _, err := NewOrderSyncTask(OrderSyncPayload{
		DeliveryID: "delivery-42",
		Body:       json.RawMessage(`{"id":5001,"line_items":[]}`),
	})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.Len(t, processor.bodies, 1)
	assert.JSONEq(t, `{"id":5001,"line_items":[]}`, string(processor.bodies[0]))
}

func TestOrderSyncJobSkipsMalformedPayload(t *testing.T) {
	job := NewOrderSyncJob(nil, &mockProcessor{})
	task := asynq.NewTask(TaskTypeOrderSync, []byte("{not json"))

	err := job.Handle(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestOrderSyncJobPropagatesProcessorError(t *testing.T) {
	processor := &mockProcessor{err: errors.New("store unavailable")}
	job := NewOrderSyncJob(nil, processor)

	task, _, err := NewOrderSyncTask(OrderSyncPayload{Body: json.RawMessage(`{"id":1}`)})
	require.NoError(t, err)

	assert.Error(t, job.Handle(context.Background(), task))
}
