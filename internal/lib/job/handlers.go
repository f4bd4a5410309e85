package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/pkg/errors"
)

// now is replaced in tests.
var now = time.Now

// EnqueueCustomerEvent publishes a lifecycle event for customerID.
func (j *JobService) EnqueueCustomerEvent(ctx context.Context, eventType string, customerID int64) error {
	task, err := NewCustomerEventTask(eventType, customerID, now())
	if err != nil {
		return err
	}

	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return errors.Wrapf(err, "enqueue %s for customer %d", eventType, customerID)
	}

	j.logger.Debug().
		Str("type", eventType).
		Str("task_id", info.ID).
		Int64("customer_id", customerID).
		Msg("enqueued customer event")
	return nil
}

// handleCustomerEventTask writes one audit line per lifecycle event.
func (j *JobService) handleCustomerEventTask(ctx context.Context, t *asynq.Task) error {
	var p CustomerEventPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		// A malformed payload will not improve on retry.
		return fmt.Errorf("failed to unmarshal %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}

	if p.CustomerID <= 0 {
		return fmt.Errorf("%s payload has no customer id: %w", t.Type(), asynq.SkipRetry)
	}

	taskID, _ := asynq.GetTaskID(ctx)
	j.logger.Info().
		Str("type", t.Type()).
		Str("task_id", taskID).
		Int64("customer_id", p.CustomerID).
		Time("occurred_at", p.OccurredAt).
		Msg("customer audit event")

	return nil
}
