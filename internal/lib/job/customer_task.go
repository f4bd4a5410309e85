package job

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/pkg/errors"
)

// Customer lifecycle task types.
const (
	TaskCustomerCreated              = "customer:created"
	TaskCustomerPreferredNameUpdated = "customer:preferred_name_updated"
	TaskCustomerDeleted              = "customer:deleted"
)

// CustomerEventPayload is the JSON body of every customer lifecycle task.
type CustomerEventPayload struct {
	CustomerID int64     `json:"customer_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func isCustomerEvent(eventType string) bool {
	switch eventType {
	case TaskCustomerCreated, TaskCustomerPreferredNameUpdated, TaskCustomerDeleted:
		return true
	}
	return false
}

// NewCustomerEventTask builds a task on the default queue with 3 retries
// and a 30 second timeout.
func NewCustomerEventTask(eventType string, customerID int64, occurredAt time.Time) (*asynq.Task, error) {
	if !isCustomerEvent(eventType) {
		return nil, errors.Errorf("unknown customer event %q", eventType)
	}

	payload, err := json.Marshal(CustomerEventPayload{
		CustomerID: customerID,
		OccurredAt: occurredAt.UTC(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal customer event payload")
	}

	return asynq.NewTask(
		eventType,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue(QueueDefault),
		asynq.Timeout(30*time.Second),
	), nil
}
