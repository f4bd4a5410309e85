package job

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

func TestNewCustomerEventTask(t *testing.T) {
	at := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	task, err := NewCustomerEventTask(TaskCustomerCreated, 42, at)
	if err != nil {
		t.Fatalf("NewCustomerEventTask: %v", err)
	}
	if task.Type() != TaskCustomerCreated {
		t.Errorf("type = %s", task.Type())
	}

	var p CustomerEventPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.CustomerID != 42 || !p.OccurredAt.Equal(at) || p.OccurredAt.Location() != time.UTC {
		t.Errorf("payload = %+v", p)
	}

	if _, err := NewCustomerEventTask("customer:renamed", 1, at); err == nil {
		t.Error("unknown event type should be rejected")
	}
}

func TestHandleCustomerEventTask(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	j := &JobService{logger: &logger}

	task, _ := NewCustomerEventTask(TaskCustomerDeleted, 7, time.Now())
	if err := j.handleCustomerEventTask(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "customer audit event") || !strings.Contains(out, `"customer_id":7`) {
		t.Errorf("audit line missing: %s", out)
	}

	bad := asynq.NewTask(TaskCustomerDeleted, []byte("{"))
	if err := j.handleCustomerEventTask(context.Background(), bad); !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("malformed payload: got %v, want SkipRetry", err)
	}

	empty := asynq.NewTask(TaskCustomerCreated, []byte(`{"customer_id":0}`))
	if err := j.handleCustomerEventTask(context.Background(), empty); !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("missing id: got %v, want SkipRetry", err)
	}
}
