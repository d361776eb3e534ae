package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeConfirmationCode = "mail:confirmation_code"
	QueueMail            = "mail"
)

type ConfirmationPayload struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Code     string `json:"code"`
}

// Dispatcher hands a confirmation code to whatever delivers mail. Callers do
// not wait for delivery.
type Dispatcher interface {
	SendConfirmationCode(ctx context.Context, email, username, code string) error
}

// Enqueuer is the part of *asynq.Client the dispatcher needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type queueDispatcher struct {
	client Enqueuer
}

func NewQueueDispatcher(client Enqueuer) Dispatcher {
	return &queueDispatcher{client: client}
}

func NewConfirmationTask(p ConfirmationPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode confirmation payload: %w", err)
	}
	return asynq.NewTask(TypeConfirmationCode, payload,
		asynq.Queue(QueueMail),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	), nil
}

func (d *queueDispatcher) SendConfirmationCode(ctx context.Context, email, username, code string) error {
	task, err := NewConfirmationTask(ConfirmationPayload{Email: email, Username: username, Code: code})
	if err != nil {
		return err
	}
	if _, err := d.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue confirmation mail: %w", err)
	}
	return nil
}
