package mail

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ConfirmationHandler delivers queued confirmation codes. Malformed payloads
// are dropped, transport errors go back to asynq for retry.
func ConfirmationHandler(sender Sender, from string, l *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p ConfirmationPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			l.Error("bad confirmation payload", zap.Error(err))
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}
		if p.Email == "" || p.Code == "" {
			l.Error("confirmation payload missing fields", zap.String("username", p.Username))
			return fmt.Errorf("incomplete payload: %w", asynq.SkipRetry)
		}

		if err := sender.Send(ctx, ConfirmationMessage(from, p)); err != nil {
			l.Warn("confirmation mail not delivered", zap.String("email", p.Email), zap.Error(err))
			return err
		}

		l.Info("confirmation mail sent", zap.String("email", p.Email))
		return nil
	}
}

// NewServeMux routes every mail task type to its handler.
func NewServeMux(sender Sender, from string, l *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeConfirmationCode, ConfirmationHandler(sender, from, l))
	return mux
}
