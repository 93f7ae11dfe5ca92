package queue

import (
	"context"

	"resume-builder/internal/shared/telemetry"
)

// Client sends messages to a queue backend.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// LogClient writes messages to the log instead of a broker.
type LogClient struct{}

func (LogClient) Send(ctx context.Context, msg Message) error {
	_ = ctx
	telemetry.Error("queue.alert", map[string]any{
		"type":         msg.Type,
		"operation_id": msg.OperationID,
		"user_id":      msg.UserID,
		"operation":    msg.Operation,
		"amount":       msg.Amount,
		"reason":       msg.Reason,
		"request_id":   msg.RequestID,
	})
	return nil
}

var _ Client = LogClient{}
