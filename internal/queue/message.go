package queue

import (
	"encoding/json"
	"time"
)

const (
	MessageVersion = 1
	// TypeRefundFailed reports a charge that could not be reversed after a failed operation.
	TypeRefundFailed = "refund_failed"
)

// Message is the payload sent to the reconciliation worker.
type Message struct {
	Type        string `json:"type"`
	OperationID string `json:"operationId"`
	UserID      string `json:"userId"`
	Operation   string `json:"operation"`
	Amount      int    `json:"amount"`
	Reason      string `json:"reason,omitempty"`
	RequestID   string `json:"requestId,omitempty"`
	EnqueuedAt  string `json:"enqueuedAt"`
	Version     int    `json:"version"`
}

// NewRefundFailed builds the alert published when a refund write fails.
func NewRefundFailed(operationID, userID, operation string, amount int, reason, requestID string, now time.Time) Message {
	return Message{
		Type:        TypeRefundFailed,
		OperationID: operationID,
		UserID:      userID,
		Operation:   operation,
		Amount:      amount,
		Reason:      reason,
		RequestID:   requestID,
		EnqueuedAt:  now.UTC().Format(time.RFC3339),
		Version:     MessageVersion,
	}
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
