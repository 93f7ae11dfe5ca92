package reconcile

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"resume-builder/internal/credits"
	"resume-builder/internal/queue"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
)

// MessageMeta captures details useful for logging undecodable payloads.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

func (e ErrDecode) Unwrap() error { return e.Err }

// ErrInvalidMessage indicates a decoded message the worker cannot act on.
type ErrInvalidMessage struct {
	Meta   MessageMeta
	Reason string
}

func (e ErrInvalidMessage) Error() string { return "invalid message: " + e.Reason }

// ErrProcess indicates the refund could not be written and should be retried.
type ErrProcess struct {
	OperationID string
	RequestID   string
	Err         error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "reconcile refund"
	}
	return "reconcile refund: " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// Permanent reports whether a message should be dropped rather than redelivered.
func Permanent(err error) bool {
	var (
		empty   ErrEmptyBody
		decode  ErrDecode
		invalid ErrInvalidMessage
	)
	return errors.As(err, &empty) || errors.As(err, &decode) || errors.As(err, &invalid)
}

// ParseMessage validates and decodes a refund alert.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}
	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	switch {
	case msg.Type != queue.TypeRefundFailed:
		return msg, meta, ErrInvalidMessage{Meta: meta, Reason: "unexpected type " + msg.Type}
	case strings.TrimSpace(msg.OperationID) == "":
		return msg, meta, ErrInvalidMessage{Meta: meta, Reason: "missing operation id"}
	case strings.TrimSpace(msg.UserID) == "":
		return msg, meta, ErrInvalidMessage{Meta: meta, Reason: "missing user id"}
	}
	return msg, meta, nil
}

// Refunder reverses the debit recorded under an operation id.
type Refunder interface {
	Refund(ctx context.Context, userID, reference string) (int, bool, error)
}

// Outcome describes what a processed alert changed.
type Outcome string

const (
	OutcomeRefunded        Outcome = "refunded"
	OutcomeAlreadyRefunded Outcome = "already_refunded"
	OutcomeNoDebit         Outcome = "no_debit"
)

// Processor retries refunds that failed inside the request path.
type Processor struct {
	Credits Refunder
}

func NewProcessor(refunder Refunder) *Processor {
	return &Processor{Credits: refunder}
}

// Process applies the refund for one alert. The ledger makes the refund idempotent,
// so redelivered alerts are safe.
func (p *Processor) Process(ctx context.Context, msg queue.Message) (Outcome, error) {
	if p == nil || p.Credits == nil {
		return "", errors.New("credit service not configured")
	}
	fields := map[string]any{
		"operation_id": msg.OperationID,
		"user_id":      msg.UserID,
		"operation":    msg.Operation,
		"request_id":   msg.RequestID,
	}
	balance, applied, err := p.Credits.Refund(ctx, msg.UserID, msg.OperationID)
	switch {
	case errors.Is(err, credits.ErrDebitNotFound):
		// The request path never charged, so there is nothing to give back.
		metrics.IncReconcileSucceeded()
		telemetry.Warn("reconcile.no_debit", fields)
		return OutcomeNoDebit, nil
	case err != nil:
		metrics.IncReconcileFailed()
		fields["error"] = err.Error()
		telemetry.Error("reconcile.refund_failed", fields)
		return "", ErrProcess{OperationID: msg.OperationID, RequestID: msg.RequestID, Err: err}
	}

	metrics.IncReconcileSucceeded()
	fields["balance"] = balance
	if !applied {
		telemetry.Info("reconcile.already_refunded", fields)
		return OutcomeAlreadyRefunded, nil
	}
	fields["amount"] = msg.Amount
	telemetry.Info("reconcile.refunded", fields)
	return OutcomeRefunded, nil
}

// HandleBody parses and processes a raw payload.
func (p *Processor) HandleBody(ctx context.Context, body string) error {
	msg, _, err := ParseMessage(body)
	if err != nil {
		return err
	}
	_, err = p.Process(ctx, msg)
	return err
}
