package aiops

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/credits"
	"resume-builder/internal/llm"
	"resume-builder/internal/queue"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
)

// ChargeMode selects when credits leave the account.
type ChargeMode string

const (
	// ChargeOnSuccess deducts after the model answered and its output parsed.
	ChargeOnSuccess ChargeMode = "on_success"
	// ReserveThenRefund deducts before the call and refunds on failure.
	ReserveThenRefund ChargeMode = "reserve"
)

// ParseChargeMode defaults to ChargeOnSuccess.
func ParseChargeMode(raw string) ChargeMode {
	if strings.EqualFold(strings.TrimSpace(raw), string(ReserveThenRefund)) {
		return ReserveThenRefund
	}
	return ChargeOnSuccess
}

// CreditStore is the slice of the credit service the lifecycle needs.
type CreditStore interface {
	Balance(ctx context.Context, userID string) (int, error)
	Deduct(ctx context.Context, userID string, amount int, operation, reference string) (int, error)
	Refund(ctx context.Context, userID, reference string) (int, bool, error)
}

// Operation is one credit-gated capability.
type Operation interface {
	Name() string
	Cost() int
	Request() llm.Request
	// Parse turns raw model output into the result returned to the caller.
	Parse(raw string) (any, error)
}

// Caller identifies who invoked an operation.
type Caller struct {
	UserID    string
	RequestID string
}

// Outcome is a completed invocation.
type Outcome struct {
	OperationID      string
	Result           any
	CreditsRemaining int
}

// Runner drives every credit-gated operation through the same lifecycle.
type Runner struct {
	Credits CreditStore
	LLM     llm.Client
	Mode    ChargeMode
	Alerts  queue.Client
	NewID   func() string
	Now     func() time.Time
}

func NewRunner(store CreditStore, client llm.Client, mode ChargeMode, alerts queue.Client) *Runner {
	return &Runner{
		Credits: store,
		LLM:     client,
		Mode:    mode,
		Alerts:  alerts,
	}
}

// Run authenticates, checks the balance, calls the model, and settles the charge. Every
// completed call leaves exactly one net balance change: a debit on success, none on failure.
func (r *Runner) Run(ctx context.Context, caller Caller, op Operation) (Outcome, error) {
	if strings.TrimSpace(caller.UserID) == "" {
		return Outcome{}, &Error{Kind: KindUnauthorized}
	}
	opID := r.newID()
	name := op.Name()
	cost := op.Cost()
	start := r.now()
	fields := map[string]any{
		"operation_id": opID,
		"operation":    name,
		"user_id":      caller.UserID,
		"request_id":   caller.RequestID,
		"cost":         cost,
		"charge_mode":  string(r.mode()),
	}
	metrics.IncOperationStarted(name)
	telemetry.Info("aiops.start", fields)

	fail := func(err *Error) (Outcome, error) {
		metrics.IncOperationFailed(name, string(err.Kind))
		f := copyFields(fields)
		f["kind"] = string(err.Kind)
		f["error"] = err
		f["duration_ms"] = r.now().Sub(start).Milliseconds()
		telemetry.Warn("aiops.failed", f)
		return Outcome{}, err
	}

	balance, err := r.Credits.Balance(ctx, caller.UserID)
	if err != nil {
		return fail(&Error{Kind: KindInternal, Err: err})
	}
	if balance < cost {
		return fail(&Error{Kind: KindInsufficientCredits, Required: cost, Available: balance})
	}

	reserved := false
	if r.mode() == ReserveThenRefund {
		balance, err = r.Credits.Deduct(ctx, caller.UserID, cost, name, opID)
		if err != nil {
			if errors.Is(err, credits.ErrInsufficientCredits) {
				return fail(insufficient(err, cost))
			}
			return fail(&Error{Kind: KindInternal, Err: err})
		}
		reserved = true
	}

	result, err := r.call(ctx, op)
	if err != nil {
		failure := classifyExternal(err)
		if reserved {
			// A canceled request must still get its credits back.
			refundCtx := context.WithoutCancel(ctx)
			if _, _, refundErr := r.Credits.Refund(refundCtx, caller.UserID, opID); refundErr != nil {
				return fail(r.refundFailed(refundCtx, caller, name, cost, opID, failure, refundErr, fields))
			}
		}
		return fail(failure)
	}

	if !reserved {
		balance, err = r.Credits.Deduct(ctx, caller.UserID, cost, name, opID)
		if err != nil {
			// The balance was drained concurrently; the result is withheld.
			if errors.Is(err, credits.ErrInsufficientCredits) {
				return fail(insufficient(err, cost))
			}
			return fail(&Error{Kind: KindInternal, Err: err})
		}
	}

	elapsed := r.now().Sub(start)
	metrics.IncOperationCompleted(name)
	metrics.ObserveOperationDurationMs(float64(elapsed.Milliseconds()))
	done := copyFields(fields)
	done["credits_remaining"] = balance
	done["duration_ms"] = elapsed.Milliseconds()
	telemetry.Info("aiops.complete", done)

	return Outcome{OperationID: opID, Result: result, CreditsRemaining: balance}, nil
}

func (r *Runner) call(ctx context.Context, op Operation) (any, error) {
	raw, err := r.LLM.Complete(ctx, op.Request())
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return nil, llm.ErrEmptyResponse
	}
	return op.Parse(raw)
}

func (r *Runner) refundFailed(ctx context.Context, caller Caller, name string, cost int, opID string, cause *Error, refundErr error, fields map[string]any) *Error {
	metrics.IncRefundFailed(name)
	f := copyFields(fields)
	f["cause"] = string(cause.Kind)
	f["error"] = refundErr
	telemetry.Error("aiops.refund_failed", f)

	alerts := r.Alerts
	if alerts == nil {
		alerts = queue.LogClient{}
	}
	msg := queue.NewRefundFailed(opID, caller.UserID, name, cost, refundErr.Error(), caller.RequestID, r.now())
	if err := alerts.Send(ctx, msg); err != nil {
		f["alert_error"] = err
		telemetry.Error("aiops.alert_failed", f)
	} else {
		metrics.IncAlertsPublished()
	}
	return &Error{Kind: KindRefundFailed, Err: errors.Join(cause, refundErr)}
}

func (r *Runner) mode() ChargeMode {
	if r.Mode == ReserveThenRefund {
		return ReserveThenRefund
	}
	return ChargeOnSuccess
}

func (r *Runner) newID() string {
	if r.NewID != nil {
		return r.NewID()
	}
	return uuid.NewString()
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func copyFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in)+4)
	for k, v := range in {
		out[k] = v
	}
	return out
}
