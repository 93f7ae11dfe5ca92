package credits

import (
	"context"
	"strings"

	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
)

// Service is the only writer of credit balances.
type Service struct {
	store Store
}

// NewService constructs a Service with an in-memory store.
func NewService() *Service {
	return &Service{store: NewMemoryStore()}
}

// NewServiceWithStore constructs a Service backed by store.
func NewServiceWithStore(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Balance(ctx context.Context, userID string) (int, error) {
	return s.store.Balance(ctx, userID)
}

func (s *Service) Deduct(ctx context.Context, userID string, amount int, operation, reference string) (int, error) {
	return s.store.Deduct(ctx, userID, amount, operation, reference)
}

func (s *Service) Refund(ctx context.Context, userID, reference string) (int, bool, error) {
	balance, applied, err := s.store.Refund(ctx, userID, reference)
	if err == nil && applied {
		telemetry.Info("credits.refunded", map[string]any{
			"user_id":   userID,
			"reference": reference,
			"balance":   balance,
		})
	}
	return balance, applied, err
}

// Grant adds purchased or promotional credits once per reference.
func (s *Service) Grant(ctx context.Context, userID string, amount int, operation, reference string) (int, bool, error) {
	balance, applied, err := s.store.Grant(ctx, userID, amount, operation, reference)
	if err != nil {
		return 0, false, err
	}
	if applied {
		metrics.AddCreditsGranted(amount)
		telemetry.Info("credits.granted", map[string]any{
			"user_id":   userID,
			"amount":    amount,
			"operation": operation,
			"reference": reference,
			"balance":   balance,
		})
	}
	return balance, applied, nil
}

// GrantSignup gives a new user their free credits. Repeated logins do not grant again.
func (s *Service) GrantSignup(ctx context.Context, userID string, amount int) (int, error) {
	if amount <= 0 {
		return s.store.Balance(ctx, userID)
	}
	balance, _, err := s.Grant(ctx, userID, amount, "signup", "signup:"+strings.TrimSpace(userID))
	return balance, err
}

func (s *Service) Ledger(ctx context.Context, userID string, limit int) ([]Entry, error) {
	return s.store.Ledger(ctx, userID, limit)
}
