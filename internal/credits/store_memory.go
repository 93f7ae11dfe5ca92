package credits

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu       sync.Mutex
	balances map[string]int
	entries  []Entry
	refs     map[string]int
	nextID   int64
	now      func() time.Time
}

// NewMemoryStore returns a process-local store for development and tests.
func NewMemoryStore() Store {
	return &memoryStore{
		balances: make(map[string]int),
		refs:     make(map[string]int),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func refKey(kind Kind, reference string) string {
	return string(kind) + ":" + reference
}

func (s *memoryStore) Balance(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[userID], nil
}

func (s *memoryStore) Deduct(ctx context.Context, userID string, amount int, operation, reference string) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.refs[refKey(KindDebit, reference)]; ok {
		return 0, ErrDuplicateReference
	}
	current := s.balances[userID]
	if current < amount {
		return 0, &InsufficientError{Required: amount, Available: current}
	}
	s.balances[userID] = current - amount
	s.appendLocked(userID, KindDebit, operation, amount, reference)
	return s.balances[userID], nil
}

func (s *memoryStore) Refund(ctx context.Context, userID, reference string) (int, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.refs[refKey(KindDebit, reference)]
	if !ok || s.entries[idx].UserID != userID {
		return 0, false, ErrDebitNotFound
	}
	if _, ok := s.refs[refKey(KindRefund, reference)]; ok {
		return s.balances[userID], false, nil
	}
	debit := s.entries[idx]
	s.balances[userID] += debit.Amount
	s.appendLocked(userID, KindRefund, debit.Operation, debit.Amount, reference)
	return s.balances[userID], true, nil
}

func (s *memoryStore) Grant(ctx context.Context, userID string, amount int, operation, reference string) (int, bool, error) {
	if amount <= 0 {
		return 0, false, ErrInvalidAmount
	}
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.refs[refKey(KindGrant, reference)]; ok {
		return s.balances[userID], false, nil
	}
	s.balances[userID] += amount
	s.appendLocked(userID, KindGrant, operation, amount, reference)
	return s.balances[userID], true, nil
}

func (s *memoryStore) Ledger(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Entry{}
	for i := len(s.entries) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if s.entries[i].UserID == userID {
			out = append(out, s.entries[i])
		}
	}
	return out, nil
}

func (s *memoryStore) appendLocked(userID string, kind Kind, operation string, amount int, reference string) {
	s.nextID++
	s.entries = append(s.entries, Entry{
		ID:           s.nextID,
		UserID:       userID,
		Kind:         kind,
		Operation:    operation,
		Amount:       amount,
		BalanceAfter: s.balances[userID],
		Reference:    reference,
		CreatedAt:    s.now(),
	})
	s.refs[refKey(kind, reference)] = len(s.entries) - 1
}
