package credits

import "context"

// Store owns credit balances. Every mutation writes a ledger entry in the same step, so the
// sum of ledger amounts always explains the balance.
type Store interface {
	// Balance returns the user's credits, creating an empty account when absent.
	Balance(ctx context.Context, userID string) (int, error)
	// Deduct removes amount only if the balance covers it.
	Deduct(ctx context.Context, userID string, amount int, operation, reference string) (int, error)
	// Refund reverses the debit recorded under reference. A second call is a no-op.
	Refund(ctx context.Context, userID, reference string) (balance int, applied bool, err error)
	// Grant adds credits once per reference.
	Grant(ctx context.Context, userID string, amount int, operation, reference string) (balance int, applied bool, err error)
	Ledger(ctx context.Context, userID string, limit int) ([]Entry, error)
}
