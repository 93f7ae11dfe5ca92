package credits

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDeductRefusesOverdraw(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, _, err := store.Grant(ctx, "u1", 1, "purchase", "cs_1")
	require.NoError(t, err)

	balance, err := store.Deduct(ctx, "u1", 1, "enhance", "op-1")
	require.NoError(t, err)
	assert.Equal(t, 0, balance)

	_, err = store.Deduct(ctx, "u1", 1, "enhance", "op-2")
	require.ErrorIs(t, err, ErrInsufficientCredits)
	var insufficient *InsufficientError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 1, insufficient.Required)
	assert.Equal(t, 0, insufficient.Available)
}

func TestMemoryRefundIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, _, _ = store.Grant(ctx, "u1", 5, "purchase", "cs_1")
	_, err := store.Deduct(ctx, "u1", 5, "translate", "op-1")
	require.NoError(t, err)

	balance, applied, err := store.Refund(ctx, "u1", "op-1")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 5, balance)

	balance, applied, err = store.Refund(ctx, "u1", "op-1")
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 5, balance)

	_, _, err = store.Refund(ctx, "u2", "op-1")
	assert.ErrorIs(t, err, ErrDebitNotFound)
}

func TestMemoryRefundChecksDebitOwner(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, _, _ = store.Grant(ctx, "u1", 5, "purchase", "cs_1")
	_, _, _ = store.Grant(ctx, "u2", 7, "purchase", "cs_2")
	_, err := store.Deduct(ctx, "u1", 5, "translate", "op-1")
	require.NoError(t, err)

	_, _, err = store.Refund(ctx, "u2", "op-1")
	require.ErrorIs(t, err, ErrDebitNotFound)

	_, applied, err := store.Refund(ctx, "u1", "op-1")
	require.NoError(t, err)
	require.True(t, applied)

	_, applied, err = store.Refund(ctx, "u2", "op-1")
	require.ErrorIs(t, err, ErrDebitNotFound)
	assert.False(t, applied)

	balance, err := store.Balance(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 7, balance)
}

func TestMemoryGrantOncePerReference(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for i := 0; i < 3; i++ {
		_, _, err := store.Grant(ctx, "u1", 25, "purchase", "cs_1")
		require.NoError(t, err)
	}
	balance, err := store.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 25, balance)

	_, _, err = store.Grant(ctx, "u1", 0, "purchase", "cs_2")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestMemoryDuplicateDebitReference(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, _, _ = store.Grant(ctx, "u1", 10, "purchase", "cs_1")
	_, err := store.Deduct(ctx, "u1", 1, "enhance", "op-1")
	require.NoError(t, err)
	_, err = store.Deduct(ctx, "u1", 1, "enhance", "op-1")
	assert.ErrorIs(t, err, ErrDuplicateReference)
}

func TestMemoryConcurrentDeductsNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, _, _ = store.Grant(ctx, "u1", 10, "purchase", "cs_1")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Deduct(ctx, "u1", 1, "enhance", fmt.Sprintf("op-%d", i))
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
				return
			}
			if !errors.Is(err, ErrInsufficientCredits) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	balance, err := store.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 10, success)
	assert.Equal(t, 0, balance)
}

func TestMemoryLedgerExplainsBalance(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, _, _ = store.Grant(ctx, "u1", 10, "purchase", "cs_1")
	for i := 0; i < 4; i++ {
		_, err := store.Deduct(ctx, "u1", 2, "translate", fmt.Sprintf("op-%d", i))
		require.NoError(t, err)
		if i%2 == 0 {
			_, _, err = store.Refund(ctx, "u1", fmt.Sprintf("op-%d", i))
			require.NoError(t, err)
		}
	}

	entries, err := store.Ledger(ctx, "u1", 0)
	require.NoError(t, err)
	net := 0
	for _, e := range entries {
		switch e.Kind {
		case KindGrant, KindRefund:
			net += e.Amount
		case KindDebit:
			net -= e.Amount
		}
	}
	balance, _ := store.Balance(ctx, "u1")
	assert.Equal(t, balance, net)
	assert.Equal(t, 6, balance)
	assert.Equal(t, balance, entries[0].BalanceAfter, "newest entry first")

	limited, err := store.Ledger(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
