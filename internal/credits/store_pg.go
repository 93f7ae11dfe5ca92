package credits

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"resume-builder/internal/shared/storage/db"
)

type pgStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed credit store.
func NewPGStore(database *sql.DB) Store {
	return &pgStore{DB: database}
}

const ensureAccountSQL = `
INSERT INTO credit_accounts (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`

const insertEntrySQL = `
INSERT INTO credit_ledger (user_id, kind, operation, amount, balance_after, reference)
VALUES ($1, $2, $3, $4, $5, $6)`

func (s *pgStore) Balance(ctx context.Context, userID string) (int, error) {
	if _, err := s.DB.ExecContext(ctx, ensureAccountSQL, userID); err != nil {
		return 0, err
	}
	var credits int
	err := s.DB.QueryRowContext(ctx, `SELECT credits FROM credit_accounts WHERE user_id = $1`, userID).Scan(&credits)
	return credits, err
}

func (s *pgStore) Deduct(ctx context.Context, userID string, amount int, operation, reference string) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	var balance int
	err := db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, ensureAccountSQL, userID); err != nil {
			return err
		}
		err := tx.QueryRowContext(ctx, `
UPDATE credit_accounts SET credits = credits - $2, updated_at = now()
WHERE user_id = $1 AND credits >= $2
RETURNING credits`, userID, amount).Scan(&balance)
		if errors.Is(err, sql.ErrNoRows) {
			var available int
			if err := tx.QueryRowContext(ctx, `SELECT credits FROM credit_accounts WHERE user_id = $1`, userID).Scan(&available); err != nil {
				return err
			}
			return &InsufficientError{Required: amount, Available: available}
		}
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, insertEntrySQL, userID, string(KindDebit), operation, amount, balance, reference)
		return mapUniqueViolation(err)
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (s *pgStore) Refund(ctx context.Context, userID, reference string) (int, bool, error) {
	var (
		balance int
		applied bool
	)
	err := db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `
SELECT credits FROM credit_accounts WHERE user_id = $1 FOR UPDATE`, userID).Scan(&balance); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrDebitNotFound
			}
			return err
		}
		// The debit must belong to userID before a prior refund counts as applied.
		var (
			amount    int
			operation string
		)
		err := tx.QueryRowContext(ctx, `
SELECT amount, operation FROM credit_ledger WHERE kind = $1 AND reference = $2 AND user_id = $3`,
			string(KindDebit), reference, userID).Scan(&amount, &operation)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDebitNotFound
		}
		if err != nil {
			return err
		}
		var exists bool
		if err := tx.QueryRowContext(ctx, `
SELECT EXISTS (SELECT 1 FROM credit_ledger WHERE kind = $1 AND reference = $2 AND user_id = $3)`,
			string(KindRefund), reference, userID).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return nil
		}
		if err := tx.QueryRowContext(ctx, `
UPDATE credit_accounts SET credits = credits + $2, updated_at = now()
WHERE user_id = $1
RETURNING credits`, userID, amount).Scan(&balance); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insertEntrySQL, userID, string(KindRefund), operation, amount, balance, reference); err != nil {
			return mapUniqueViolation(err)
		}
		applied = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return balance, applied, nil
}

func (s *pgStore) Grant(ctx context.Context, userID string, amount int, operation, reference string) (int, bool, error) {
	if amount <= 0 {
		return 0, false, ErrInvalidAmount
	}
	var (
		balance int
		applied bool
	)
	err := db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, ensureAccountSQL, userID); err != nil {
			return err
		}
		if err := tx.QueryRowContext(ctx, `
SELECT credits FROM credit_accounts WHERE user_id = $1 FOR UPDATE`, userID).Scan(&balance); err != nil {
			return err
		}
		var exists bool
		if err := tx.QueryRowContext(ctx, `
SELECT EXISTS (SELECT 1 FROM credit_ledger WHERE kind = $1 AND reference = $2)`, string(KindGrant), reference).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return nil
		}
		if err := tx.QueryRowContext(ctx, `
UPDATE credit_accounts SET credits = credits + $2, updated_at = now()
WHERE user_id = $1
RETURNING credits`, userID, amount).Scan(&balance); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insertEntrySQL, userID, string(KindGrant), operation, amount, balance, reference); err != nil {
			return mapUniqueViolation(err)
		}
		applied = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return balance, applied, nil
}

func (s *pgStore) Ledger(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, user_id, kind, operation, amount, balance_after, reference, created_at
FROM credit_ledger
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		var kind string
		if err := rows.Scan(&e.ID, &e.UserID, &kind, &e.Operation, &e.Amount, &e.BalanceAfter, &e.Reference, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Kind = Kind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateReference
	}
	return err
}
