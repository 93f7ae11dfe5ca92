package credits

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a ledger entry.
type Kind string

const (
	KindDebit  Kind = "debit"
	KindRefund Kind = "refund"
	KindGrant  Kind = "grant"
)

// Entry is one balance mutation. Reference is unique per kind: an operation id for debits
// and refunds, a payment or signup reference for grants.
type Entry struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"-"`
	Kind         Kind      `json:"kind"`
	Operation    string    `json:"operation"`
	Amount       int       `json:"amount"`
	BalanceAfter int       `json:"balanceAfter"`
	Reference    string    `json:"reference"`
	CreatedAt    time.Time `json:"createdAt"`
}

var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidAmount       = errors.New("credit amount must be positive")
	ErrDuplicateReference  = errors.New("credit reference already used")
	ErrDebitNotFound       = errors.New("no debit recorded for reference")
)

// InsufficientError carries the balance seen when a deduction was refused.
type InsufficientError struct {
	Required  int
	Available int
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("insufficient credits: required %d, available %d", e.Required, e.Available)
}

func (e *InsufficientError) Is(target error) bool {
	return target == ErrInsufficientCredits
}
