package users

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("user not found")

type Repo interface {
	// Upsert creates or refreshes a user and reports whether the row is new.
	Upsert(ctx context.Context, user User) (bool, error)
	GetByID(ctx context.Context, userID string) (User, error)
}
