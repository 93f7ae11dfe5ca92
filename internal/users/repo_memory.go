package users

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo keeps users in process. It backs dev runs without DATABASE_URL.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]User
	now  func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID: make(map[string]User),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Upsert mirrors the Postgres statement: an empty picture keeps the stored one.
func (r *MemoryRepo) Upsert(ctx context.Context, user User) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := r.now()
	user.CreatedAt, user.UpdatedAt = ts, ts
	prev, exists := r.byID[user.ID]
	if exists {
		user.CreatedAt = prev.CreatedAt
		if user.PictureURL == "" {
			user.PictureURL = prev.PictureURL
		}
	}
	r.byID[user.ID] = user
	return !exists, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	user, ok := r.byID[userID]
	r.mu.RUnlock()
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}
