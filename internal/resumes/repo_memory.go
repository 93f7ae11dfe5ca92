package resumes

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]StoredResume // id -> resume
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]StoredResume)}
}

func (r *MemoryRepo) Create(ctx context.Context, res StoredResume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[res.ID] = res
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, res StoredResume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.data[res.ID]
	if !ok || cur.UserID != res.UserID {
		return ErrNotFound
	}
	res.CreatedAt = cur.CreatedAt
	r.data[res.ID] = res
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (StoredResume, error) {
	if err := ctx.Err(); err != nil {
		return StoredResume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.data[id]
	if !ok {
		return StoredResume{}, ErrNotFound
	}
	return res, nil
}

// ListByUser returns the owner's résumés, most recently updated first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]StoredResume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]StoredResume, 0)
	for _, res := range r.data {
		if res.UserID == userID {
			out = append(out, res)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.data[id]
	if !ok || cur.UserID != userID {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *MemoryRepo) SetVisibility(ctx context.Context, userID, id string, public bool, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.data[id]
	if !ok || cur.UserID != userID {
		return ErrNotFound
	}
	cur.IsPublic = public
	cur.UpdatedAt = at
	r.data[id] = cur
	return nil
}
