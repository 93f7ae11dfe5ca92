package resumes

import (
	"context"
	"time"
)

// Repo persists stored résumés. Mutations are scoped by owner; a miss on either id or
// owner reports ErrNotFound.
type Repo interface {
	Create(ctx context.Context, r StoredResume) error
	Update(ctx context.Context, r StoredResume) error
	Get(ctx context.Context, id string) (StoredResume, error)
	ListByUser(ctx context.Context, userID string) ([]StoredResume, error)
	Delete(ctx context.Context, userID, id string) error
	SetVisibility(ctx context.Context, userID, id string, public bool, at time.Time) error
}
