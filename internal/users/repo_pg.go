package users

import (
	"context"
	"database/sql"
	"errors"
)

type PGRepo struct {
	DB *sql.DB
}

// Upsert relies on xmax being zero only for freshly inserted rows. An empty
// picture keeps the stored one.
func (r *PGRepo) Upsert(ctx context.Context, user User) (bool, error) {
	const query = `
INSERT INTO users (id, email, full_name, picture_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  full_name = EXCLUDED.full_name,
  picture_url = COALESCE(NULLIF(EXCLUDED.picture_url, ''), users.picture_url),
  updated_at = now()
RETURNING (xmax = 0) AS inserted`
	var inserted bool
	err := r.DB.QueryRowContext(ctx, query, user.ID, user.Email, user.FullName, user.PictureURL).Scan(&inserted)
	return inserted, err
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `
SELECT id, email, full_name, picture_url, created_at, updated_at
FROM users
WHERE id = $1`
	var user User
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.PictureURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}
