package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const resumeColumns = `id, user_id, template_name, theme_color, resume_data, is_public, created_at, updated_at`

// Create inserts a new résumé.
func (r *PGRepo) Create(ctx context.Context, res StoredResume) error {
	data, err := json.Marshal(res.Data)
	if err != nil {
		return fmt.Errorf("encode resume data: %w", err)
	}
	const query = `
INSERT INTO resumes (` + resumeColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.DB.ExecContext(ctx, query,
		res.ID,
		res.UserID,
		res.TemplateName,
		res.ThemeColor,
		data,
		res.IsPublic,
		res.CreatedAt,
		res.UpdatedAt,
	)
	return err
}

// Update replaces the editable fields of an owned résumé.
func (r *PGRepo) Update(ctx context.Context, res StoredResume) error {
	data, err := json.Marshal(res.Data)
	if err != nil {
		return fmt.Errorf("encode resume data: %w", err)
	}
	const query = `
UPDATE resumes
SET template_name = $3, theme_color = $4, resume_data = $5, is_public = $6, updated_at = $7
WHERE id = $1 AND user_id = $2`
	result, err := r.DB.ExecContext(ctx, query,
		res.ID,
		res.UserID,
		res.TemplateName,
		res.ThemeColor,
		data,
		res.IsPublic,
		res.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Get loads a résumé by id regardless of owner; access checks happen in the service.
func (r *PGRepo) Get(ctx context.Context, id string) (StoredResume, error) {
	const query = `SELECT ` + resumeColumns + ` FROM resumes WHERE id = $1`
	res, err := scanResume(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return StoredResume{}, ErrNotFound
	}
	return res, err
}

// ListByUser returns the owner's résumés, most recently updated first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]StoredResume, error) {
	const query = `
SELECT ` + resumeColumns + `
FROM resumes
WHERE user_id = $1
ORDER BY updated_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]StoredResume, 0)
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// Delete removes an owned résumé permanently.
func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM resumes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *PGRepo) SetVisibility(ctx context.Context, userID, id string, public bool, at time.Time) error {
	const query = `UPDATE resumes SET is_public = $3, updated_at = $4 WHERE id = $1 AND user_id = $2`
	result, err := r.DB.ExecContext(ctx, query, id, userID, public, at)
	if err != nil {
		return err
	}
	return requireRow(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (StoredResume, error) {
	var res StoredResume
	var data []byte
	if err := row.Scan(
		&res.ID,
		&res.UserID,
		&res.TemplateName,
		&res.ThemeColor,
		&data,
		&res.IsPublic,
		&res.CreatedAt,
		&res.UpdatedAt,
	); err != nil {
		return StoredResume{}, err
	}
	if err := json.Unmarshal(data, &res.Data); err != nil {
		return StoredResume{}, fmt.Errorf("decode resume %s: %w", res.ID, err)
	}
	return res, nil
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
