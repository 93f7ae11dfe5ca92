package resumes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/render"
)

// Service owns résumé persistence rules: owner-scoped writes, owner-or-public reads,
// and an age that is always derived from the birth date.
type Service struct {
	Repo Repo
	Now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: time.Now}
}

// Create stores a new résumé for userID.
func (s *Service) Create(ctx context.Context, userID string, in Input) (StoredResume, error) {
	if userID == "" {
		return StoredResume{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	tmpl, color, err := normalizeSelection(in)
	if err != nil {
		return StoredResume{}, err
	}
	now := s.now()
	res := StoredResume{
		ID:           uuid.NewString(),
		UserID:       userID,
		TemplateName: tmpl,
		ThemeColor:   color,
		Data:         in.Data.WithDerivedAge(now),
		IsPublic:     in.IsPublic != nil && *in.IsPublic,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, res); err != nil {
		return StoredResume{}, err
	}
	telemetry.Info("resumes.created", map[string]any{"resume_id": res.ID, "user_id": userID, "template": tmpl})
	return res, nil
}

// Update replaces the content of an owned résumé.
func (s *Service) Update(ctx context.Context, userID, id string, in Input) (StoredResume, error) {
	cur, err := s.owned(ctx, userID, id)
	if err != nil {
		return StoredResume{}, err
	}
	tmpl, color, err := normalizeSelection(in)
	if err != nil {
		return StoredResume{}, err
	}
	now := s.now()
	cur.TemplateName = tmpl
	cur.ThemeColor = color
	cur.Data = in.Data.WithDerivedAge(now)
	if in.IsPublic != nil {
		cur.IsPublic = *in.IsPublic
	}
	cur.UpdatedAt = now
	if err := s.Repo.Update(ctx, cur); err != nil {
		return StoredResume{}, err
	}
	return cur, nil
}

// Get returns a résumé to its owner, or to anyone when it is public. An empty viewerID
// is an anonymous reader.
func (s *Service) Get(ctx context.Context, viewerID, id string) (StoredResume, error) {
	if _, err := uuid.Parse(id); err != nil {
		return StoredResume{}, ErrNotFound
	}
	res, err := s.Repo.Get(ctx, id)
	if err != nil {
		return StoredResume{}, err
	}
	if !res.IsPublic && (viewerID == "" || res.UserID != viewerID) {
		return StoredResume{}, ErrForbidden
	}
	res.Data = res.Data.WithDerivedAge(s.now())
	return res, nil
}

// List returns the owner's résumés, most recently updated first.
func (s *Service) List(ctx context.Context, userID string) ([]StoredResume, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	items, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range items {
		items[i].Data = items[i].Data.WithDerivedAge(now)
	}
	return items, nil
}

// Delete permanently removes an owned résumé.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	telemetry.Info("resumes.deleted", map[string]any{"resume_id": id, "user_id": userID})
	return nil
}

// SetVisibility toggles anonymous read access.
func (s *Service) SetVisibility(ctx context.Context, userID, id string, public bool) (StoredResume, error) {
	cur, err := s.owned(ctx, userID, id)
	if err != nil {
		return StoredResume{}, err
	}
	now := s.now()
	if err := s.Repo.SetVisibility(ctx, userID, id, public, now); err != nil {
		return StoredResume{}, err
	}
	cur.IsPublic = public
	cur.UpdatedAt = now
	return cur, nil
}

func (s *Service) owned(ctx context.Context, userID, id string) (StoredResume, error) {
	if userID == "" {
		return StoredResume{}, ErrForbidden
	}
	if _, err := uuid.Parse(id); err != nil {
		return StoredResume{}, ErrNotFound
	}
	res, err := s.Repo.Get(ctx, id)
	if err != nil {
		return StoredResume{}, err
	}
	if res.UserID != userID {
		return StoredResume{}, ErrForbidden
	}
	return res, nil
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// normalizeSelection canonicalizes the template name and defaults a blank theme to blue.
func normalizeSelection(in Input) (string, string, error) {
	tmpl, ok := render.ParseTemplate(in.TemplateName)
	if !ok {
		return "", "", fmt.Errorf("%w: unknown template %q", ErrInvalidInput, in.TemplateName)
	}
	color := strings.TrimSpace(in.ThemeColor)
	if color == "" {
		color = "blue"
	}
	if !render.ValidThemeColor(color) {
		return "", "", fmt.Errorf("%w: invalid theme color %q", ErrInvalidInput, in.ThemeColor)
	}
	return string(tmpl), color, nil
}
