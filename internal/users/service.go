package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resume-builder/internal/shared/telemetry"
)

// Credits is the slice of the credit ledger the user flow needs.
type Credits interface {
	Balance(ctx context.Context, userID string) (int, error)
	GrantSignup(ctx context.Context, userID string, amount int) (int, error)
}

type Service struct {
	Repo          Repo
	Credits       Credits
	SignupCredits int
}

func NewService(repo Repo, credits Credits, signupCredits int) *Service {
	return &Service{Repo: repo, Credits: credits, SignupCredits: signupCredits}
}

// Login persists the identity from OAuth and makes sure the signup credits exist.
// The grant is keyed per user, so retrying after a partial failure never doubles it.
func (s *Service) Login(ctx context.Context, user User) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	user = user.normalized()
	if user.ID == "" || user.Email == "" {
		return User{}, errors.New("user id and email are required")
	}
	created, err := s.Repo.Upsert(ctx, user)
	if err != nil {
		return User{}, err
	}
	if s.Credits != nil && s.SignupCredits > 0 {
		if _, err := s.Credits.GrantSignup(ctx, user.ID, s.SignupCredits); err != nil {
			return User{}, err
		}
	}
	if created {
		telemetry.Info("users.signup", map[string]any{"user_id": user.ID, "signup_credits": s.SignupCredits})
	}
	return s.Repo.GetByID(ctx, user.ID)
}

// Profile loads the stored user with the current balance. Identities that never
// went through login, such as CLI-issued tokens, fall back to the given claims.
func (s *Service) Profile(ctx context.Context, claims User) (Profile, error) {
	user, err := s.GetByID(ctx, claims.ID)
	switch {
	case errors.Is(err, ErrNotFound):
		user = claims.normalized()
	case err != nil:
		return Profile{}, fmt.Errorf("load user: %w", err)
	}
	profile := Profile{User: user}
	if s.Credits != nil {
		if profile.Credits, err = s.Credits.Balance(ctx, user.ID); err != nil {
			return Profile{}, fmt.Errorf("load credits: %w", err)
		}
	}
	return profile, nil
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}
