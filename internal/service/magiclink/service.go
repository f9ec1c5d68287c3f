// Package magiclink implements the passwordless login flow: issuing
// single-use, time-boxed email links and redeeming them exactly once for a
// session token.
package magiclink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/taskward-app/taskward-api/internal/domain"
	"github.com/taskward-app/taskward-api/internal/platform/logger"
	"github.com/taskward-app/taskward-api/internal/service/auth"
	"github.com/taskward-app/taskward-api/internal/store"
)

// Notifier delivers a redemption URL to an email address. Implementations
// own their transport and timeout policy.
type Notifier interface {
	SendMagicLink(ctx context.Context, email, redemptionURL string) error
}

// Service issues, previews and redeems magic links.
type Service struct {
	users      store.UserStore
	links      store.MagicLinkStore
	jwtService auth.JWTService
	notifier   Notifier
	backendURL string
	timeFunc   func() time.Time // Injectable for testing
	logger     *slog.Logger
}

// NewService creates a magic link Service with the given dependencies.
// backendURL is the externally reachable base of this API; redemption URLs
// are built from it.
func NewService(
	users store.UserStore,
	links store.MagicLinkStore,
	jwtService auth.JWTService,
	notifier Notifier,
	backendURL string,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		users:      users,
		links:      links,
		jwtService: jwtService,
		notifier:   notifier,
		backendURL: backendURL,
		timeFunc:   time.Now,
		logger:     log.With(slog.String("component", "magiclink")),
	}
}

// Issue creates a single-use link for the given email and hands it to the
// notifier. A first-time email creates the user, with the display name
// defaulting to the local part of the address.
//
// A notifier failure surfaces as ErrDeliveryFailed; the persisted link is
// reported to the caller rather than silently stranded.
func (s *Service) Issue(ctx context.Context, email string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	email = domain.NormalizeEmail(email)

	user, err := s.findOrCreateUser(ctx, email)
	if err != nil {
		return err
	}

	link, err := s.createLink(ctx, user)
	if err != nil {
		return err
	}

	redemptionURL := s.buildRedemptionURL(link.Token)
	if err := s.notifier.SendMagicLink(ctx, email, redemptionURL); err != nil {
		log.Error("magic link email delivery failed",
			"user_id", user.ID,
			"link_id", link.ID,
			"error", err)
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	log.Info("magic link issued",
		"user_id", user.ID,
		"link_id", link.ID,
		"expires_at", link.ExpiresAt)
	return nil
}

// Validate previews a link without consuming it, applying the same check
// order as Redeem (existence, then used, then expiry) so both operations
// report errors consistently. It never mutates the link.
func (s *Service) Validate(ctx context.Context, token string) (*domain.User, error) {
	link, err := s.checkLink(ctx, token)
	if err != nil {
		return nil, err
	}

	return s.users.GetByID(ctx, link.UserID)
}

// Redeem consumes a link exactly once and returns a session token together
// with the owning user.
//
// The session token is minted before the used flag is set: if minting
// fails, the link stays redeemable, whereas the reverse order could burn a
// link while returning nothing. The conditional update in the store is the
// commit point: among concurrent redeemers of the same token, exactly one
// passes it and every other caller gets ErrAlreadyUsed.
func (s *Service) Redeem(ctx context.Context, token string) (string, *domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	link, err := s.checkLink(ctx, token)
	if err != nil {
		return "", nil, err
	}

	user, err := s.users.GetByID(ctx, link.UserID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load link owner: %w", err)
	}

	sessionToken, err := s.jwtService.GenerateToken(ctx, user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	if err := s.links.Consume(ctx, token); err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyConsumed):
			// A concurrent redemption won the conditional update.
			return "", nil, ErrAlreadyUsed
		case errors.Is(err, store.ErrMagicLinkNotFound):
			return "", nil, ErrInvalidLink
		default:
			return "", nil, fmt.Errorf("failed to consume magic link: %w", err)
		}
	}

	log.Info("magic link redeemed",
		"user_id", user.ID,
		"link_id", link.ID)
	return sessionToken, user, nil
}

// checkLink loads a link and applies the shared error precedence:
// existence, then consumed, then expiry. Expired links are never marked
// used; they are already unusable and flipping the flag would mask the
// real cause on a retry.
func (s *Service) checkLink(ctx context.Context, token string) (*domain.MagicLink, error) {
	link, err := s.links.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrMagicLinkNotFound) {
			return nil, ErrInvalidLink
		}
		return nil, fmt.Errorf("failed to look up magic link: %w", err)
	}

	if link.Used {
		return nil, ErrAlreadyUsed
	}

	if link.IsExpired(s.timeFunc()) {
		return nil, ErrExpired
	}

	return link, nil
}

// findOrCreateUser resolves the email to a user, creating one on first
// issuance and absorbing the create/create race.
func (s *Service) findOrCreateUser(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user, err = domain.NewUserFromEmail(email)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return s.users.GetByEmail(ctx, email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// createLink persists a fresh link, retrying once on the (cryptographically
// negligible) token collision.
func (s *Service) createLink(ctx context.Context, user *domain.User) (*domain.MagicLink, error) {
	for attempt := 0; attempt < 2; attempt++ {
		link, err := domain.NewMagicLink(user.ID, s.timeFunc())
		if err != nil {
			return nil, err
		}

		err = s.links.Create(ctx, link)
		if err == nil {
			return link, nil
		}
		if !errors.Is(err, store.ErrTokenExists) {
			return nil, fmt.Errorf("failed to persist magic link: %w", err)
		}
	}

	return nil, fmt.Errorf("failed to persist magic link: %w", store.ErrTokenExists)
}

// buildRedemptionURL embeds the token in the backend verification endpoint.
func (s *Service) buildRedemptionURL(token string) string {
	return fmt.Sprintf("%s/auth/verify?token=%s", s.backendURL, url.QueryEscape(token))
}
