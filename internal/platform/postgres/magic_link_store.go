package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taskward-app/taskward-api/internal/domain"
	"github.com/taskward-app/taskward-api/internal/platform/logger"
	"github.com/taskward-app/taskward-api/internal/store"
)

// PostgresMagicLinkStore implements the store.MagicLinkStore interface
// using a PostgreSQL database as the storage backend.
type PostgresMagicLinkStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMagicLinkStore creates a new PostgreSQL implementation of the
// MagicLinkStore interface.
func NewPostgresMagicLinkStore(db store.DBTX, log *slog.Logger) *PostgresMagicLinkStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresMagicLinkStore{
		db:     db,
		logger: log.With(slog.String("component", "magic_link_store")),
	}
}

// Ensure PostgresMagicLinkStore implements store.MagicLinkStore interface
var _ store.MagicLinkStore = (*PostgresMagicLinkStore)(nil)

// Create implements store.MagicLinkStore.Create
// Returns store.ErrTokenExists on a token collision and store.ErrInvalidEntity
// when the owning user does not exist.
func (s *PostgresMagicLinkStore) Create(ctx context.Context, link *domain.MagicLink) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := link.Validate(); err != nil {
		log.Warn("magic link validation failed during create",
			slog.String("error", err.Error()),
			slog.String("link_id", link.ID.String()))
		return err
	}

	query := `
		INSERT INTO magic_links (id, user_id, token, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		link.ID,
		link.UserID,
		link.Token,
		link.ExpiresAt,
		link.Used,
		link.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			// Token collision; the service retries with a fresh token.
			log.Warn("magic link token collision",
				slog.String("link_id", link.ID.String()))
			return store.ErrTokenExists
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, link.UserID)
		}

		log.Error("failed to create magic link",
			slog.String("error", err.Error()),
			slog.String("link_id", link.ID.String()))
		return err
	}

	log.Debug("magic link created",
		slog.String("link_id", link.ID.String()),
		slog.String("user_id", link.UserID.String()))
	return nil
}

// GetByToken implements store.MagicLinkStore.GetByToken
// Returns store.ErrMagicLinkNotFound if no link exists for the token.
func (s *PostgresMagicLinkStore) GetByToken(
	ctx context.Context,
	token string,
) (*domain.MagicLink, error) {
	query := `
		SELECT id, user_id, token, expires_at, used, created_at
		FROM magic_links
		WHERE token = $1
	`

	var link domain.MagicLink
	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&link.ID,
		&link.UserID,
		&link.Token,
		&link.ExpiresAt,
		&link.Used,
		&link.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrMagicLinkNotFound
		}
		return nil, err
	}

	return &link, nil
}

// Consume implements store.MagicLinkStore.Consume
//
// The used flag is flipped with a single conditional UPDATE so the
// check-and-set is atomic at the database: of any number of concurrent
// consumers, exactly one statement matches a row. A zero row count is then
// disambiguated with a follow-up existence check.
func (s *PostgresMagicLinkStore) Consume(ctx context.Context, token string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE magic_links
		SET used = TRUE
		WHERE token = $1 AND used = FALSE
	`
	result, err := s.db.ExecContext(ctx, query, token)
	if err != nil {
		log.Error("failed to consume magic link",
			slog.String("error", err.Error()))
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	// No row matched: the token is either unknown or already consumed.
	if _, err := s.GetByToken(ctx, token); err != nil {
		return err
	}
	return store.ErrAlreadyConsumed
}
