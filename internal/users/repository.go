package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// GetLinkByTelegramID returns nil without an error when the account is not linked.
func (r *Repository) GetLinkByTelegramID(ctx context.Context, telegramID int64) (*TelegramLink, error) {
	query := `
		SELECT telegram_id, user_id, created_at
		FROM telegram_links
		WHERE telegram_id = $1
	`
	var link TelegramLink
	err := r.db.GetContext(ctx, &link, query, telegramID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get telegram link %d: %w", telegramID, err)
	}
	return &link, nil
}

func (r *Repository) InsertLink(ctx context.Context, telegramID int64, userID string) error {
	query := `
		INSERT INTO telegram_links (telegram_id, user_id, created_at)
		VALUES ($1, $2, NOW())
	`
	if _, err := r.db.ExecContext(ctx, query, telegramID, userID); err != nil {
		return fmt.Errorf("failed to link telegram_id %d to user %s: %w", telegramID, userID, err)
	}
	return nil
}
