package messagestore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/katrohit/nutrifolio/internal/messagestore/models"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) StoreUserMessage(ctx context.Context, userID string, messageText string) (*models.ChatMessage, error) {
	return r.insert(ctx, userID, messageText, true)
}

func (r *Repository) StoreAssistantMessage(ctx context.Context, userID string, responseText string) (*models.ChatMessage, error) {
	return r.insert(ctx, userID, responseText, false)
}

func (r *Repository) insert(ctx context.Context, userID, text string, isUser bool) (*models.ChatMessage, error) {
	query := `
		INSERT INTO chat_messages (id, user_id, message, is_user, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, user_id, message, response, is_user, created_at
	`

	var msg models.ChatMessage
	err := r.db.GetContext(ctx, &msg, query, uuid.New().String(), userID, text, isUser)
	if err != nil {
		return nil, fmt.Errorf("failed to store chat message: %w", err)
	}
	return &msg, nil
}

// SetResponse records the assistant's reply on a user turn.
func (r *Repository) SetResponse(ctx context.Context, userID string, messageID string, responseText string) error {
	query := `
		UPDATE chat_messages
		SET response = $3
		WHERE id = $1 AND user_id = $2
	`

	_, err := r.db.ExecContext(ctx, query, messageID, userID, responseText)
	if err != nil {
		return fmt.Errorf("failed to store response for message %s: %w", messageID, err)
	}
	return nil
}

// GetMessageHistory returns the latest limit messages, oldest first.
func (r *Repository) GetMessageHistory(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	query := `
		SELECT id, user_id, message, response, is_user, created_at
		FROM (
			SELECT id, user_id, message, response, is_user, created_at
			FROM chat_messages
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC
	`

	history := []models.ChatMessage{}
	err := r.db.SelectContext(ctx, &history, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get message history: %w", err)
	}

	logrus.Debugf("Loaded %d chat messages for user %s", len(history), userID)
	return history, nil
}
