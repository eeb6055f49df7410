package messagestore

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/katrohit/nutrifolio/internal/messagestore/models"
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{
		repo: repo,
	}
}

func (s *Service) StoreUserMessage(ctx context.Context, userID string, messageText string) (*models.ChatMessage, error) {
	logrus.Debugf("Storing message from user %s", userID)
	return s.repo.StoreUserMessage(ctx, userID, messageText)
}

func (s *Service) StoreAssistantMessage(ctx context.Context, userID string, responseText string) (*models.ChatMessage, error) {
	logrus.Debugf("Storing assistant reply for user %s", userID)
	return s.repo.StoreAssistantMessage(ctx, userID, responseText)
}

func (s *Service) SetResponse(ctx context.Context, userID string, messageID string, responseText string) error {
	logrus.Debugf("Attaching response to message %s", messageID)
	return s.repo.SetResponse(ctx, userID, messageID, responseText)
}

func (s *Service) GetMessageHistory(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	logrus.Debugf("Loading message history for user %s", userID)
	return s.repo.GetMessageHistory(ctx, userID, limit)
}
