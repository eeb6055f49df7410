package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

var (
	ErrUserNotFound                       = errors.New("user not found")
	ErrTelegramIDAlreadyLinkedToOtherUser = errors.New("this Telegram account is already linked to another user")
	ErrTelegramIDAlreadyLinkedToThisUser  = errors.New("this Telegram account is already linked to your profile")
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) LinkTelegramAccount(ctx context.Context, userID string, telegramID int64) error {
	existing, err := s.repo.GetLinkByTelegramID(ctx, telegramID)
	if err != nil {
		logrus.Errorf("Failed to check existing link for telegram_id %d: %v", telegramID, err)
		return fmt.Errorf("failed to check Telegram link: %w", err)
	}
	if existing != nil {
		if existing.UserID == userID {
			logrus.Infof("Telegram ID %d is already linked to user %s", telegramID, userID)
			return ErrTelegramIDAlreadyLinkedToThisUser
		}
		logrus.Warnf("Telegram ID %d requested by user %s is already linked to user %s",
			telegramID, userID, existing.UserID)
		return ErrTelegramIDAlreadyLinkedToOtherUser
	}

	if err := s.repo.InsertLink(ctx, telegramID, userID); err != nil {
		logrus.Errorf("Failed to link telegram_id %d to user %s: %v", telegramID, userID, err)
		return err
	}

	logrus.Infof("Telegram ID %d linked to user %s", telegramID, userID)
	return nil
}

// FindUserByTelegramID returns the user id linked to telegramID.
func (s *Service) FindUserByTelegramID(ctx context.Context, telegramID int64) (string, error) {
	link, err := s.repo.GetLinkByTelegramID(ctx, telegramID)
	if err != nil {
		logrus.Errorf("Failed to look up user by telegram_id %d: %v", telegramID, err)
		return "", err
	}
	if link == nil {
		return "", ErrUserNotFound
	}
	return link.UserID, nil
}
