// Package chat runs a user's chat turn end to end: it stores the message,
// asks the assistant for a reply and records that reply.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/katrohit/nutrifolio/internal/assistant"
	"github.com/katrohit/nutrifolio/internal/messagestore/models"
)

// FallbackResponse is shown and stored when the assistant cannot answer.
const FallbackResponse = "I'm having trouble processing your request right now. Please try again later."

const historyLimit = 50

var (
	ErrEmptyMessage       = errors.New("message is required")
	ErrSubmissionInFlight = errors.New("a previous message is still being processed")
	ErrNotPersisted       = errors.New("chat turn could not be fully saved")
)

type Relay interface {
	Classify(ctx context.Context, req assistant.Request) (*assistant.Result, error)
}

type MessageStore interface {
	StoreUserMessage(ctx context.Context, userID string, messageText string) (*models.ChatMessage, error)
	StoreAssistantMessage(ctx context.Context, userID string, responseText string) (*models.ChatMessage, error)
	SetResponse(ctx context.Context, userID string, messageID string, responseText string) error
	GetMessageHistory(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error)
}

type Notifier interface {
	FoodLogUpdated(userID string)
}

// Turn is the outcome of one submission as the client should display it.
type Turn struct {
	UserMessage      *models.ChatMessage `json:"user_message"`
	AssistantMessage *models.ChatMessage `json:"assistant_message"`
	FoodData         *assistant.FoodData `json:"food_data"`
	Failed           bool                `json:"failed"`
}

type Service struct {
	relay    Relay
	store    MessageStore
	notifier Notifier

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewService(relay Relay, store MessageStore, notifier Notifier) *Service {
	return &Service{
		relay:    relay,
		store:    store,
		notifier: notifier,
		inFlight: make(map[string]struct{}),
	}
}

func (s *Service) History(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	return s.store.GetMessageHistory(ctx, userID, historyLimit)
}

// Submit processes one message. Only one submission per user runs at a
// time; a concurrent one fails with ErrSubmissionInFlight.
//
// When the reply was produced but could not be saved, Submit returns the
// assembled turn together with an error wrapping ErrNotPersisted.
func (s *Service) Submit(ctx context.Context, userID, message, timestamp string) (*Turn, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	if !s.acquire(userID) {
		return nil, ErrSubmissionInFlight
	}
	defer s.release(userID)

	log := logrus.WithField("user_id", userID)

	userMsg, err := s.store.StoreUserMessage(ctx, userID, message)
	if err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	turn := &Turn{UserMessage: userMsg}
	responseText := FallbackResponse

	result, err := s.relay.Classify(ctx, assistant.Request{Message: message, UserID: userID, Timestamp: timestamp})
	if err != nil {
		log.Errorf("Assistant failed, storing fallback reply: %v", err)
		turn.Failed = true
	} else {
		responseText = result.Response
		turn.FoodData = result.FoodData
	}

	userMsg.Response = &responseText

	var persistErrs []error
	if err := s.store.SetResponse(ctx, userID, userMsg.ID, responseText); err != nil {
		persistErrs = append(persistErrs, err)
	}

	assistantMsg, err := s.store.StoreAssistantMessage(ctx, userID, responseText)
	if err != nil {
		persistErrs = append(persistErrs, err)
		assistantMsg = &models.ChatMessage{UserID: userID, Message: responseText, CreatedAt: time.Now()}
	}
	turn.AssistantMessage = assistantMsg

	if turn.FoodData != nil && s.notifier != nil {
		s.notifier.FoodLogUpdated(userID)
	}

	if len(persistErrs) > 0 {
		err := errors.Join(persistErrs...)
		log.Errorf("Chat turn not fully saved: %v", err)
		return turn, fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}
	return turn, nil
}

func (s *Service) acquire(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[userID]; busy {
		return false
	}
	s.inFlight[userID] = struct{}{}
	return true
}

func (s *Service) release(userID string) {
	s.mu.Lock()
	delete(s.inFlight, userID)
	s.mu.Unlock()
}
