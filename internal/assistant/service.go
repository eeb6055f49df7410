// Package assistant classifies a chat message as a food entry or general
// conversation with the help of an LLM and logs recognized food.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/katrohit/nutrifolio/internal/chatgpt"
	"github.com/katrohit/nutrifolio/internal/foodlog"
	"github.com/katrohit/nutrifolio/internal/metrics"
)

var (
	ErrEmptyMessage  = errors.New("message is required")
	ErrMissingUserID = errors.New("userId is required")
	ErrInvalidUserID = errors.New("userId must be a UUID")
)

const recentFoodsLimit = 5

// FoodLogStore is the slice of the food log repository the relay needs.
type FoodLogStore interface {
	Insert(ctx context.Context, e *foodlog.Entry) error
	RecentFoodNames(ctx context.Context, userID string, limit int) ([]string, error)
}

type Request struct {
	Message   string `json:"message"`
	UserID    string `json:"userId"`
	Timestamp string `json:"timestamp,omitempty"`
}

type Result struct {
	Response string    `json:"response"`
	FoodData *FoodData `json:"foodData"`
}

type Service struct {
	completer chatgpt.Completer
	store     FoodLogStore
	validate  *validator.Validate
	now       func() time.Time
}

func NewService(completer chatgpt.Completer, store FoodLogStore) *Service {
	return &Service{
		completer: completer,
		store:     store,
		validate:  foodlog.NewValidator(),
		now:       time.Now,
	}
}

// Classify runs one relay round trip. A recognized food entry is inserted
// before the result is returned; at most one row is written per call.
func (s *Service) Classify(ctx context.Context, req Request) (*Result, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, ErrInvalidUserID
	}

	log := logrus.WithField("user_id", userID)
	mealType := DefaultMealType(req.Timestamp)

	recent, err := s.store.RecentFoodNames(ctx, userID, recentFoodsLimit)
	if err != nil {
		log.Warnf("Failed to load recent foods, continuing without context: %v", err)
		recent = nil
	}

	raw, err := s.completer.CompleteJSON(ctx, buildSystemPrompt(mealType, recent), message)
	if err != nil {
		metrics.Classifications.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("classification request failed: %w", err)
	}

	c := classify(s.validate, raw, mealType)
	if c.outcome == replyPassthrough {
		log.Warnf("Model reply did not match the expected schema, passing it through: %q", raw)
	}

	if c.food == nil {
		metrics.Classifications.WithLabelValues(c.outcome).Inc()
		return &Result{Response: c.response}, nil
	}

	c.food.LogDate = logDate(s.now(), req.Timestamp)
	entry := &foodlog.Entry{
		UserID:      userID,
		FoodName:    c.food.FoodName,
		Brand:       c.food.Brand,
		Calories:    c.food.Calories,
		Protein:     c.food.Protein,
		Carbs:       c.food.Carbs,
		Fat:         c.food.Fat,
		MealType:    c.food.MealType,
		ServingQty:  c.food.ServingQty,
		ServingSize: c.food.ServingSize,
		LogDate:     c.food.LogDate,
	}
	if err := s.store.Insert(ctx, entry); err != nil {
		metrics.Classifications.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("failed to log food: %w", err)
	}
	c.food.ID = entry.ID

	metrics.Classifications.WithLabelValues(c.outcome).Inc()
	log.WithFields(logrus.Fields{
		"food_name": entry.FoodName,
		"meal_type": entry.MealType,
		"calories":  entry.Calories,
	}).Info("Food entry logged")

	return &Result{Response: c.response, FoodData: c.food}, nil
}
