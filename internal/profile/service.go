package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/katrohit/nutrifolio/internal/foodlog"
	"github.com/katrohit/nutrifolio/internal/validation"
)

var ErrInvalidProfile = errors.New("invalid profile")

type Service struct {
	repo     *Repository
	validate *validator.Validate
}

func NewService(repo *Repository) *Service {
	return &Service{
		repo:     repo,
		validate: validation.New(),
	}
}

// Get returns the user's profile form, or the defaults when none is saved.
func (s *Service) Get(ctx context.Context, userID string) (Form, error) {
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		return Form{}, err
	}
	return FormFromProfile(p), nil
}

func (s *Service) Save(ctx context.Context, userID string, f Form) (Form, error) {
	if err := s.validate.Struct(f); err != nil {
		return Form{}, fmt.Errorf("%w: %s", ErrInvalidProfile, validation.Message(err))
	}

	saved, err := s.repo.Upsert(ctx, f.Profile(userID))
	if err != nil {
		return Form{}, err
	}

	logrus.WithField("user_id", userID).Info("Profile saved")
	return FormFromProfile(saved), nil
}

func (s *Service) SuggestGoals(in GoalInput) (GoalSuggestion, error) {
	if err := s.validate.Struct(in); err != nil {
		return GoalSuggestion{}, fmt.Errorf("%w: %s", ErrInvalidProfile, validation.Message(err))
	}
	return CalculateGoals(in), nil
}

// DailyGoals returns the user's saved goals. Goals that were never set
// fall back to foodlog.DefaultGoals.
func (s *Service) DailyGoals(ctx context.Context, userID string) (foodlog.Goals, error) {
	goals := foodlog.DefaultGoals

	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		return goals, err
	}
	if p == nil {
		return goals, nil
	}

	if p.CalorieGoal != nil {
		goals.Calories = *p.CalorieGoal
	}
	if p.ProteinGoal != nil {
		goals.Protein = *p.ProteinGoal
	}
	if p.CarbsGoal != nil {
		goals.Carbs = *p.CarbsGoal
	}
	if p.FatGoal != nil {
		goals.Fat = *p.FatGoal
	}
	return goals, nil
}
