package foodlog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/katrohit/nutrifolio/internal/validation"
)

var (
	ErrInvalidDate  = errors.New("date must be formatted as YYYY-MM-DD")
	ErrInvalidEntry = errors.New("invalid food log entry")
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 50
	weekDays           = 7
)

// GoalsProvider resolves a user's daily nutrition goals.
type GoalsProvider interface {
	DailyGoals(ctx context.Context, userID string) (Goals, error)
}

// Notifier is told whenever a user's food log changes.
type Notifier interface {
	FoodLogUpdated(userID string)
}

type Service struct {
	repo     *Repository
	goals    GoalsProvider
	notifier Notifier
	validate *validator.Validate
	now      func() time.Time
}

func NewService(repo *Repository, goals GoalsProvider, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		goals:    goals,
		notifier: notifier,
		validate: NewValidator(),
		now:      time.Now,
	}
}

// NewValidator returns a validator that understands the meal_type tag.
func NewValidator() *validator.Validate {
	v := validation.New()
	if err := RegisterValidations(v); err != nil {
		panic(fmt.Sprintf("foodlog: register validations: %v", err))
	}
	return v
}

func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	return s.repo.ListRecent(ctx, userID, limit)
}

func (s *Service) GetEntry(ctx context.Context, userID, id string) (*Entry, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// DayLog groups the entries of date (today when empty) by meal type.
func (s *Service) DayLog(ctx context.Context, userID, date string) (*DayLog, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.ListByDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	return groupByMeal(date, entries), nil
}

func groupByMeal(date string, entries []Entry) *DayLog {
	byMeal := make(map[MealType][]Entry)
	var other []Entry
	for _, e := range entries {
		mt, ok := ParseMealType(e.MealType)
		if !ok {
			other = append(other, e)
			continue
		}
		byMeal[mt] = append(byMeal[mt], e)
	}
	// Rows written before meal types were validated land under Snack.
	byMeal[Snack] = append(byMeal[Snack], other...)

	log := &DayLog{Date: date, Meals: []MealGroup{}, Totals: Sum(entries)}
	for _, mt := range MealOrder {
		group := byMeal[mt]
		if len(group) == 0 {
			continue
		}
		log.Meals = append(log.Meals, MealGroup{MealType: mt, Entries: group, Totals: Sum(group)})
	}
	return log
}

func (s *Service) DailySummary(ctx context.Context, userID, date string) (*DailySummary, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.ListByDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	goals := s.dailyGoals(ctx, userID)
	consumed := Sum(entries)

	return &DailySummary{
		Date:     date,
		Consumed: consumed,
		Goals:    goals,
		Remaining: Totals{
			Calories: math.Max(0, goals.Calories-consumed.Calories),
			Protein:  math.Max(0, goals.Protein-consumed.Protein),
			Carbs:    math.Max(0, goals.Carbs-consumed.Carbs),
			Fat:      math.Max(0, goals.Fat-consumed.Fat),
		},
		Progress: Totals{
			Calories: percent(consumed.Calories, goals.Calories),
			Protein:  percent(consumed.Protein, goals.Protein),
			Carbs:    percent(consumed.Carbs, goals.Carbs),
			Fat:      percent(consumed.Fat, goals.Fat),
		},
	}, nil
}

func percent(value, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	return math.Min(100, value/goal*100)
}

func (s *Service) dailyGoals(ctx context.Context, userID string) Goals {
	if s.goals == nil {
		return DefaultGoals
	}
	goals, err := s.goals.DailyGoals(ctx, userID)
	if err != nil {
		logrus.Warnf("Failed to load goals for user %s, using defaults: %v", userID, err)
		return DefaultGoals
	}
	return goals
}

// WeeklySummary returns per-day totals for the seven days ending on endDate
// (today when empty). Days without entries are present with zero totals.
func (s *Service) WeeklySummary(ctx context.Context, userID, endDate string) (*WeeklySummary, error) {
	endDate, err := s.resolveDate(endDate)
	if err != nil {
		return nil, err
	}
	end, _ := time.Parse(DateLayout, endDate)
	start := end.AddDate(0, 0, -(weekDays - 1))
	from := start.Format(DateLayout)

	entries, err := s.repo.ListRange(ctx, userID, from, endDate)
	if err != nil {
		return nil, err
	}

	perDay := make(map[string]*Totals, weekDays)
	for _, e := range entries {
		t, ok := perDay[e.LogDate]
		if !ok {
			t = &Totals{}
			perDay[e.LogDate] = t
		}
		t.Add(e)
	}

	summary := &WeeklySummary{From: from, To: endDate, Days: make([]DayTotals, 0, weekDays)}
	for i := 0; i < weekDays; i++ {
		day := start.AddDate(0, 0, i).Format(DateLayout)
		var t Totals
		if dt, ok := perDay[day]; ok {
			t = *dt
		}
		summary.Days = append(summary.Days, DayTotals{Date: day, Totals: t})
		summary.Total.Calories += t.Calories
		summary.Total.Protein += t.Protein
		summary.Total.Carbs += t.Carbs
		summary.Total.Fat += t.Fat
	}
	summary.Average = Totals{
		Calories: summary.Total.Calories / weekDays,
		Protein:  summary.Total.Protein / weekDays,
		Carbs:    summary.Total.Carbs / weekDays,
		Fat:      summary.Total.Fat / weekDays,
	}
	return summary, nil
}

func (s *Service) UpdateEntry(ctx context.Context, userID, id string, u EntryUpdate) (*Entry, error) {
	if err := s.validate.Struct(u); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEntry, validation.Message(err))
	}
	mt, _ := ParseMealType(u.MealType)
	u.MealType = string(mt)

	e, err := s.repo.Update(ctx, userID, id, u)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"user_id": userID, "entry_id": id}).Info("Food log entry updated")
	s.notify(userID)
	return e, nil
}

func (s *Service) DeleteEntry(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{"user_id": userID, "entry_id": id}).Info("Food log entry deleted")
	s.notify(userID)
	return nil
}

func (s *Service) notify(userID string) {
	if s.notifier != nil {
		s.notifier.FoodLogUpdated(userID)
	}
}

func (s *Service) resolveDate(date string) (string, error) {
	if date == "" {
		return s.now().Format(DateLayout), nil
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return "", ErrInvalidDate
	}
	return date, nil
}
