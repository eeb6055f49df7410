package foodlog

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type MealType string

const (
	Breakfast      MealType = "Breakfast"
	MorningSnack   MealType = "Morning Snack"
	Lunch          MealType = "Lunch"
	AfternoonSnack MealType = "Afternoon Snack"
	Dinner         MealType = "Dinner"
	EveningSnack   MealType = "Evening Snack"
	Snack          MealType = "Snack"
)

// MealOrder is the order meal groups are presented in a day log.
var MealOrder = []MealType{Breakfast, MorningSnack, Lunch, AfternoonSnack, Dinner, EveningSnack, Snack}

// ParseMealType matches s against the known meal types ignoring case and
// surrounding whitespace.
func ParseMealType(s string) (MealType, bool) {
	s = strings.TrimSpace(s)
	for _, mt := range MealOrder {
		if strings.EqualFold(s, string(mt)) {
			return mt, true
		}
	}
	return "", false
}

// RegisterValidations adds the "meal_type" tag to v.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("meal_type", func(fl validator.FieldLevel) bool {
		_, ok := ParseMealType(fl.Field().String())
		return ok
	})
}

const DateLayout = "2006-01-02"

type Entry struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	FoodName    string    `db:"food_name" json:"food_name"`
	Brand       *string   `db:"brand" json:"brand,omitempty"`
	Calories    float64   `db:"calories" json:"calories"`
	Protein     float64   `db:"protein" json:"protein"`
	Carbs       float64   `db:"carbs" json:"carbs"`
	Fat         float64   `db:"fat" json:"fat"`
	MealType    string    `db:"meal_type" json:"meal_type"`
	ServingQty  float64   `db:"serving_qty" json:"serving_qty"`
	ServingSize string    `db:"serving_size" json:"serving_size"`
	LogDate     string    `db:"log_date" json:"log_date"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// EntryUpdate holds the fields a user may edit on an existing entry.
type EntryUpdate struct {
	FoodName    string  `json:"food_name" validate:"required"`
	MealType    string  `json:"meal_type" validate:"required,meal_type"`
	Calories    float64 `json:"calories" validate:"gte=0"`
	Protein     float64 `json:"protein" validate:"gte=0"`
	Carbs       float64 `json:"carbs" validate:"gte=0"`
	Fat         float64 `json:"fat" validate:"gte=0"`
	ServingQty  float64 `json:"serving_qty" validate:"gt=0"`
	ServingSize string  `json:"serving_size" validate:"required"`
}

type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

func (t *Totals) Add(e Entry) {
	t.Calories += e.Calories
	t.Protein += e.Protein
	t.Carbs += e.Carbs
	t.Fat += e.Fat
}

func Sum(entries []Entry) Totals {
	var t Totals
	for _, e := range entries {
		t.Add(e)
	}
	return t
}

type Goals struct {
	Calories float64 `json:"calorie_goal"`
	Protein  float64 `json:"protein_goal"`
	Carbs    float64 `json:"carbs_goal"`
	Fat      float64 `json:"fat_goal"`
}

// DefaultGoals apply when a user has no profile goals yet.
var DefaultGoals = Goals{Calories: 2000, Protein: 150, Carbs: 200, Fat: 65}

type MealGroup struct {
	MealType MealType `json:"meal_type"`
	Entries  []Entry  `json:"entries"`
	Totals   Totals   `json:"totals"`
}

type DayLog struct {
	Date   string      `json:"date"`
	Meals  []MealGroup `json:"meals"`
	Totals Totals      `json:"totals"`
}

type DailySummary struct {
	Date      string `json:"date"`
	Consumed  Totals `json:"consumed"`
	Goals     Goals  `json:"goals"`
	Remaining Totals `json:"remaining"`
	// Progress is the consumed share of each goal in percent, capped at 100.
	Progress Totals `json:"progress"`
}

type DayTotals struct {
	Date   string `json:"date"`
	Totals Totals `json:"totals"`
}

type WeeklySummary struct {
	From    string      `json:"from"`
	To      string      `json:"to"`
	Days    []DayTotals `json:"days"`
	Total   Totals      `json:"total"`
	Average Totals      `json:"average"`
}
