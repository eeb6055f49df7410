package profile

import (
	"math"
)

const (
	lbToKg = 0.453592
	inToCm = 2.54

	goalAdjustment = 500.0
	minCalories    = 1200.0

	proteinShare = 0.3
	carbsShare   = 0.4
	fatShare     = 0.3

	kcalPerGramProtein = 4.0
	kcalPerGramCarbs   = 4.0
	kcalPerGramFat     = 9.0
)

var activityFactors = map[string]float64{
	"sedentary":         1.2,
	"lightly_active":    1.375,
	"moderately_active": 1.55,
	"very_active":       1.725,
	"extremely_active":  1.9,
}

const defaultActivityFactor = 1.55

type GoalInput struct {
	Age           int     `json:"age" validate:"gte=1,lte=120"`
	Gender        string  `json:"gender" validate:"oneof=male female other"`
	Weight        float64 `json:"weight" validate:"gte=20,lte=500"`
	Height        float64 `json:"height" validate:"gte=50,lte=250"`
	WeightUnit    string  `json:"weight_unit" validate:"oneof=metric imperial"`
	HeightUnit    string  `json:"height_unit" validate:"oneof=metric imperial"`
	ActivityLevel string  `json:"activity_level"`
	Goal          string  `json:"goal"`
}

type GoalSuggestion struct {
	BMR         float64 `json:"bmr"`
	TDEE        float64 `json:"tdee"`
	CalorieGoal float64 `json:"calorie_goal"`
	ProteinGoal float64 `json:"protein_goal"`
	CarbsGoal   float64 `json:"carbs_goal"`
	FatGoal     float64 `json:"fat_goal"`
}

// CalculateGoals suggests daily goals with the Mifflin-St Jeor equation.
// Macros are split 30/40/30 from the unrounded calorie target; the calorie
// goal itself is then rounded to the nearest 50.
func CalculateGoals(in GoalInput) GoalSuggestion {
	weightKg := in.Weight
	if in.WeightUnit == UnitImperial {
		weightKg = in.Weight * lbToKg
	}
	heightCm := in.Height
	if in.HeightUnit == UnitImperial {
		heightCm = in.Height * inToCm
	}

	bmr := 10*weightKg + 6.25*heightCm - 5*float64(in.Age)
	if in.Gender == "male" {
		bmr += 5
	} else {
		bmr -= 161
	}

	factor, ok := activityFactors[in.ActivityLevel]
	if !ok {
		factor = defaultActivityFactor
	}
	tdee := bmr * factor

	calories := tdee
	switch in.Goal {
	case "lose_weight":
		calories -= goalAdjustment
	case "gain_weight":
		calories += goalAdjustment
	}
	calories = math.Max(minCalories, calories)

	return GoalSuggestion{
		BMR:         bmr,
		TDEE:        tdee,
		CalorieGoal: math.Round(calories/50) * 50,
		ProteinGoal: math.Round(calories * proteinShare / kcalPerGramProtein),
		CarbsGoal:   math.Round(calories * carbsShare / kcalPerGramCarbs),
		FatGoal:     math.Round(calories * fatShare / kcalPerGramFat),
	}
}
