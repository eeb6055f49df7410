package profile

import (
	"time"
)

const (
	UnitMetric   = "metric"
	UnitImperial = "imperial"

	weightUnitKg = "kg"
	weightUnitLb = "lb"
	heightUnitCm = "cm"
	heightUnitIn = "in"
)

// Profile is the stored row. Everything the user has not filled in yet is nil.
type Profile struct {
	ID            string    `db:"id" json:"id"`
	FirstName     *string   `db:"first_name" json:"first_name"`
	LastName      *string   `db:"last_name" json:"last_name"`
	Age           *int      `db:"age" json:"age"`
	Gender        *string   `db:"gender" json:"gender"`
	Weight        *float64  `db:"weight" json:"weight"`
	Height        *float64  `db:"height" json:"height"`
	WeightUnit    string    `db:"weight_unit" json:"weight_unit"`
	HeightUnit    string    `db:"height_unit" json:"height_unit"`
	ActivityLevel *string   `db:"activity_level" json:"activity_level"`
	Goal          *string   `db:"goal" json:"goal"`
	CalorieGoal   *float64  `db:"calorie_goal" json:"calorie_goal"`
	ProteinGoal   *float64  `db:"protein_goal" json:"protein_goal"`
	CarbsGoal     *float64  `db:"carbs_goal" json:"carbs_goal"`
	FatGoal       *float64  `db:"fat_goal" json:"fat_goal"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Form is the profile as the client edits it. Units are expressed as
// metric or imperial rather than the stored kg/lb and cm/in.
type Form struct {
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Age           int     `json:"age" validate:"gte=1,lte=120"`
	Gender        string  `json:"gender" validate:"oneof=male female other"`
	Weight        float64 `json:"weight" validate:"gte=20,lte=500"`
	Height        float64 `json:"height" validate:"gte=50,lte=250"`
	WeightUnit    string  `json:"weight_unit" validate:"oneof=metric imperial"`
	HeightUnit    string  `json:"height_unit" validate:"oneof=metric imperial"`
	ActivityLevel string  `json:"activity_level" validate:"oneof=sedentary lightly_active moderately_active very_active extremely_active"`
	Goal          string  `json:"goal" validate:"oneof=lose_weight maintain_weight gain_weight"`
	CalorieGoal   float64 `json:"calorie_goal" validate:"gte=500,lte=10000"`
	ProteinGoal   float64 `json:"protein_goal" validate:"gte=0"`
	CarbsGoal     float64 `json:"carbs_goal" validate:"gte=0"`
	FatGoal       float64 `json:"fat_goal" validate:"gte=0"`
}

func DefaultForm() Form {
	return Form{
		Age:           30,
		Gender:        "male",
		Weight:        70,
		Height:        170,
		WeightUnit:    UnitMetric,
		HeightUnit:    UnitMetric,
		ActivityLevel: "moderately_active",
		Goal:          "maintain_weight",
		CalorieGoal:   2000,
		ProteinGoal:   150,
		CarbsGoal:     200,
		FatGoal:       65,
	}
}

var (
	genders        = []string{"male", "female", "other"}
	activityLevels = []string{"sedentary", "lightly_active", "moderately_active", "very_active", "extremely_active"}
	goals          = []string{"lose_weight", "maintain_weight", "gain_weight"}
)

// FormFromProfile fills a form from a stored profile. Missing or
// unrecognized values keep the form defaults.
func FormFromProfile(p *Profile) Form {
	f := DefaultForm()
	if p == nil {
		return f
	}

	if p.FirstName != nil {
		f.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		f.LastName = *p.LastName
	}
	if p.Age != nil {
		f.Age = *p.Age
	}
	if p.Gender != nil && contains(genders, *p.Gender) {
		f.Gender = *p.Gender
	}
	if p.Weight != nil {
		f.Weight = *p.Weight
	}
	if p.Height != nil {
		f.Height = *p.Height
	}
	if p.ActivityLevel != nil && contains(activityLevels, *p.ActivityLevel) {
		f.ActivityLevel = *p.ActivityLevel
	}
	if p.Goal != nil && contains(goals, *p.Goal) {
		f.Goal = *p.Goal
	}
	f.WeightUnit = formUnit(p.WeightUnit, weightUnitKg)
	f.HeightUnit = formUnit(p.HeightUnit, heightUnitCm)
	if p.CalorieGoal != nil {
		f.CalorieGoal = *p.CalorieGoal
	}
	if p.ProteinGoal != nil {
		f.ProteinGoal = *p.ProteinGoal
	}
	if p.CarbsGoal != nil {
		f.CarbsGoal = *p.CarbsGoal
	}
	if p.FatGoal != nil {
		f.FatGoal = *p.FatGoal
	}
	return f
}

// Profile converts the form into a row for userID.
func (f Form) Profile(userID string) *Profile {
	return &Profile{
		ID:            userID,
		FirstName:     &f.FirstName,
		LastName:      &f.LastName,
		Age:           &f.Age,
		Gender:        &f.Gender,
		Weight:        &f.Weight,
		Height:        &f.Height,
		WeightUnit:    storedUnit(f.WeightUnit, weightUnitKg, weightUnitLb),
		HeightUnit:    storedUnit(f.HeightUnit, heightUnitCm, heightUnitIn),
		ActivityLevel: &f.ActivityLevel,
		Goal:          &f.Goal,
		CalorieGoal:   &f.CalorieGoal,
		ProteinGoal:   &f.ProteinGoal,
		CarbsGoal:     &f.CarbsGoal,
		FatGoal:       &f.FatGoal,
	}
}

func (f Form) GoalInput() GoalInput {
	return GoalInput{
		Age:           f.Age,
		Gender:        f.Gender,
		Weight:        f.Weight,
		Height:        f.Height,
		WeightUnit:    f.WeightUnit,
		HeightUnit:    f.HeightUnit,
		ActivityLevel: f.ActivityLevel,
		Goal:          f.Goal,
	}
}

func formUnit(stored, metricUnit string) string {
	if stored == "" || stored == metricUnit {
		return UnitMetric
	}
	return UnitImperial
}

func storedUnit(formUnit, metricUnit, imperialUnit string) string {
	if formUnit == UnitImperial {
		return imperialUnit
	}
	return metricUnit
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
