package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const profileColumns = `id, first_name, last_name, age, gender, weight, height, weight_unit, height_unit,
	activity_level, goal, calorie_goal, protein_goal, carbs_goal, fat_goal, created_at, updated_at`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Get returns nil without an error when the user has no profile yet.
func (r *Repository) Get(ctx context.Context, userID string) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	var p Profile
	err := r.db.GetContext(ctx, &p, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", userID, err)
	}
	return &p, nil
}

func (r *Repository) Upsert(ctx context.Context, p *Profile) (*Profile, error) {
	query := `
		INSERT INTO profiles (id, first_name, last_name, age, gender, weight, height, weight_unit, height_unit,
			activity_level, goal, calorie_goal, protein_goal, carbs_goal, fat_goal, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			age = EXCLUDED.age,
			gender = EXCLUDED.gender,
			weight = EXCLUDED.weight,
			height = EXCLUDED.height,
			weight_unit = EXCLUDED.weight_unit,
			height_unit = EXCLUDED.height_unit,
			activity_level = EXCLUDED.activity_level,
			goal = EXCLUDED.goal,
			calorie_goal = EXCLUDED.calorie_goal,
			protein_goal = EXCLUDED.protein_goal,
			carbs_goal = EXCLUDED.carbs_goal,
			fat_goal = EXCLUDED.fat_goal,
			updated_at = NOW()
		RETURNING ` + profileColumns

	var saved Profile
	err := r.db.GetContext(ctx, &saved, query,
		p.ID, p.FirstName, p.LastName, p.Age, p.Gender, p.Weight, p.Height, p.WeightUnit, p.HeightUnit,
		p.ActivityLevel, p.Goal, p.CalorieGoal, p.ProteinGoal, p.CarbsGoal, p.FatGoal)
	if err != nil {
		return nil, fmt.Errorf("failed to save profile %s: %w", p.ID, err)
	}
	return &saved, nil
}
