package foodlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("food log entry not found")

const entryColumns = `id, user_id, food_name, brand, calories, protein, carbs, fat,
	meal_type, serving_qty, serving_size, log_date::text AS log_date, created_at`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Insert stores e, assigning an id and creation time when they are unset.
func (r *Repository) Insert(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO food_logs (id, user_id, food_name, brand, calories, protein, carbs, fat,
			meal_type, serving_qty, serving_size, log_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query, e.ID, e.UserID, e.FoodName, e.Brand,
		e.Calories, e.Protein, e.Carbs, e.Fat,
		e.MealType, e.ServingQty, e.ServingSize, e.LogDate, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert food log entry: %w", err)
	}
	return nil
}

func (r *Repository) RecentFoodNames(ctx context.Context, userID string, limit int) ([]string, error) {
	query := `
		SELECT food_name
		FROM food_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	var names []string
	if err := r.db.SelectContext(ctx, &names, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get recent food names: %w", err)
	}
	return names, nil
}

func (r *Repository) ListRecent(ctx context.Context, userID string, limit int) ([]Entry, error) {
	query := `SELECT ` + entryColumns + `
		FROM food_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	var entries []Entry
	if err := r.db.SelectContext(ctx, &entries, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list recent food logs: %w", err)
	}
	return entries, nil
}

func (r *Repository) ListByDate(ctx context.Context, userID, date string) ([]Entry, error) {
	query := `SELECT ` + entryColumns + `
		FROM food_logs
		WHERE user_id = $1 AND log_date = $2
		ORDER BY created_at ASC
	`

	var entries []Entry
	if err := r.db.SelectContext(ctx, &entries, query, userID, date); err != nil {
		return nil, fmt.Errorf("failed to list food logs for %s: %w", date, err)
	}
	return entries, nil
}

// ListRange returns entries with from <= log_date <= to.
func (r *Repository) ListRange(ctx context.Context, userID, from, to string) ([]Entry, error) {
	query := `SELECT ` + entryColumns + `
		FROM food_logs
		WHERE user_id = $1 AND log_date BETWEEN $2 AND $3
		ORDER BY log_date ASC, created_at ASC
	`

	var entries []Entry
	if err := r.db.SelectContext(ctx, &entries, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("failed to list food logs from %s to %s: %w", from, to, err)
	}
	return entries, nil
}

func (r *Repository) GetByID(ctx context.Context, userID, id string) (*Entry, error) {
	query := `SELECT ` + entryColumns + `
		FROM food_logs
		WHERE id = $1 AND user_id = $2
	`

	var e Entry
	err := r.db.GetContext(ctx, &e, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get food log entry %s: %w", id, err)
	}
	return &e, nil
}

func (r *Repository) Update(ctx context.Context, userID, id string, u EntryUpdate) (*Entry, error) {
	query := `
		UPDATE food_logs
		SET food_name = $3, meal_type = $4, calories = $5, protein = $6, carbs = $7, fat = $8,
			serving_qty = $9, serving_size = $10
		WHERE id = $1 AND user_id = $2
		RETURNING ` + entryColumns

	var e Entry
	err := r.db.GetContext(ctx, &e, query, id, userID,
		u.FoodName, u.MealType, u.Calories, u.Protein, u.Carbs, u.Fat, u.ServingQty, u.ServingSize)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update food log entry %s: %w", id, err)
	}
	return &e, nil
}

func (r *Repository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM food_logs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete food log entry %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete food log entry %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
