package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coreybb/dietlog/models"
)

// MealRepository handles database operations for meals.
type MealRepository struct {
	db *sql.DB
}

func NewMealRepository(db *sql.DB) *MealRepository {
	return &MealRepository{db: db}
}

const mealColumns = `id, user_id, name, description, date, its_within_the_diet, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeal(row rowScanner) (models.Meal, error) {
	var m models.Meal
	var updatedAt sql.NullString
	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.Name,
		&m.Description,
		&m.OccurredAt,
		&m.WithinDiet,
		&m.CreatedAt,
		&updatedAt,
	)
	m.UpdatedAt = updatedAt.String
	return m, err
}

func (r *MealRepository) CreateMeal(ctx context.Context, meal *models.Meal) error {
	query := `
		INSERT INTO meals (id, user_id, name, description, date, its_within_the_diet, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		meal.ID,
		meal.UserID,
		meal.Name,
		meal.Description,
		meal.OccurredAt,
		meal.WithinDiet,
		meal.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("meal id %s already exists: %w", meal.ID, models.ErrConflict)
		}
		return fmt.Errorf("failed to insert meal: %w", err)
	}
	return nil
}

func (r *MealRepository) GetMealByID(ctx context.Context, mealID string) (*models.Meal, error) {
	query := `SELECT ` + mealColumns + ` FROM meals WHERE id = $1`

	meal, err := scanMeal(r.db.QueryRowContext(ctx, query, mealID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("meal %s not found: %w", mealID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get meal by ID: %w", err)
	}
	return &meal, nil
}

// GetMealsByUserID returns the user's meals ordered by occurrence, oldest first.
func (r *MealRepository) GetMealsByUserID(ctx context.Context, userID string) ([]models.Meal, error) {
	query := `SELECT ` + mealColumns + ` FROM meals WHERE user_id = $1 ORDER BY date ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query meals for user %s: %w", userID, err)
	}
	defer rows.Close()

	meals := []models.Meal{}
	for rows.Next() {
		meal, err := scanMeal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal row for user %s: %w", userID, err)
		}
		meals = append(meals, meal)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating meal rows for user %s: %w", userID, err)
	}
	return meals, nil
}

// UpdateMeal writes every mutable column of meal back to its row.
func (r *MealRepository) UpdateMeal(ctx context.Context, meal *models.Meal) error {
	query := `
		UPDATE meals
		SET name = $1,
		    description = $2,
		    date = $3,
		    its_within_the_diet = $4,
		    updated_at = $5
		WHERE id = $6
	`
	result, err := r.db.ExecContext(ctx, query,
		meal.Name,
		meal.Description,
		meal.OccurredAt,
		meal.WithinDiet,
		meal.UpdatedAt,
		meal.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update meal with ID %s: %w", meal.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for meal update ID %s: %w", meal.ID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("meal not found for update (ID: %s): %w", meal.ID, models.ErrNotFound)
	}
	return nil
}

func (r *MealRepository) DeleteMeal(ctx context.Context, mealID string) error {
	query := `DELETE FROM meals WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, mealID)
	if err != nil {
		return fmt.Errorf("failed to delete meal with ID %s: %w", mealID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for meal delete ID %s: %w", mealID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("meal not found for delete (ID: %s): %w", mealID, models.ErrNotFound)
	}
	return nil
}
