package meals

import (
	"context"

	"github.com/coreybb/dietlog/models"
)

// Store is the persistence contract the meal service depends on.
//
// GetMealByID returns an error wrapping models.ErrNotFound when no row matches.
// GetMealsByUserID returns the owner's meals ordered by OccurredAt ascending.
// UpdateMeal replaces every mutable column of the row identified by meal.ID.
type Store interface {
	GetMealByID(ctx context.Context, mealID string) (*models.Meal, error)
	GetMealsByUserID(ctx context.Context, userID string) ([]models.Meal, error)
	CreateMeal(ctx context.Context, meal *models.Meal) error
	UpdateMeal(ctx context.Context, meal *models.Meal) error
	DeleteMeal(ctx context.Context, mealID string) error
}
