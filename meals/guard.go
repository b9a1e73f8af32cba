package meals

import (
	"context"
	"fmt"

	"github.com/coreybb/dietlog/models"
)

// Guard confirms that a meal belongs to the caller before it is read in detail or mutated.
type Guard struct {
	store Store
}

func NewGuard(store Store) *Guard {
	return &Guard{store: store}
}

// Verify returns the stored meal when it exists and is owned by user.
func (g *Guard) Verify(ctx context.Context, mealID string, user models.User) (*models.Meal, error) {
	meal, err := g.store.GetMealByID(ctx, mealID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up meal %s: %w", mealID, err)
	}
	if meal.UserID != user.ID {
		return nil, fmt.Errorf("meal %s is not owned by user %s: %w", mealID, user.ID, models.ErrForbidden)
	}
	return meal, nil
}
