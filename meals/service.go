// Package meals holds the meal domain: ownership checks, create/read/update/delete
// with merge rules, and adherence metrics.
package meals

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coreybb/dietlog/datefmt"
	"github.com/coreybb/dietlog/metrics"
	"github.com/coreybb/dietlog/models"
)

type Service struct {
	store  Store
	guard  *Guard
	dates  *datefmt.Normalizer
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

type Option func(*Service)

// WithClock overrides the time source used for createdAt and updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides how new meal ids are minted.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(store Store, dates *datefmt.Normalizer, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:  store,
		guard:  NewGuard(store),
		dates:  dates,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create records a new meal for user. The new id is not returned; callers list to find it.
func (s *Service) Create(ctx context.Context, user models.User, in models.MealInput) error {
	occurredAt, err := s.dates.ToInstant(in.Date)
	if err != nil {
		return err
	}

	meal := models.Meal{
		ID:          s.newID(),
		UserID:      user.ID,
		Name:        in.Name,
		Description: in.Description,
		OccurredAt:  occurredAt,
		WithinDiet:  in.WithinDiet,
		CreatedAt:   s.now().UnixMilli(),
	}
	if err := s.store.CreateMeal(ctx, &meal); err != nil {
		return fmt.Errorf("failed to create meal for user %s: %w", user.ID, err)
	}

	metrics.RecordMealOperation("create")
	s.logger.Info("meal created", zap.String("meal_id", meal.ID), zap.String("user_id", user.ID))
	return nil
}

// List returns the user's meals in ascending occurrence order.
func (s *Service) List(ctx context.Context, user models.User) ([]models.MealView, error) {
	meals, err := s.ownedMeals(ctx, user)
	if err != nil {
		return nil, err
	}
	views := make([]models.MealView, 0, len(meals))
	for _, meal := range meals {
		views = append(views, s.view(meal))
	}
	return views, nil
}

func (s *Service) GetOne(ctx context.Context, user models.User, mealID string) (models.MealView, error) {
	meal, err := s.guard.Verify(ctx, mealID, user)
	if err != nil {
		return models.MealView{}, err
	}
	return s.view(*meal), nil
}

// Update merges patch into the stored meal and writes the whole record back.
// Non-empty strings replace stored values; WithinDiet replaces only when present.
func (s *Service) Update(ctx context.Context, user models.User, mealID string, patch models.MealPatch) error {
	meal, err := s.guard.Verify(ctx, mealID, user)
	if err != nil {
		return err
	}

	if patch.Name != "" {
		meal.Name = patch.Name
	}
	if patch.Description != "" {
		meal.Description = patch.Description
	}
	if patch.Date != "" {
		occurredAt, err := s.dates.ToInstant(patch.Date)
		if err != nil {
			return err
		}
		meal.OccurredAt = occurredAt
	}
	if patch.WithinDiet != nil {
		meal.WithinDiet = *patch.WithinDiet
	}
	meal.UpdatedAt = s.dates.Format(s.now())

	if err := s.store.UpdateMeal(ctx, meal); err != nil {
		return fmt.Errorf("failed to update meal %s: %w", mealID, err)
	}

	metrics.RecordMealOperation("update")
	s.logger.Info("meal updated", zap.String("meal_id", mealID), zap.String("user_id", user.ID))
	return nil
}

// Delete permanently removes the meal.
func (s *Service) Delete(ctx context.Context, user models.User, mealID string) error {
	if _, err := s.guard.Verify(ctx, mealID, user); err != nil {
		return err
	}
	if err := s.store.DeleteMeal(ctx, mealID); err != nil {
		return fmt.Errorf("failed to delete meal %s: %w", mealID, err)
	}

	metrics.RecordMealOperation("delete")
	s.logger.Info("meal deleted", zap.String("meal_id", mealID), zap.String("user_id", user.ID))
	return nil
}

// Metrics computes adherence statistics over every meal the user owns.
func (s *Service) Metrics(ctx context.Context, user models.User) (models.DietMetrics, error) {
	meals, err := s.ownedMeals(ctx, user)
	if err != nil {
		return models.DietMetrics{}, err
	}
	return ComputeMetrics(meals), nil
}

// ownedMeals fetches the user's meals and re-establishes ascending order,
// which the streak computation depends on.
func (s *Service) ownedMeals(ctx context.Context, user models.User) ([]models.Meal, error) {
	meals, err := s.store.GetMealsByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals for user %s: %w", user.ID, err)
	}
	slices.SortStableFunc(meals, func(a, b models.Meal) int {
		return cmp.Compare(a.OccurredAt, b.OccurredAt)
	})
	return meals, nil
}

func (s *Service) view(meal models.Meal) models.MealView {
	v := models.MealView{
		ID:          meal.ID,
		UserID:      meal.UserID,
		Name:        meal.Name,
		Description: meal.Description,
		Date:        s.dates.ToDisplay(meal.OccurredAt),
		WithinDiet:  meal.WithinDiet,
		CreatedAt:   meal.CreatedAt,
	}
	if meal.UpdatedAt != "" {
		updatedAt := meal.UpdatedAt
		v.UpdatedAt = &updatedAt
	}
	return v
}
