package datastore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/coreybb/dietlog/models"
)

// MemoryStore keeps users and meals in process memory. It satisfies the same
// contracts as the SQL repositories and is used for tests and the "memory" driver.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]models.User
	meals map[string]models.Meal
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]models.User),
		meals: make(map[string]models.Meal),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return fmt.Errorf("user id %s already exists: %w", user.ID, models.ErrConflict)
	}
	for _, u := range s.users {
		if u.Name == user.Name {
			return fmt.Errorf("user name %q already exists: %w", user.Name, models.ErrConflict)
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) GetUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b models.User) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return users, nil
}

func (s *MemoryStore) GetUserByName(_ context.Context, name string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Name == name {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %q not found: %w", name, models.ErrNotFound)
}

func (s *MemoryStore) GetUserBySessionHash(_ context.Context, hash string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if hash == "" {
		return nil, fmt.Errorf("no user holds an empty session: %w", models.ErrNotFound)
	}
	for _, u := range s.users {
		if u.SessionHash == hash {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("no user holds this session: %w", models.ErrNotFound)
}

func (s *MemoryStore) SetSessionHash(_ context.Context, userID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user %s not found: %w", userID, models.ErrNotFound)
	}
	u.SessionHash = hash
	s.users[userID] = u
	return nil
}

func (s *MemoryStore) GetMealByID(_ context.Context, mealID string) (*models.Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meals[mealID]
	if !ok {
		return nil, fmt.Errorf("meal %s not found: %w", mealID, models.ErrNotFound)
	}
	return &m, nil
}

func (s *MemoryStore) GetMealsByUserID(_ context.Context, userID string) ([]models.Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meals := []models.Meal{}
	for _, m := range s.meals {
		if m.UserID == userID {
			meals = append(meals, m)
		}
	}
	slices.SortFunc(meals, func(a, b models.Meal) int {
		return cmp.Or(cmp.Compare(a.OccurredAt, b.OccurredAt), cmp.Compare(a.CreatedAt, b.CreatedAt))
	})
	return meals, nil
}

func (s *MemoryStore) CreateMeal(_ context.Context, meal *models.Meal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[meal.UserID]; !ok {
		return fmt.Errorf("meal owner %s does not exist: %w", meal.UserID, models.ErrNotFound)
	}
	if _, ok := s.meals[meal.ID]; ok {
		return fmt.Errorf("meal id %s already exists: %w", meal.ID, models.ErrConflict)
	}
	s.meals[meal.ID] = *meal
	return nil
}

func (s *MemoryStore) UpdateMeal(_ context.Context, meal *models.Meal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.meals[meal.ID]
	if !ok {
		return fmt.Errorf("meal %s not found for update: %w", meal.ID, models.ErrNotFound)
	}
	stored.Name = meal.Name
	stored.Description = meal.Description
	stored.OccurredAt = meal.OccurredAt
	stored.WithinDiet = meal.WithinDiet
	stored.UpdatedAt = meal.UpdatedAt
	s.meals[meal.ID] = stored
	return nil
}

func (s *MemoryStore) DeleteMeal(_ context.Context, mealID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.meals[mealID]; !ok {
		return fmt.Errorf("meal %s not found for delete: %w", mealID, models.ErrNotFound)
	}
	delete(s.meals, mealID)
	return nil
}
