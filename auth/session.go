// Package auth resolves session tokens to users and issues new sessions on login.
//
// Each user holds at most one live session: a login overwrites the stored token,
// so an earlier token for the same user stops resolving.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coreybb/dietlog/metrics"
	"github.com/coreybb/dietlog/models"
	"github.com/coreybb/dietlog/webutil"
)

const sessionTokenBytes = 32

// UserStore is the persistence contract for users and their session.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUsers(ctx context.Context) ([]models.User, error)
	GetUserByName(ctx context.Context, name string) (*models.User, error)
	GetUserBySessionHash(ctx context.Context, hash string) (*models.User, error)
	SetSessionHash(ctx context.Context, userID, hash string) error
}

type Service struct {
	store    UserStore
	logger   *zap.Logger
	now      func() time.Time
	newToken func() (string, error)
}

func NewService(store UserStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
		newToken: func() (string, error) {
			return webutil.GenerateRandomToken(sessionTokenBytes)
		},
	}
}

// Resolve returns the user currently holding token.
func (s *Service) Resolve(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, fmt.Errorf("missing session token: %w", models.ErrUnauthenticated)
	}
	hash, err := webutil.GenerateHash(token)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash session token: %w", err)
	}

	user, err := s.store.GetUserBySessionHash(ctx, hash)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.User{}, fmt.Errorf("unknown session token: %w", models.ErrUnauthenticated)
		}
		return models.User{}, fmt.Errorf("failed to resolve session: %w", err)
	}
	return *user, nil
}

// Login starts a new session for the named user and returns its token.
// Any previous session for that user is superseded.
func (s *Service) Login(ctx context.Context, name string) (string, error) {
	user, err := s.store.GetUserByName(ctx, name)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			metrics.RecordLogin("unknown_user")
		}
		return "", fmt.Errorf("failed to find user %q: %w", name, err)
	}

	token, err := s.newToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	hash, err := webutil.GenerateHash(token)
	if err != nil {
		return "", fmt.Errorf("failed to hash session token: %w", err)
	}
	if err := s.store.SetSessionHash(ctx, user.ID, hash); err != nil {
		return "", fmt.Errorf("failed to store session for user %s: %w", user.ID, err)
	}

	metrics.RecordLogin("success")
	s.logger.Info("session issued", zap.String("user_id", user.ID))
	return token, nil
}

// Register creates a user with a unique name.
func (s *Service) Register(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("user name is required: %w", models.ErrValidation)
	}

	_, err := s.store.GetUserByName(ctx, name)
	switch {
	case err == nil:
		return fmt.Errorf("user %q already exists: %w", name, models.ErrConflict)
	case !errors.Is(err, models.ErrNotFound):
		return fmt.Errorf("failed to check user %q: %w", name, err)
	}

	user := models.User{
		ID:        uuid.NewString(),
		CreatedAt: s.now().UTC(),
		Name:      name,
	}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		return fmt.Errorf("failed to create user %q: %w", name, err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return nil
}

// ListUsers returns every registered user, oldest first.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.store.GetUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}
