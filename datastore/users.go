package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coreybb/dietlog/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %q already exists: %w", user.Name, models.ErrConflict)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT id, name, created_at
		FROM users
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Name, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

func (r *UserRepository) GetUserByName(ctx context.Context, name string) (*models.User, error) {
	query := `
		SELECT id, name, created_at, session_id
		FROM users
		WHERE name = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, name), "name "+name)
}

// GetUserBySessionHash finds the user whose live session digest equals hash.
func (r *UserRepository) GetUserBySessionHash(ctx context.Context, hash string) (*models.User, error) {
	query := `
		SELECT id, name, created_at, session_id
		FROM users
		WHERE session_id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, hash), "session")
}

// SetSessionHash overwrites the user's session; the previous one stops resolving.
func (r *UserRepository) SetSessionHash(ctx context.Context, userID, hash string) error {
	query := `UPDATE users SET session_id = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, hash, userID)
	if err != nil {
		return fmt.Errorf("failed to update session for user %s: %w", userID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for session update of user %s: %w", userID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user %s not found for session update: %w", userID, models.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) scanOne(row *sql.Row, lookup string) (*models.User, error) {
	var user models.User
	var session sql.NullString
	err := row.Scan(&user.ID, &user.Name, &user.CreatedAt, &session)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found by %s: %w", lookup, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", lookup, err)
	}
	user.SessionHash = session.String
	return &user, nil
}
