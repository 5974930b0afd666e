package postgres

import (
	"context"
	"errors"
	"fmt"

	"linkvault/pkg/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Users implements gateway.UserDirectory plus the user lookups the API auth
// middleware needs.
type Users struct {
	Pool *pgxpool.Pool
}

const userColumns = `id, email, display_name, api_key, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.APIKey,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByAPIKey retrieves a user by their API key
func (u *Users) GetUserByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	user, err := scanUser(u.Pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE api_key = $1`, apiKey))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (u *Users) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(u.Pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// CreateUser creates a new user
func (u *Users) CreateUser(ctx context.Context, email, displayName, apiKey string) (*models.User, error) {
	user, err := scanUser(u.Pool.QueryRow(ctx,
		`INSERT INTO users (email, display_name, api_key)
		 VALUES ($1, $2, $3)
		 RETURNING `+userColumns,
		email, displayName, apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// DisplayName resolves a user id for display. Failures degrade to a
// placeholder and never propagate.
func (u *Users) DisplayName(ctx context.Context, userID uuid.UUID) string {
	var name, email string
	err := u.Pool.QueryRow(ctx,
		`SELECT display_name, email FROM users WHERE id = $1`, userID,
	).Scan(&name, &email)
	if err != nil {
		return "Unknown user"
	}
	if name != "" {
		return name
	}
	return email
}
