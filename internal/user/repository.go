package user

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repository defines the data access contract for users and reset tokens
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	CreateResetToken(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	// ConsumeResetToken deletes the token and returns its user ID; returns 0
	// when the token is unknown or expired. Single-use by construction.
	ConsumeResetToken(ctx context.Context, token string, now time.Time) (int64, error)
}

type postgresRepository struct {
	db *sql.DB
}

// NewRepository creates a PostgreSQL-backed user repository
func NewRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

// Create inserts a new user into the database
func (r *postgresRepository) Create(ctx context.Context, user *User) (*User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, username, email, password_hash, first_name, last_name, created_at
	`

	created := &User{}
	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName,
	).Scan(
		&created.ID,
		&created.Username,
		&created.Email,
		&created.PasswordHash,
		&created.FirstName,
		&created.LastName,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return created, nil
}

// GetByID retrieves a user by their ID
func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.getWhere(ctx, "id = $1", id)
}

// GetByUsername retrieves a user by their username
func (r *postgresRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getWhere(ctx, "username = $1", username)
}

// GetByEmail retrieves a user by their email
func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getWhere(ctx, "email = $1", email)
}

func (r *postgresRepository) getWhere(ctx context.Context, where string, arg interface{}) (*User, error) {
	query := `
		SELECT id, username, email, password_hash, first_name, last_name, created_at
		FROM users
		WHERE ` + where

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// UpdatePassword replaces the stored password hash
func (r *postgresRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// CreateResetToken stores a password reset token with its expiry
func (r *postgresRepository) CreateResetToken(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	query := `
		INSERT INTO password_reset_tokens (token, user_id, expires_at)
		VALUES ($1, $2, $3)
	`

	if _, err := r.db.ExecContext(ctx, query, token, userID, expiresAt); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	return nil
}

// ConsumeResetToken deletes the token and returns its user ID
func (r *postgresRepository) ConsumeResetToken(ctx context.Context, token string, now time.Time) (int64, error) {
	query := `
		DELETE FROM password_reset_tokens
		WHERE token = $1 AND expires_at > $2
		RETURNING user_id
	`

	var userID int64
	err := r.db.QueryRowContext(ctx, query, token, now).Scan(&userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to consume reset token: %w", err)
	}

	return userID, nil
}
