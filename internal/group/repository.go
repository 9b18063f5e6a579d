package group

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository defines the data access contract for groups. The business
// logic only talks to this interface so it stays testable without a live
// database.
type Repository interface {
	Create(ctx context.Context, req *CreateGroupRequest) (*Group, error)
	GetByID(ctx context.Context, id int64) (*Group, error)
	GetBySlug(ctx context.Context, slug string) (*Group, error)
	List(ctx context.Context) ([]*Group, error)
}

type postgresRepository struct {
	db *sql.DB
}

// NewRepository creates a PostgreSQL-backed group repository
func NewRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

// Create inserts a new group into the database
func (r *postgresRepository) Create(ctx context.Context, req *CreateGroupRequest) (*Group, error) {
	query := `
		INSERT INTO groups (title, slug, description)
		VALUES ($1, $2, $3)
		RETURNING id, title, slug, description
	`

	group := &Group{}
	err := r.db.QueryRowContext(ctx, query, req.Title, req.Slug, req.Description).Scan(
		&group.ID,
		&group.Title,
		&group.Slug,
		&group.Description,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	return group, nil
}

// GetByID retrieves a group by its ID
func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Group, error) {
	query := `
		SELECT id, title, slug, description
		FROM groups
		WHERE id = $1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetBySlug retrieves a group by its public slug
func (r *postgresRepository) GetBySlug(ctx context.Context, slug string) (*Group, error) {
	query := `
		SELECT id, title, slug, description
		FROM groups
		WHERE slug = $1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, slug))
}

// List retrieves all groups ordered by title
func (r *postgresRepository) List(ctx context.Context) ([]*Group, error) {
	query := `
		SELECT id, title, slug, description
		FROM groups
		ORDER BY title
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		group := &Group{}
		if err := rows.Scan(
			&group.ID,
			&group.Title,
			&group.Slug,
			&group.Description,
		); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}

	return groups, rows.Err()
}

func (r *postgresRepository) scanOne(row *sql.Row) (*Group, error) {
	group := &Group{}
	err := row.Scan(
		&group.ID,
		&group.Title,
		&group.Slug,
		&group.Description,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return group, nil
}
