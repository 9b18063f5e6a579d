package post

import (
	"context"
	"database/sql"
	"fmt"
)

// Filter narrows a listing to one group or one author. Zero value lists
// everything.
type Filter struct {
	GroupID  *int64
	AuthorID *int64
}

// Repository defines the data access contract for posts. Listing is always
// reverse-chronological; Update deliberately cannot touch author or
// pub_date.
type Repository interface {
	Create(ctx context.Context, post *Post) (*Post, error)
	GetByID(ctx context.Context, id int64) (*Post, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Post, int, error)
	Update(ctx context.Context, id int64, text string, groupID *int64) (*Post, error)
}

type postgresRepository struct {
	db *sql.DB
}

// NewRepository creates a PostgreSQL-backed post repository
func NewRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

const postColumns = `
	p.id, p.text, p.pub_date, p.author_id, p.group_id,
	u.username, g.title, g.slug
`

const postJoins = `
	FROM posts p
	JOIN users u ON p.author_id = u.id
	LEFT JOIN groups g ON p.group_id = g.id
`

// Create inserts a new post; pub_date is assigned by the database
func (r *postgresRepository) Create(ctx context.Context, post *Post) (*Post, error) {
	query := `
		INSERT INTO posts (text, author_id, group_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, post.Text, post.AuthorID, post.GroupID).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID retrieves a post with its author and group info
func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Post, error) {
	query := `SELECT ` + postColumns + postJoins + ` WHERE p.id = $1`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return post, nil
}

// List retrieves a page of posts in reverse publication order. Equal
// timestamps fall back to id so OFFSET pagination stays stable.
func (r *postgresRepository) List(ctx context.Context, filter Filter, limit, offset int) ([]*Post, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}

	if filter.GroupID != nil {
		args = append(args, *filter.GroupID)
		where += fmt.Sprintf(" AND p.group_id = $%d", len(args))
	}
	if filter.AuthorID != nil {
		args = append(args, *filter.AuthorID)
		where += fmt.Sprintf(" AND p.author_id = $%d", len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM posts p ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	args = append(args, limit, offset)
	query := `SELECT ` + postColumns + postJoins + where +
		fmt.Sprintf(" ORDER BY p.pub_date DESC, p.id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	return posts, total, rows.Err()
}

// Update rewrites text and group only; author and pub_date are not part of
// the statement at all
func (r *postgresRepository) Update(ctx context.Context, id int64, text string, groupID *int64) (*Post, error) {
	query := `
		UPDATE posts
		SET text = $2, group_id = $3
		WHERE id = $1
		RETURNING id
	`

	var updated int64
	err := r.db.QueryRowContext(ctx, query, id, text, groupID).Scan(&updated)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	return r.GetByID(ctx, updated)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*Post, error) {
	post := &Post{}
	var groupTitle, groupSlug sql.NullString

	if err := row.Scan(
		&post.ID,
		&post.Text,
		&post.PubDate,
		&post.AuthorID,
		&post.GroupID,
		&post.AuthorUsername,
		&groupTitle,
		&groupSlug,
	); err != nil {
		return nil, err
	}

	post.GroupTitle = groupTitle.String
	post.GroupSlug = groupSlug.String

	return post, nil
}
