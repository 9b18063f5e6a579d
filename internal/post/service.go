package post

import (
	"context"
	"errors"
	"strings"

	"github.com/dchesnokov/inkwell/internal/group"
	"github.com/dchesnokov/inkwell/internal/user"
)

// Common errors
var (
	ErrPostNotFound = errors.New("post not found")
	// ErrNotAuthor means the acting identity may not edit this post;
	// handlers answer it with a redirect to the detail view, never an
	// error page
	ErrNotAuthor = errors.New("not the author of this post")
)

// ValidationError carries per-field messages for a rejected post form
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "post validation failed"
}

// PageSize is the fixed number of posts per listing page
const PageSize = 10

// Page is one bounded slice of a listing plus the navigation metadata
type Page struct {
	Posts      []*Post
	Number     int
	TotalPages int
	Total      int
}

// GroupDirectory is the slice of the group service the listing engine and
// form validation need
type GroupDirectory interface {
	GetByID(ctx context.Context, id int64) (*group.Group, error)
	GetBySlug(ctx context.Context, slug string) (*group.Group, error)
	List(ctx context.Context) ([]*group.Group, error)
}

// UserDirectory resolves account references for scoped listings and
// authoring
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
}

// Service implements the post listing engine and the authoring controller
type Service struct {
	repo   Repository
	groups GroupDirectory
	users  UserDirectory
}

// NewService creates a new post service
func NewService(repo Repository, groups GroupDirectory, users UserDirectory) *Service {
	return &Service{repo: repo, groups: groups, users: users}
}

// ListAll returns one page of all posts, newest first
func (s *Service) ListAll(ctx context.Context, page int) (*Page, error) {
	return s.list(ctx, Filter{}, page)
}

// ListByGroup resolves the slug and returns the group with one page of its
// posts. Unknown slugs yield group.ErrGroupNotFound.
func (s *Service) ListByGroup(ctx context.Context, slug string, page int) (*group.Group, *Page, error) {
	g, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}

	p, err := s.list(ctx, Filter{GroupID: &g.ID}, page)
	if err != nil {
		return nil, nil, err
	}

	return g, p, nil
}

// ListByAuthor resolves the username and returns the author with one page
// of their posts. Unknown usernames yield user.ErrUserNotFound.
func (s *Service) ListByAuthor(ctx context.Context, username string, page int) (*user.User, *Page, error) {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}

	p, err := s.list(ctx, Filter{AuthorID: &author.ID}, page)
	if err != nil {
		return nil, nil, err
	}

	return author, p, nil
}

func (s *Service) list(ctx context.Context, filter Filter, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}

	offset := (page - 1) * PageSize
	posts, total, err := s.repo.List(ctx, filter, PageSize, offset)
	if err != nil {
		return nil, err
	}

	return &Page{
		Posts:      posts,
		Number:     page,
		TotalPages: (total + PageSize - 1) / PageSize,
		Total:      total,
	}, nil
}

// GetByID retrieves a single post for the detail view
func (s *Service) GetByID(ctx context.Context, id int64) (*Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// GroupChoices returns the unfiltered group set offered on the post form
func (s *Service) GroupChoices(ctx context.Context) ([]*group.Group, error) {
	return s.groups.List(ctx)
}

// Create persists a new post for the acting identity. The author and
// publication time are fixed here, once, and never rewritten by edits.
func (s *Service) Create(ctx context.Context, authorID int64, req *PostFormRequest) (*Post, error) {
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}

	post, err := s.repo.Create(ctx, &Post{
		Text:     req.Text,
		AuthorID: author.ID,
		GroupID:  req.GroupID,
	})
	if err != nil {
		return nil, err
	}

	post.AuthorUsername = author.Username
	return post, nil
}

// EditablePost loads a post for the edit form, enforcing authorship
func (s *Service) EditablePost(ctx context.Context, actorID, postID int64) (*Post, error) {
	post, err := s.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actorID {
		return nil, ErrNotAuthor
	}
	return post, nil
}

// Update edits an existing post's text and group in place. Authorship is
// checked before any field is touched; author and pub_date are never
// written.
func (s *Service) Update(ctx context.Context, actorID, postID int64, req *PostFormRequest) (*Post, error) {
	if _, err := s.EditablePost(ctx, actorID, postID); err != nil {
		return nil, err
	}

	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, postID, req.Text, req.GroupID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrPostNotFound
	}

	return updated, nil
}

func (s *Service) validate(ctx context.Context, req *PostFormRequest) error {
	fields := make(map[string]string)

	if strings.TrimSpace(req.Text) == "" {
		fields["text"] = "Text is required"
	}

	if req.GroupID != nil {
		if _, err := s.groups.GetByID(ctx, *req.GroupID); err != nil {
			if errors.Is(err, group.ErrGroupNotFound) {
				fields["group_id"] = "Unknown group"
			} else {
				return err
			}
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
