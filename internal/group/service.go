package group

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// Common errors
var (
	ErrGroupNotFound    = errors.New("group not found")
	ErrSlugAlreadyInUse = errors.New("slug already in use")
)

// ValidationError carries per-field messages for a rejected group form
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "group validation failed"
}

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// Service handles group business logic
type Service struct {
	repo Repository
}

// NewService creates a new group service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a new group. The slug is the group's permanent public
// identifier, so uniqueness is checked up front.
func (s *Service) Create(ctx context.Context, req *CreateGroupRequest) (*Group, error) {
	fields := make(map[string]string)

	req.Title = strings.TrimSpace(req.Title)
	req.Slug = strings.TrimSpace(req.Slug)

	if req.Title == "" {
		fields["title"] = "Title is required"
	}
	switch {
	case req.Slug == "":
		fields["slug"] = "Slug is required"
	case !slugPattern.MatchString(req.Slug):
		fields["slug"] = "Slug may only contain letters, digits, hyphens and underscores"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	existing, err := s.repo.GetBySlug(ctx, req.Slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrSlugAlreadyInUse
	}

	return s.repo.Create(ctx, req)
}

// GetByID retrieves a group by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Group, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// GetBySlug retrieves a group by its public slug
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Group, error) {
	group, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// List retrieves all groups; also the choice set offered on the post form
func (s *Service) List(ctx context.Context) ([]*Group, error) {
	return s.repo.List(ctx)
}
