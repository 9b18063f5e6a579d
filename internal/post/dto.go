package post

import (
	"github.com/dchesnokov/inkwell/internal/group"
	"github.com/dchesnokov/inkwell/internal/user"
)

// PostFormRequest represents a submitted create/edit form
type PostFormRequest struct {
	Text    string `json:"text" validate:"required"`
	GroupID *int64 `json:"group_id,omitempty"`
}

// GroupChoice is one selectable group on the post form
type GroupChoice struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// PostFormResponse is the structured form state a client renders: current
// field values, the full group choice set, and an edit marker
type PostFormResponse struct {
	Text    string         `json:"text"`
	GroupID *int64         `json:"group_id,omitempty"`
	IsEdit  bool           `json:"is_edit"`
	Groups  []*GroupChoice `json:"groups"`
}

// GroupPageResponse is a group page: the group record plus one page of its
// posts
type GroupPageResponse struct {
	Group *group.GroupResponse `json:"group"`
	Posts []*PostResponse      `json:"posts"`
}

// ProfileResponse is an author page: the account record plus one page of
// their posts
type ProfileResponse struct {
	Author *user.UserResponse `json:"author"`
	Posts  []*PostResponse    `json:"posts"`
}

// PostResponse represents the response for a single post
type PostResponse struct {
	ID             int64  `json:"id"`
	Text           string `json:"text"`
	PubDate        string `json:"pub_date"`
	AuthorID       int64  `json:"author_id"`
	AuthorUsername string `json:"author_username"`
	GroupID        *int64 `json:"group_id,omitempty"`
	GroupTitle     string `json:"group_title,omitempty"`
	GroupSlug      string `json:"group_slug,omitempty"`
}

// ToResponse converts a Post model to a PostResponse DTO
func (p *Post) ToResponse() *PostResponse {
	return &PostResponse{
		ID:             p.ID,
		Text:           p.Text,
		PubDate:        p.PubDate.Format("2006-01-02T15:04:05Z"),
		AuthorID:       p.AuthorID,
		AuthorUsername: p.AuthorUsername,
		GroupID:        p.GroupID,
		GroupTitle:     p.GroupTitle,
		GroupSlug:      p.GroupSlug,
	}
}

func groupChoices(groups []*group.Group) []*GroupChoice {
	choices := make([]*GroupChoice, len(groups))
	for i, g := range groups {
		choices[i] = &GroupChoice{ID: g.ID, Title: g.Title}
	}
	return choices
}
