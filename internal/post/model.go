package post

import "time"

// Post represents a published post. Author and publication time are fixed
// at creation; edits only touch text and group.
type Post struct {
	ID       int64     `json:"id"`
	Text     string    `json:"text"`
	PubDate  time.Time `json:"pub_date"`
	AuthorID int64     `json:"author_id"`
	GroupID  *int64    `json:"group_id,omitempty"`

	// Populated from JOIN
	AuthorUsername string `json:"author_username,omitempty"`
	GroupTitle     string `json:"group_title,omitempty"`
	GroupSlug      string `json:"group_slug,omitempty"`
}
