package group

// Group represents a topical group posts can be published under.
// Identity is the URL-safe slug; groups are never deleted through this API
// (a removed group clears post references instead of cascading).
type Group struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}
