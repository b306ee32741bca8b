package models

// TimeLayout is the fixed, zero-padded timestamp format used for created_at
// and upload_time. String order equals chronological order.
const TimeLayout = "2006-01-02 15:04:05"

// Article defaults
const (
	DefaultAuthor = "AC_101_"
	DefaultTitle  = "Untitled"
)

// Article represents an article in the system
type Article struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Summary   string `json:"summary"`
	Author    string `json:"author"`
	CreatedAt string `json:"created_at"`
	ViewCount int    `json:"view_count"`
}

// CreateArticleRequest is the body of POST /api/articles.
// Content is a pointer so an absent field can be told apart from an empty one.
type CreateArticleRequest struct {
	Content *string `json:"content"`
	Author  *string `json:"author"`
}
