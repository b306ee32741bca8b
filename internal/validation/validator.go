package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/article-image-api/internal/models"
)

var hashRegex = regexp.MustCompile(`^[0-9a-f]{32}$`)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// RecordError reports the invalid record found while decoding a collection
type RecordError struct {
	Collection string
	Index      int
	Errors     []ValidationError
}

func (e *RecordError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ve := range e.Errors {
		msgs = append(msgs, ve.Field+": "+ve.Message)
	}
	return fmt.Sprintf("invalid %s record at index %d: %s", e.Collection, e.Index, strings.Join(msgs, "; "))
}

// Validator provides validation methods.
// It remembers the ids and hashes it has seen so uniqueness can be checked
// across a whole collection.
type Validator struct {
	articleIDCache map[int]bool
	imageHashCache map[string]bool
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		articleIDCache: make(map[int]bool),
		imageHashCache: make(map[string]bool),
	}
}

// ValidateCreateArticle validates the body of an article creation request
func ValidateCreateArticle(req *models.CreateArticleRequest) []ValidationError {
	var errors []ValidationError
	if req == nil || req.Content == nil {
		errors = append(errors, ValidationError{Field: "content", Message: "content is required"})
	}
	return errors
}

// ValidateArticle validates a stored article record
func (v *Validator) ValidateArticle(article *models.Article) []ValidationError {
	var errors []ValidationError

	// Validate ID
	if article.ID <= 0 {
		errors = append(errors, ValidationError{Field: "id", Message: "id must be a positive integer", Value: article.ID})
	} else if v.articleIDCache[article.ID] {
		errors = append(errors, ValidationError{Field: "id", Message: "duplicate id", Value: article.ID})
	} else {
		v.articleIDCache[article.ID] = true
	}

	// Validate created_at
	if article.CreatedAt == "" {
		errors = append(errors, ValidationError{Field: "created_at", Message: "created_at is required"})
	} else if !isValidTimestamp(article.CreatedAt) {
		errors = append(errors, ValidationError{Field: "created_at", Message: "invalid timestamp format, expected YYYY-MM-DD HH:MM:SS", Value: article.CreatedAt})
	}

	if article.ViewCount < 0 {
		errors = append(errors, ValidationError{Field: "view_count", Message: "view_count must not be negative", Value: article.ViewCount})
	}

	return errors
}

// ValidateImageRecord validates a stored image record
func (v *Validator) ValidateImageRecord(record *models.ImageRecord) []ValidationError {
	var errors []ValidationError

	// Validate hash
	if record.Hash == "" {
		errors = append(errors, ValidationError{Field: "hash", Message: "hash is required"})
	} else if !hashRegex.MatchString(record.Hash) {
		errors = append(errors, ValidationError{Field: "hash", Message: "hash must be 32 lowercase hex characters", Value: record.Hash})
	} else if v.imageHashCache[record.Hash] {
		errors = append(errors, ValidationError{Field: "hash", Message: "duplicate hash", Value: record.Hash})
	} else {
		v.imageHashCache[record.Hash] = true
	}

	// Validate url
	if strings.TrimSpace(record.URL) == "" {
		errors = append(errors, ValidationError{Field: "url", Message: "url is required"})
	}

	// Validate upload_time
	if record.UploadTime == "" {
		errors = append(errors, ValidationError{Field: "upload_time", Message: "upload_time is required"})
	} else if !isValidTimestamp(record.UploadTime) {
		errors = append(errors, ValidationError{Field: "upload_time", Message: "invalid timestamp format, expected YYYY-MM-DD HH:MM:SS", Value: record.UploadTime})
	}

	if record.Size != nil && *record.Size < 0 {
		errors = append(errors, ValidationError{Field: "size", Message: "size must not be negative", Value: *record.Size})
	}

	return errors
}

// CheckArticles validates a decoded article collection
func CheckArticles(articles []models.Article) error {
	v := NewValidator()
	for i := range articles {
		if errs := v.ValidateArticle(&articles[i]); len(errs) > 0 {
			return &RecordError{Collection: "article", Index: i, Errors: errs}
		}
	}
	return nil
}

// CheckImageRecords validates a decoded image record collection
func CheckImageRecords(records []models.ImageRecord) error {
	v := NewValidator()
	for i := range records {
		if errs := v.ValidateImageRecord(&records[i]); len(errs) > 0 {
			return &RecordError{Collection: "image", Index: i, Errors: errs}
		}
	}
	return nil
}

// isValidTimestamp checks the fixed-width local timestamp format
func isValidTimestamp(s string) bool {
	_, err := time.ParseInLocation(models.TimeLayout, s, time.Local)
	return err == nil
}
