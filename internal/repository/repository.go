package repository

import (
	"context"

	"github.com/article-image-api/internal/config"
	"github.com/article-image-api/internal/database"
	"github.com/article-image-api/internal/models"
	"github.com/article-image-api/internal/validation"
)

// Collection names, used as file-store labels and postgres partition keys
const (
	CollectionArticles = "articles"
	CollectionImages   = "images"
)

// RecordStore loads and saves a whole record collection.
//
// Save replaces everything that was persisted before. There is no locking:
// two callers that Load, modify and Save concurrently race and the last Save
// wins.
type RecordStore[T any] interface {
	Load(ctx context.Context) ([]T, error)
	Save(ctx context.Context, records []T) error
}

// ArticleStore persists the article collection
type ArticleStore = RecordStore[models.Article]

// ImageStore persists the image record collection
type ImageStore = RecordStore[models.ImageRecord]

// Repositories holds all record stores
type Repositories struct {
	Article ArticleStore
	Image   ImageStore
}

// NewFileRepositories creates JSON file backed stores under the configured data directory
func NewFileRepositories(cfg *config.StoreConfig) *Repositories {
	return &Repositories{
		Article: NewFileStore(cfg.ArticlesPath(), CollectionArticles, validation.CheckArticles),
		Image:   NewFileStore(cfg.ImagesPath(), CollectionImages, validation.CheckImageRecords),
	}
}

// NewPostgresRepositories creates stores that keep each collection as ordered JSONB rows
func NewPostgresRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Article: NewPostgresStore(db, CollectionArticles, validation.CheckArticles),
		Image:   NewPostgresStore(db, CollectionImages, validation.CheckImageRecords),
	}
}
