package service

import (
	"context"
	"io"
	"time"

	"github.com/article-image-api/internal/config"
	"github.com/article-image-api/internal/imagehost"
	"github.com/article-image-api/internal/models"
	"github.com/article-image-api/internal/repository"
	"github.com/rs/zerolog"
)

// ArticleService defines the interface for article operations
type ArticleService interface {
	ListArticles(ctx context.Context) ([]models.Article, error)
	CreateArticle(ctx context.Context, req *models.CreateArticleRequest) (*models.Article, error)
	GetArticle(ctx context.Context, id int) (*models.Article, error)
	Count(ctx context.Context) (int, error)
}

// ImageIndex defines the content hash and dedup lookup operations
type ImageIndex interface {
	ComputeHash(r io.ReadSeeker) (string, error)
	FindByHash(ctx context.Context, hash string) (*models.ImageRecord, error)
	RecordUpload(ctx context.Context, in models.NewImageRecord) (*models.ImageRecord, error)
	ListImages(ctx context.Context) ([]models.ImageRecord, error)
	Stats(ctx context.Context) (*models.ImageStats, error)
}

// UploadService defines the image upload flow
type UploadService interface {
	UploadImage(ctx context.Context, in *ImageUpload) (*models.UploadResponse, error)
}

// ImageHost is the remote image hosting provider
type ImageHost interface {
	Upload(ctx context.Context, req *imagehost.UploadRequest) (*imagehost.UploadResult, error)
}

// ImageUpload is one inbound upload request
type ImageUpload struct {
	APIKey   string // from the request; empty falls back to the configured key
	Filename string
	File     io.ReadSeeker
	Size     int64
}

// Services holds all service interfaces
type Services struct {
	Article ArticleService
	Image   ImageIndex
	Upload  UploadService
}

// Option customizes NewServices
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now as the source of created_at and upload_time
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, host ImageHost, cfg *config.Config, log zerolog.Logger, opts ...Option) *Services {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	articleSvc := newArticleService(repos.Article, o.now, log)
	imageIdx := newImageIndex(repos.Image, o.now, log)
	uploadSvc := newUploadService(imageIdx, host, cfg.ImageHost.APIKey, log)

	return &Services{
		Article: articleSvc,
		Image:   imageIdx,
		Upload:  uploadSvc,
	}
}
