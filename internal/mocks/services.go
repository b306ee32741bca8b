package mocks

import (
	"context"
	"io"

	"github.com/article-image-api/internal/imagehost"
	"github.com/article-image-api/internal/models"
	"github.com/article-image-api/internal/service"
)

// MockArticleService is a mock implementation of ArticleService
type MockArticleService struct {
	Articles    []models.Article
	CreateFunc  func(ctx context.Context, req *models.CreateArticleRequest) (*models.Article, error)
	Err         error
	CreatedReqs []*models.CreateArticleRequest
}

// Verify interface compliance
var _ service.ArticleService = (*MockArticleService)(nil)

func NewMockArticleService() *MockArticleService {
	return &MockArticleService{Articles: make([]models.Article, 0)}
}

func (m *MockArticleService) ListArticles(ctx context.Context) ([]models.Article, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Articles, nil
}

func (m *MockArticleService) CreateArticle(ctx context.Context, req *models.CreateArticleRequest) (*models.Article, error) {
	m.CreatedReqs = append(m.CreatedReqs, req)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	article := models.Article{ID: len(m.Articles) + 1, Content: *req.Content}
	m.Articles = append(m.Articles, article)
	return &article, nil
}

func (m *MockArticleService) GetArticle(ctx context.Context, id int) (*models.Article, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for i := range m.Articles {
		if m.Articles[i].ID == id {
			m.Articles[i].ViewCount++
			a := m.Articles[i]
			return &a, nil
		}
	}
	return nil, service.ErrNotFound
}

func (m *MockArticleService) Count(ctx context.Context) (int, error) {
	return len(m.Articles), m.Err
}

// MockImageIndex is a mock implementation of ImageIndex
type MockImageIndex struct {
	Records []models.ImageRecord
	Err     error
}

// Verify interface compliance
var _ service.ImageIndex = (*MockImageIndex)(nil)

func NewMockImageIndex() *MockImageIndex {
	return &MockImageIndex{Records: make([]models.ImageRecord, 0)}
}

func (m *MockImageIndex) ComputeHash(r io.ReadSeeker) (string, error) {
	return "", m.Err
}

func (m *MockImageIndex) FindByHash(ctx context.Context, hash string) (*models.ImageRecord, error) {
	for i := range m.Records {
		if m.Records[i].Hash == hash {
			return &m.Records[i], nil
		}
	}
	return nil, m.Err
}

func (m *MockImageIndex) RecordUpload(ctx context.Context, in models.NewImageRecord) (*models.ImageRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	record := models.ImageRecord{Hash: in.Hash, URL: in.URL, Filename: in.Filename, Size: in.Size}
	m.Records = append(m.Records, record)
	return &record, nil
}

func (m *MockImageIndex) ListImages(ctx context.Context) ([]models.ImageRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Records, nil
}

func (m *MockImageIndex) Stats(ctx context.Context) (*models.ImageStats, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	stats := &models.ImageStats{TotalImages: len(m.Records)}
	for _, r := range m.Records {
		if r.Size != nil {
			stats.TotalSize += *r.Size
		}
	}
	return stats, nil
}

// MockUploadService is a mock implementation of UploadService
type MockUploadService struct {
	UploadFunc func(ctx context.Context, in *service.ImageUpload) (*models.UploadResponse, error)
	Uploads    []*service.ImageUpload
}

// Verify interface compliance
var _ service.UploadService = (*MockUploadService)(nil)

func NewMockUploadService() *MockUploadService {
	return &MockUploadService{}
}

func (m *MockUploadService) UploadImage(ctx context.Context, in *service.ImageUpload) (*models.UploadResponse, error) {
	m.Uploads = append(m.Uploads, in)
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, in)
	}
	return &models.UploadResponse{URL: "https://i.example.com/mock.png", DisplayURL: "https://i.example.com/mock.png"}, nil
}

// MockImageHost is a mock implementation of the remote image host
type MockImageHost struct {
	UploadFunc func(ctx context.Context, req *imagehost.UploadRequest) (*imagehost.UploadResult, error)
	Calls      int
	Received   [][]byte
}

// Verify interface compliance
var _ service.ImageHost = (*MockImageHost)(nil)

func NewMockImageHost() *MockImageHost {
	return &MockImageHost{}
}

// Upload reads the full request body, then delegates to UploadFunc
func (m *MockImageHost) Upload(ctx context.Context, req *imagehost.UploadRequest) (*imagehost.UploadResult, error) {
	m.Calls++
	data, err := io.ReadAll(req.File)
	if err != nil {
		return nil, err
	}
	m.Received = append(m.Received, data)
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, req)
	}
	size := int64(len(data))
	return &imagehost.UploadResult{
		Outcome:    imagehost.OutcomeUploaded,
		ID:         "mock",
		URL:        "https://i.example.com/mock.png",
		DisplayURL: "https://example.com/mock",
		Size:       &size,
	}, nil
}
