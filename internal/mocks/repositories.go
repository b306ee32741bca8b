package mocks

import (
	"context"

	"github.com/article-image-api/internal/models"
	"github.com/article-image-api/internal/repository"
)

// MockStore is an in-memory RecordStore
type MockStore[T any] struct {
	Records   []T
	LoadError error
	SaveError error
	LoadCalls int
	SaveCalls int
}

// Verify interface compliance
var (
	_ repository.ArticleStore = (*MockStore[models.Article])(nil)
	_ repository.ImageStore   = (*MockStore[models.ImageRecord])(nil)
)

func NewMockStore[T any](records ...T) *MockStore[T] {
	return &MockStore[T]{Records: append([]T{}, records...)}
}

// Load returns a copy so callers cannot mutate the stored slice without Save
func (m *MockStore[T]) Load(ctx context.Context) ([]T, error) {
	m.LoadCalls++
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	return append([]T{}, m.Records...), nil
}

func (m *MockStore[T]) Save(ctx context.Context, records []T) error {
	m.SaveCalls++
	if m.SaveError != nil {
		return m.SaveError
	}
	m.Records = append([]T{}, records...)
	return nil
}

// NewMockRepositories creates repositories backed by empty in-memory stores
func NewMockRepositories() (*repository.Repositories, *MockStore[models.Article], *MockStore[models.ImageRecord]) {
	articles := NewMockStore[models.Article]()
	images := NewMockStore[models.ImageRecord]()
	return &repository.Repositories{Article: articles, Image: images}, articles, images
}
