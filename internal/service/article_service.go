package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/article-image-api/internal/metrics"
	"github.com/article-image-api/internal/models"
	"github.com/article-image-api/internal/repository"
	"github.com/article-image-api/internal/validation"
	"github.com/rs/zerolog"
)

// summaryLength is the number of characters kept in a summary
const summaryLength = 100

// articleService is the concrete implementation of ArticleService
type articleService struct {
	store repository.ArticleStore
	now   func() time.Time
	log   zerolog.Logger
}

func newArticleService(store repository.ArticleStore, now func() time.Time, log zerolog.Logger) *articleService {
	return &articleService{
		store: store,
		now:   now,
		log:   log.With().Str("service", "article").Logger(),
	}
}

// ListArticles returns all articles, newest first
func (s *articleService) ListArticles(ctx context.Context) ([]models.Article, error) {
	articles, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load articles: %w", err)
	}

	// created_at is fixed-width, so string order is chronological
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].CreatedAt > articles[j].CreatedAt
	})
	return articles, nil
}

// CreateArticle derives title and summary from the content and appends the article
func (s *articleService) CreateArticle(ctx context.Context, req *models.CreateArticleRequest) (*models.Article, error) {
	if errs := validation.ValidateCreateArticle(req); len(errs) > 0 {
		return nil, &ValidationFailure{Errors: errs}
	}

	articles, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load articles: %w", err)
	}

	content := *req.Content
	author := models.DefaultAuthor
	if req.Author != nil && *req.Author != "" {
		author = *req.Author
	}

	article := models.Article{
		ID:        len(articles) + 1,
		Title:     DeriveTitle(content),
		Content:   content,
		Summary:   DeriveSummary(content),
		Author:    author,
		CreatedAt: s.now().Format(models.TimeLayout),
		ViewCount: 0,
	}

	articles = append(articles, article)
	if err := s.store.Save(ctx, articles); err != nil {
		return nil, fmt.Errorf("failed to save articles: %w", err)
	}

	metrics.ArticlesCreatedTotal.Inc()
	s.log.Info().
		Int("article_id", article.ID).
		Str("author", article.Author).
		Msg("Article created")

	return &article, nil
}

// GetArticle returns one article and counts the view
func (s *articleService) GetArticle(ctx context.Context, id int) (*models.Article, error) {
	articles, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load articles: %w", err)
	}

	for i := range articles {
		if articles[i].ID != id {
			continue
		}
		articles[i].ViewCount++
		if err := s.store.Save(ctx, articles); err != nil {
			return nil, fmt.Errorf("failed to save articles: %w", err)
		}
		metrics.ArticleViewsTotal.Inc()

		article := articles[i]
		return &article, nil
	}

	return nil, fmt.Errorf("article %d: %w", id, ErrNotFound)
}

// Count returns the number of stored articles
func (s *articleService) Count(ctx context.Context) (int, error) {
	articles, err := s.store.Load(ctx)
	if err != nil {
		return 0, err
	}
	return len(articles), nil
}

// DeriveTitle returns the first line of content without '#' characters
func DeriveTitle(content string) string {
	firstLine, _, _ := strings.Cut(content, "\n")
	title := strings.TrimSpace(strings.ReplaceAll(firstLine, "#", ""))
	if title == "" {
		return models.DefaultTitle
	}
	return title
}

// DeriveSummary strips markdown markers and keeps the first 100 characters.
// An ellipsis marks content that reached the limit.
func DeriveSummary(content string) string {
	cleaned := strings.NewReplacer("#", "", "*", "").Replace(content)
	runes := []rune(strings.TrimSpace(cleaned))
	if len(runes) >= summaryLength {
		return string(runes[:summaryLength]) + "..."
	}
	return string(runes)
}
