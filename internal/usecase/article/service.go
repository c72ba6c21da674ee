package article

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"article-service/internal/domain/entity"
	"article-service/internal/observability/logging"
	"article-service/internal/observability/metrics"
	"article-service/internal/observability/tracing"
	"article-service/internal/repository"
)

// DefaultCacheTTL is how long a cached article may be served without a store read.
const DefaultCacheTTL = 120 * time.Second

// Cache is the advisory key-value store in front of the repository.
// Implementations absorb their own backend failures: Get reports a miss,
// Set and Delete are dropped.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// Service provides article management use cases.
// It is the only writer of article cache entries.
type Service struct {
	Repo     repository.ArticleRepository
	Cache    Cache
	CacheTTL time.Duration
}

// ListResult is one page of articles plus the size of the whole filtered set.
type ListResult struct {
	Articles []*entity.Article
	Total    int64
}

// CacheKey returns the cache key of the article with the given id.
func CacheKey(id int64) string {
	return "article:" + strconv.FormatInt(id, 10)
}

// Get returns the article with the given id, serving it from the cache when possible.
// On a miss the repository is read and the cache is populated on a best-effort basis.
// Returns ErrInvalidArticleID if the ID is not positive.
// Returns ErrArticleNotFound if the article does not exist.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Article, error) {
	if id <= 0 {
		return nil, ErrInvalidArticleID
	}

	ctx, span := tracing.StartSpan(ctx, "article.get", attribute.Int64("article.id", id))
	defer span.End()

	key := CacheKey(id)
	if article, ok := s.fromCache(ctx, key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return article, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	article, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}

	s.populate(ctx, key, article)
	return article, nil
}

// List returns the page of articles described by q and the total number of matches.
func (s *Service) List(ctx context.Context, q repository.ListQuery) (*ListResult, error) {
	articles, total, err := s.Repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return &ListResult{Articles: articles, Total: total}, nil
}

// Create validates d and stores it unless an article with the same title and
// author already exists. The cache is not written; the first Get populates it.
// Returns a *entity.ValidationError if a field is invalid.
// Returns ErrDuplicateArticle if the (title, author) pair is taken.
func (s *Service) Create(ctx context.Context, d entity.Draft) (*entity.Article, error) {
	if err := d.Validate(); err != nil {
		metrics.RecordArticleMutation("create", "invalid")
		return nil, err
	}

	existing, err := s.Repo.GetByTitleAndAuthor(ctx, d.Title, d.Author)
	if err != nil {
		metrics.RecordArticleMutation("create", "error")
		return nil, fmt.Errorf("check duplicate article: %w", err)
	}
	if existing != nil {
		metrics.RecordArticleMutation("create", "conflict")
		return nil, ErrDuplicateArticle
	}

	article, err := s.Repo.Create(ctx, d)
	if err != nil {
		// Lost a race with a concurrent create of the same pair.
		if errors.Is(err, repository.ErrConflict) {
			metrics.RecordArticleMutation("create", "conflict")
			return nil, ErrDuplicateArticle
		}
		metrics.RecordArticleMutation("create", "error")
		return nil, fmt.Errorf("create article: %w", err)
	}

	metrics.RecordArticleMutation("create", "success")
	return article, nil
}

// Update applies p to the article with the given id and invalidates its cache entry.
// The article is loaded from the repository, never from the cache.
// Returns ErrInvalidArticleID if the ID is not positive.
// Returns ErrArticleNotFound if the article does not exist.
// Returns a *entity.ValidationError if a present field is invalid.
// Returns ErrDuplicateArticle if the new title collides with another article by the same author.
func (s *Service) Update(ctx context.Context, id int64, p entity.Patch) (*entity.Article, error) {
	if id <= 0 {
		return nil, ErrInvalidArticleID
	}
	if err := p.Validate(); err != nil {
		metrics.RecordArticleMutation("update", "invalid")
		return nil, err
	}

	existing, err := s.Repo.Get(ctx, id)
	if err != nil {
		metrics.RecordArticleMutation("update", "error")
		return nil, fmt.Errorf("get article: %w", err)
	}
	if existing == nil {
		metrics.RecordArticleMutation("update", "not_found")
		return nil, ErrArticleNotFound
	}

	updated, err := s.Repo.Update(ctx, existing, p)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			metrics.RecordArticleMutation("update", "conflict")
			return nil, ErrDuplicateArticle
		}
		metrics.RecordArticleMutation("update", "error")
		return nil, fmt.Errorf("update article: %w", err)
	}

	s.invalidate(ctx, id)

	if updated == nil {
		metrics.RecordArticleMutation("update", "not_found")
		return nil, ErrArticleNotFound
	}
	metrics.RecordArticleMutation("update", "success")
	return updated, nil
}

// Delete removes the article with the given id and invalidates its cache entry.
// Returns ErrInvalidArticleID if the ID is not positive.
// Returns ErrArticleNotFound if the article does not exist.
func (s *Service) Delete(ctx context.Context, id int64) (*entity.Article, error) {
	if id <= 0 {
		return nil, ErrInvalidArticleID
	}

	existing, err := s.Repo.Get(ctx, id)
	if err != nil {
		metrics.RecordArticleMutation("delete", "error")
		return nil, fmt.Errorf("get article: %w", err)
	}
	if existing == nil {
		metrics.RecordArticleMutation("delete", "not_found")
		return nil, ErrArticleNotFound
	}

	deleted, err := s.Repo.Delete(ctx, existing)
	if err != nil {
		metrics.RecordArticleMutation("delete", "error")
		return nil, fmt.Errorf("delete article: %w", err)
	}

	s.invalidate(ctx, id)

	if deleted == nil {
		metrics.RecordArticleMutation("delete", "not_found")
		return nil, ErrArticleNotFound
	}
	metrics.RecordArticleMutation("delete", "success")
	return deleted, nil
}

func (s *Service) fromCache(ctx context.Context, key string) (*entity.Article, bool) {
	if s.Cache == nil {
		return nil, false
	}
	raw, ok := s.Cache.Get(ctx, key)
	if !ok {
		metrics.RecordCacheLookup(false)
		return nil, false
	}

	article, err := decodeArticle(raw)
	if err != nil {
		// Unreadable entry: drop it and fall back to the store.
		logging.FromContext(ctx).Warn("discarding undecodable cache entry",
			slog.String("key", key),
			slog.Any("error", err))
		s.Cache.Delete(ctx, key)
		metrics.RecordCacheLookup(false)
		return nil, false
	}

	metrics.RecordCacheLookup(true)
	return article, true
}

func (s *Service) populate(ctx context.Context, key string, article *entity.Article) {
	if s.Cache == nil {
		return
	}
	raw, err := encodeArticle(article)
	if err != nil {
		logging.FromContext(ctx).Warn("encode cache entry",
			slog.String("key", key),
			slog.Any("error", err))
		return
	}
	s.Cache.Set(ctx, key, raw, s.ttl())
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	if s.Cache == nil {
		return
	}
	s.Cache.Delete(ctx, CacheKey(id))
}

func (s *Service) ttl() time.Duration {
	if s.CacheTTL <= 0 {
		return DefaultCacheTTL
	}
	return s.CacheTTL
}
