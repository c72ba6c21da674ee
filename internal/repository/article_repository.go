// Package repository declares the persistence ports used by the use case layer.
package repository

import (
	"context"
	"errors"

	"article-service/internal/domain/entity"
)

// ErrConflict is returned when a write violates the (title, author) uniqueness constraint.
var ErrConflict = errors.New("unique constraint violation")

// SortOrder controls the published_at ordering of List.
type SortOrder string

const (
	SortDesc SortOrder = "desc"
	SortAsc  SortOrder = "asc"
)

// ListQuery holds the filters and window for ArticleRepository.List.
// Empty strings disable the corresponding filter.
type ListQuery struct {
	Skip      int
	Limit     int
	Tag       string // substring of the stored tag string
	Author    string // exact match
	Search    string // substring of title or body
	SortOrder SortOrder
}

type ArticleRepository interface {
	// Get returns (nil, nil) if the article does not exist.
	Get(ctx context.Context, id int64) (*entity.Article, error)
	// GetByTitleAndAuthor returns (nil, nil) if no article has that pair.
	GetByTitleAndAuthor(ctx context.Context, title, author string) (*entity.Article, error)
	// List returns one page of matching articles and the total number of matches.
	// Articles without published_at sort last in both orders.
	List(ctx context.Context, q ListQuery) ([]*entity.Article, int64, error)
	// Create inserts the draft and returns the stored article with its generated fields.
	Create(ctx context.Context, d entity.Draft) (*entity.Article, error)
	// Update applies the patch to existing and returns the new snapshot.
	// Returns (nil, nil) if the row disappeared in the meantime.
	Update(ctx context.Context, existing *entity.Article, p entity.Patch) (*entity.Article, error)
	// Delete removes existing and returns the snapshot it was given.
	// Returns (nil, nil) if the row disappeared in the meantime.
	Delete(ctx context.Context, existing *entity.Article) (*entity.Article, error)
	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}
