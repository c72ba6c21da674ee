// Package article provides use cases for managing article entities.
// It keeps the article cache consistent with the repository: reads go through
// the cache, writes go to the repository and then invalidate the cached entry.
package article

import (
	"fmt"

	"article-service/internal/domain/entity"
)

// Sentinel errors for article use case operations.
var (
	// ErrArticleNotFound indicates that the requested article does not exist.
	ErrArticleNotFound = fmt.Errorf("article %w", entity.ErrNotFound)

	// ErrInvalidArticleID indicates that the provided article ID is invalid.
	// Article IDs must be positive integers. It is a validation error on the
	// "id" field so transports can report it like any other invalid input.
	ErrInvalidArticleID error = &entity.ValidationError{Field: "id", Message: "must be a positive integer"}

	// ErrDuplicateArticle indicates that an article with the same title and author exists.
	ErrDuplicateArticle = fmt.Errorf("article with this title and author %w", entity.ErrConflict)
)
