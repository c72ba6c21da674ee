// Package entity defines the core domain entities and validation logic for the application.
// It contains the Article aggregate, the partial-update types applied to it, and the
// domain-specific errors shared by the use case and persistence layers.
package entity

import "time"

// Article represents a stored article.
// Tags keep their insertion order; PublishedAt is nil for unpublished drafts.
type Article struct {
	ID          int64
	Title       string
	Author      string
	Body        string
	Tags        []string
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Draft carries the fields of an article that does not exist yet.
type Draft struct {
	Title       string     `json:"title" validate:"required,min=3,max=255"`
	Body        string     `json:"body" validate:"required,min=10"`
	Author      string     `json:"author" validate:"required,min=3,max=150"`
	Tags        []string   `json:"tags" validate:"omitempty,dive,required,excludes=;"`
	PublishedAt *time.Time `json:"published_at"`
}

// Field is an optional value in a partial update.
// Set reports whether the caller supplied the field at all; Null reports an explicit null.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns a Field that is present with the given value.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Null returns a Field that is present and explicitly cleared.
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// Patch is a partial update of an Article. Author cannot change after creation.
type Patch struct {
	Title       Field[string]
	Body        Field[string]
	Tags        Field[[]string]
	PublishedAt Field[time.Time]
}

// Apply returns a new snapshot of a with the fields present in p applied
// and UpdatedAt set to now. The receiver is not modified.
func (a Article) Apply(p Patch, now time.Time) Article {
	next := a
	next.Tags = append([]string(nil), a.Tags...)

	if p.Title.Set && !p.Title.Null {
		next.Title = p.Title.Value
	}
	if p.Body.Set && !p.Body.Null {
		next.Body = p.Body.Value
	}
	if p.Tags.Set {
		if p.Tags.Null {
			next.Tags = nil
		} else {
			next.Tags = append([]string(nil), p.Tags.Value...)
		}
	}
	if p.PublishedAt.Set {
		if p.PublishedAt.Null {
			next.PublishedAt = nil
		} else {
			t := p.PublishedAt.Value
			next.PublishedAt = &t
		}
	}
	next.UpdatedAt = now
	return next
}
