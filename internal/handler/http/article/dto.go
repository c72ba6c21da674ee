// Package article provides HTTP handlers for the article endpoints.
package article

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"article-service/internal/domain/entity"
)

// DTO is the JSON representation of an article.
type DTO struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Body        string     `json:"body"`
	Tags        []string   `json:"tags"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toDTO(a *entity.Article) DTO {
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	return DTO{
		ID:          a.ID,
		Title:       a.Title,
		Author:      a.Author,
		Body:        a.Body,
		Tags:        tags,
		PublishedAt: a.PublishedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// CreateRequest is the POST /articles body.
type CreateRequest struct {
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Author      string     `json:"author"`
	Tags        []string   `json:"tags"`
	PublishedAt *time.Time `json:"published_at"`
}

func (req CreateRequest) draft() entity.Draft {
	return entity.Draft{
		Title:       req.Title,
		Body:        req.Body,
		Author:      req.Author,
		Tags:        req.Tags,
		PublishedAt: req.PublishedAt,
	}
}

// UpdateRequest is the PUT /articles/{id} body. Every field is optional;
// an explicit null is distinct from an absent key. Author is not updatable
// and is ignored like any other unknown key.
type UpdateRequest struct {
	Title       optional[string]    `json:"title"`
	Body        optional[string]    `json:"body"`
	Tags        optional[[]string]  `json:"tags"`
	PublishedAt optional[time.Time] `json:"published_at"`
}

func (req UpdateRequest) patch() entity.Patch {
	return entity.Patch{
		Title:       req.Title.field(),
		Body:        req.Body.field(),
		Tags:        req.Tags.field(),
		PublishedAt: req.PublishedAt.field(),
	}
}

// optional records whether a JSON key was present and whether it was null.
type optional[T any] struct {
	set   bool
	null  bool
	value T
}

// UnmarshalJSON is only invoked for keys present in the document, null included.
func (o *optional[T]) UnmarshalJSON(b []byte) error {
	o.set = true
	if string(b) == "null" {
		o.null = true
		return nil
	}
	return json.Unmarshal(b, &o.value)
}

func (o optional[T]) field() entity.Field[T] {
	switch {
	case !o.set:
		return entity.Field[T]{}
	case o.null:
		return entity.Null[T]()
	default:
		return entity.Some(o.value)
	}
}

// decodeJSON reads a single JSON object from r into dst. Malformed bodies
// become validation errors so they are reported as 422 like field errors.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		var tooLarge *http.MaxBytesError
		var parseErr *time.ParseError
		switch {
		case errors.Is(err, io.EOF):
			return &entity.ValidationError{Message: "request body is required"}
		case errors.As(err, &tooLarge):
			return &entity.ValidationError{Message: fmt.Sprintf("request body must not exceed %d bytes", tooLarge.Limit)}
		case errors.As(err, &typeErr):
			return &entity.ValidationError{Field: typeErr.Field, Message: "must be of type " + jsonType(typeErr.Type.String())}
		case errors.As(err, &parseErr):
			return &entity.ValidationError{Field: "published_at", Message: "must be an RFC 3339 timestamp"}
		default:
			return &entity.ValidationError{Message: "request body must be a valid JSON object"}
		}
	}
	if dec.More() {
		return &entity.ValidationError{Message: "request body must contain a single JSON object"}
	}
	return nil
}

func jsonType(goType string) string {
	switch goType {
	case "string":
		return "string"
	case "[]string":
		return "array of strings"
	case "time.Time":
		return "timestamp"
	default:
		return "object"
	}
}
