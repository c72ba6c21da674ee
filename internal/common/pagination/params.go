package pagination

import (
	"fmt"
	"net/url"
	"strconv"

	"article-service/internal/domain/entity"
)

// Params represents pagination query parameters from an HTTP request.
type Params struct {
	Skip  int // Rows to skip after ordering
	Limit int // Rows to return
}

// ParseQueryParams reads skip and limit from q.
//
// Missing values take their defaults (skip=0, limit=config.DefaultLimit).
// Present but malformed values are rejected with an *entity.ValidationError
// naming the parameter; they are never silently clamped.
func ParseQueryParams(q url.Values, config Config) (Params, error) {
	params := Params{Limit: config.DefaultLimit}

	if s := q.Get("skip"); s != "" {
		skip, err := strconv.Atoi(s)
		if err != nil || skip < 0 {
			RecordError("skip")
			return Params{}, &entity.ValidationError{Field: "skip", Message: "must be a non-negative integer"}
		}
		params.Skip = skip
	}

	if s := q.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 1 || limit > config.MaxLimit {
			RecordError("limit")
			return Params{}, &entity.ValidationError{
				Field:   "limit",
				Message: fmt.Sprintf("must be an integer between 1 and %d", config.MaxLimit),
			}
		}
		params.Limit = limit
	}

	return params, nil
}
