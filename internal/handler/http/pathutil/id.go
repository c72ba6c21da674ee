package pathutil

import (
	"errors"
	"strconv"
)

// ErrInvalidID reports an {id} segment that is not a positive int64.
var ErrInvalidID = errors.New("invalid id")

// ParseID reads the {id} wildcard, e.g. ParseID(r.PathValue("id")).
// Signs, spaces and values above MaxInt64 are rejected.
func ParseID(segment string) (int64, error) {
	if !isDigits(segment) {
		return 0, ErrInvalidID
	}
	id, err := strconv.ParseInt(segment, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
