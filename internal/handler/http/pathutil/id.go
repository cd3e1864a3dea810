package pathutil

import (
	"errors"
	"strconv"
)

// ErrInvalidID is returned when the ID in the URL path is invalid.
var ErrInvalidID = errors.New("invalid id")

// ParseID parses a positive int64 path segment, typically r.PathValue("id").
//
// Example:
//
//	id, err := ParseID(r.PathValue("id"))
//	// "123" -> 123, nil
//	// "0", "-1", "abc", "" -> 0, ErrInvalidID
func ParseID(segment string) (int64, error) {
	id, err := strconv.ParseInt(segment, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
