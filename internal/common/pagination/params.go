// Package pagination parses and validates limit/offset pagination for list
// endpoints.
package pagination

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// ErrInvalidParams is wrapped by every parse and validation error.
var ErrInvalidParams = errors.New("invalid pagination parameters")

// Params is a limit/offset window.
type Params struct {
	Limit  int
	Offset int
}

// ParseQueryParams reads limit and offset from the query string. Missing
// values take the defaults; non-numeric or out-of-range values are errors.
func ParseQueryParams(r *http.Request, config Config) (Params, error) {
	params := Params{Limit: config.DefaultLimit}
	q := r.URL.Query()

	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return params, fmt.Errorf("%w: limit must be an integer", ErrInvalidParams)
		}
		params.Limit = limit
	}

	if offsetStr := q.Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return params, fmt.Errorf("%w: offset must be an integer", ErrInvalidParams)
		}
		params.Offset = offset
	}

	return params, params.Validate(config)
}
