package retrieval

import (
	"errors"
	"net/http"
)

// Domain errors for passage operations.
var (
	ErrNotFound     = errors.New("passage not found")
	ErrDuplicate    = errors.New("passage already indexed")
	ErrEmptyPassage = errors.New("passage text must not be empty")
	ErrEmptyQuery   = errors.New("search query must not be empty")
)

// MapHTTPStatus maps passage domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrEmptyPassage), errors.Is(err, ErrEmptyQuery):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
