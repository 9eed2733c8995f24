package triage

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/steward/internal/mail"
)

// Domain errors for email operations.
var (
	ErrNotFound  = errors.New("email not found")
	ErrDuplicate = errors.New("email already exists")
	ErrNotQueued = errors.New("email is not queued for processing")
	ErrArchive   = errors.New("result archive failed")
	ErrRelease   = errors.New("result delivery failed")
)

// MapHTTPStatus maps email domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrNotQueued):
		return http.StatusConflict
	case errors.Is(err, mail.ErrInvalidSender),
		errors.Is(err, mail.ErrEmptyBody),
		errors.Is(err, mail.ErrInvalidHTML):
		return http.StatusBadRequest
	case errors.Is(err, ErrRelease):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
