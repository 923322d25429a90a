package apitest

import (
	"errors"
	"net/http"
)

var (
	// Validation Errors
	ErrInvalidBody     = errors.New("request body is invalid")
	ErrInvalidID       = errors.New("id must be an integer")
	ErrNotAssociable   = errors.New("these models cannot be associated")
	ErrUnsupportedPath = errors.New("unknown collection")

	// Business Rule Errors
	ErrNotFound      = errors.New("not found")
	ErrLibraryAbsent = errors.New("library not found")
	ErrNotUnique     = errors.New("an entity with this name already exists")
	ErrNotLinked     = errors.New("entities are not associated")

	// Auth Errors
	ErrInvalidGrant     = errors.New("invalid username or password")
	ErrUnsupportedGrant = errors.New("unsupported grant_type")
)

// ToErrorCode converts error to API error code
func ToErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrLibraryAbsent), errors.Is(err, ErrNotLinked), errors.Is(err, ErrUnsupportedPath):
		return "NOT_FOUND"
	case errors.Is(err, ErrNotUnique):
		return "NOT_UNIQUE"
	case errors.Is(err, ErrInvalidGrant):
		return "INVALID_GRANT"
	case errors.Is(err, ErrUnsupportedGrant):
		return "UNSUPPORTED_GRANT_TYPE"
	case errors.Is(err, ErrInvalidBody), errors.Is(err, ErrInvalidID), errors.Is(err, ErrNotAssociable):
		return "BAD_REQUEST"
	default:
		return "INTERNAL_ERROR"
	}
}

// ToHTTPStatus converts error to HTTP status code
func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrLibraryAbsent), errors.Is(err, ErrNotLinked), errors.Is(err, ErrUnsupportedPath):
		return http.StatusNotFound
	case errors.Is(err, ErrNotUnique):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidGrant):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidBody), errors.Is(err, ErrInvalidID), errors.Is(err, ErrNotAssociable), errors.Is(err, ErrUnsupportedGrant):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
