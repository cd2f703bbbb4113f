// Package apperr holds the error taxonomy shared by the kiosk packages.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation marks malformed payloads or request input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a missing membership, log, identity or photo.
	ErrNotFound = errors.New("not found")
	// ErrExpired marks a lapsed membership.
	ErrExpired = errors.New("membership expired")
	// ErrUpstream marks an unreachable or misbehaving backing store.
	ErrUpstream = errors.New("upstream error")
	// ErrDevice marks an unavailable camera or scanner.
	ErrDevice = errors.New("device error")
)

// HTTPStatus maps an error to the status code returned to API callers.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrExpired):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
