package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/query"
	"github.com/vidtube/backend/internal/repositories"
)

// apiError pairs an HTTP status with a client-safe message. Handlers either
// construct one directly or let asAPIError translate a lower-layer error.
type apiError struct {
	status  int
	message string
	details []string
}

func (e *apiError) Error() string {
	return e.message
}

func badRequest(message string) *apiError {
	return &apiError{status: http.StatusBadRequest, message: message}
}

func unauthorized(message string) *apiError {
	return &apiError{status: http.StatusUnauthorized, message: message}
}

func forbidden(message string) *apiError {
	return &apiError{status: http.StatusForbidden, message: message}
}

func notFound(message string) *apiError {
	return &apiError{status: http.StatusNotFound, message: message}
}

func conflict(message string) *apiError {
	return &apiError{status: http.StatusConflict, message: message}
}

func tooManyRequests(message string) *apiError {
	return &apiError{status: http.StatusTooManyRequests, message: message}
}

func internalError(message string) *apiError {
	return &apiError{status: http.StatusInternalServerError, message: message}
}

func gatewayTimeout(message string) *apiError {
	return &apiError{status: http.StatusGatewayTimeout, message: message}
}

// asAPIError maps lower-layer errors onto the response taxonomy. Anything
// unrecognized becomes an opaque 500 so internals never leak to clients.
func asAPIError(err error) *apiError {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var invalidPage query.ErrInvalidPage
	if errors.As(err, &invalidPage) {
		return badRequest(invalidPage.Error())
	}

	var invalidSort query.ErrInvalidSort
	if errors.As(err, &invalidSort) {
		return badRequest(invalidSort.Error())
	}

	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return notFound("resource not found")
	case errors.Is(err, repositories.ErrConflict):
		return conflict("resource already exists")
	case errors.Is(err, auth.ErrSessionNotFound), errors.Is(err, auth.ErrRefreshTokenExpired):
		return unauthorized("invalid refresh token")
	case errors.Is(err, auth.ErrInvalidAccessToken):
		return unauthorized("invalid access token")
	case errors.Is(err, context.DeadlineExceeded):
		return gatewayTimeout("upstream operation timed out")
	default:
		return internalError("internal server error")
	}
}
