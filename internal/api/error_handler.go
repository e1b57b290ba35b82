package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mybankuml/banking-portal/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"success": false, "message": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Success: false, Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, messageOf[*domain.ValidationError](err)
	case errors.Is(err, domain.ErrAuthenticationFailed):
		return http.StatusUnauthorized, messageOf[*domain.AuthError](err)
	case errors.Is(err, domain.ErrAuthorizationDenied):
		return http.StatusForbidden, "Access denied"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, domain.ErrRejected):
		return http.StatusUnprocessableEntity, messageOf[*domain.RejectedError](err)
	case errors.Is(err, domain.ErrDuplicateSubmission):
		return http.StatusConflict, "This request was already submitted"
	case errors.Is(err, domain.ErrSuperseded):
		return http.StatusConflict, "superseded by a newer search"
	case errors.Is(err, domain.ErrNotImplemented):
		return http.StatusNotImplemented, "Not implemented"
	case errors.Is(err, domain.ErrRequestFailed):
		log.Warn().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("backend request failed")
		return http.StatusBadGateway, "Request failed"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

// messageOf returns the user-facing message of the typed error in err's
// chain, falling back to err itself.
func messageOf[T error](err error) string {
	var target T
	if errors.As(err, &target) {
		return target.Error()
	}
	return err.Error()
}
