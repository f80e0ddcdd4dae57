package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/freelaz/marketplace-api/internal/core/domain"
	"github.com/freelaz/marketplace-api/internal/i18n"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Localizes messages from the request's Accept-Language (pt default).
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	lang := i18n.DetectLanguage(c.Request().Header.Get("Accept-Language"))

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, i18n.T(lang, "invalid_credentials")
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, i18n.T(lang, "user_exists")
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, i18n.T(lang, "user_not_found")
	case errors.Is(err, domain.ErrProfileNotFound):
		return http.StatusNotFound, i18n.T(lang, "profile_not_found")
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusUnauthorized, i18n.T(lang, "session_not_found")
	case errors.Is(err, domain.ErrWeakPassword):
		return http.StatusBadRequest, i18n.T(lang, "weak_password")
	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest, i18n.T(lang, "invalid_role")
	case errors.Is(err, domain.ErrInvalidResetToken):
		return http.StatusBadRequest, i18n.T(lang, "invalid_reset_token")
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, i18n.T(lang, "forbidden")
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, i18n.T(lang, "internal_error")
}
