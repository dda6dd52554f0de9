package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/opsdesk/toolbox-admin/internal/api/session"
	"github.com/opsdesk/toolbox-admin/internal/api/view"
	"github.com/opsdesk/toolbox-admin/internal/core/domain"
)

var statusMessages = map[int]string{
	http.StatusForbidden:           "You do not have permission to access this page.",
	http.StatusNotFound:            "The page you are looking for does not exist.",
	http.StatusInternalServerError: "Something went wrong. Please try again later.",
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders an HTML error page carrying the status code.
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

		c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
		c.Response().WriteHeader(code)
		page := view.Page{User: session.User(c)}
		if rerr := view.ErrorPage(page, code, msg).Render(c.Response()); rerr != nil {
			log.Error().Err(rerr).Msg("render error page")
		}
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, CSRF rejections, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := statusMessages[he.Code]; ok && he.Code != http.StatusForbidden {
			return he.Code, msg
		}
		if he.Code >= http.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg("http error")
			return he.Code, statusMessages[http.StatusInternalServerError]
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	var nf *domain.NotFoundError
	switch {
	case errors.As(err, &nf):
		return http.StatusNotFound, fmt.Sprintf("The requested %s does not exist.", nf.Entity)
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, statusMessages[http.StatusNotFound]
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, statusMessages[http.StatusForbidden]
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password."
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, statusMessages[http.StatusInternalServerError]
}
