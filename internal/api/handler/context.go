package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"maragu.dev/gomponents"

	"github.com/opsdesk/toolbox-admin/internal/api/metrics"
	"github.com/opsdesk/toolbox-admin/internal/api/session"
	"github.com/opsdesk/toolbox-admin/internal/api/view"
	"github.com/opsdesk/toolbox-admin/internal/core/domain"
)

// CSRFContextKey is where the CSRF middleware stores the request token.
const CSRFContextKey = "csrf"

// Operation label values.
const (
	opAdd    = "add"
	opEdit   = "edit"
	opDelete = "delete"
	opAssign = "assign"
)

// base holds what every HTML handler needs to render pages and flash
// messages.
type base struct {
	sessions *session.Manager
	log      zerolog.Logger
}

// page collects the per-request layout data. Pending flashes are consumed.
func (b base) page(c echo.Context, title string) view.Page {
	csrf, _ := c.Get(CSRFContextKey).(string)
	return view.Page{
		Title:   title,
		User:    session.User(c),
		Flashes: b.sessions.PopFlashes(c),
		CSRF:    csrf,
	}
}

func (b base) flash(c echo.Context, msg string) {
	if err := b.sessions.AddFlash(c, msg); err != nil {
		b.log.Error().Err(err).Msg("add flash failed")
	}
}

func (b base) redirectWithFlash(c echo.Context, path, msg string) error {
	b.flash(c, msg)
	return c.Redirect(http.StatusFound, path)
}

// mutationError resolves a failed mutation. Persistence failures have been
// rolled back, so they are flashed and the user is sent back to listPath.
// Everything else goes to the HTTP error handler.
func (b base) mutationError(c echo.Context, err error, listPath, failMsg string) error {
	var pe *domain.PersistenceError
	if errors.As(err, &pe) {
		b.log.Error().Err(pe.Err).Str("op", pe.Op).Msg("mutation rolled back")
		return b.redirectWithFlash(c, listPath, failMsg)
	}
	return err
}

// formError resolves a failed form submission: validation errors re-render
// the form inline, conflicts re-render it with a flash.
func (b base) formError(c echo.Context, err error, f view.FormData, rerender func(view.FormData, int) error, listPath, failMsg string) error {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		f.Errors = ve.Fields
		return rerender(f, http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrConflict):
		b.flash(c, sentence(err.Error()))
		return rerender(f, http.StatusConflict)
	}
	return b.mutationError(c, err, listPath, failMsg)
}

func render(c echo.Context, status int, node gomponents.Node) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return node.Render(c.Response())
}

// bindForm decodes the submitted form into dst and validates it.
func bindForm(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form submission")
	}
	return c.Validate(dst)
}

// parseID reads the :id path parameter. Malformed ids are reported as 404.
func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.ErrNotFound
	}
	return id, nil
}

func isPost(c echo.Context) bool {
	return c.Request().Method == http.MethodPost
}

func idPath(base string, id int64) string {
	return base + strconv.FormatInt(id, 10)
}

// observe records the outcome of an admin mutation.
func observe(entity, operation string, err error) {
	metrics.AdminOperationsTotal.WithLabelValues(entity, operation, resultOf(err)).Inc()
}

func resultOf(err error) string {
	var he *echo.HTTPError
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, domain.ErrValidation), errors.As(err, &he):
		return metrics.ResultInvalid
	case errors.Is(err, domain.ErrConflict):
		return metrics.ResultConflict
	case errors.Is(err, domain.ErrForbidden):
		return metrics.ResultForbidden
	case errors.Is(err, domain.ErrNotFound):
		return metrics.ResultNotFound
	default:
		return metrics.ResultFailure
	}
}

// sentence capitalises msg and terminates it with a period.
func sentence(msg string) string {
	if msg == "" {
		return msg
	}
	msg = strings.ToUpper(msg[:1]) + msg[1:]
	if !strings.HasSuffix(msg, ".") {
		msg += "."
	}
	return msg
}

// safeNext returns next when it is a local absolute path, else "".
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return next
}

func boolValue(v bool) string {
	if v {
		return "true"
	}
	return ""
}
