package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/opsdesk/toolbox-admin/internal/api/metrics"
	"github.com/opsdesk/toolbox-admin/internal/api/session"
	"github.com/opsdesk/toolbox-admin/internal/api/view"
	"github.com/opsdesk/toolbox-admin/internal/core/domain"
	"github.com/opsdesk/toolbox-admin/internal/core/ports"
)

const (
	msgSignedUp     = "You have successfully signed up! You may now sign in."
	msgSignUpFailed = "Failed to sign up new user."
	msgInvalidLogin = "Invalid email or password."
	msgSignedOut    = "You successfully signed out."
)

type AuthHandler struct {
	base
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService, sessions *session.Manager, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{base: base{sessions: sessions, log: log}, authService: authService}
}

type signUpForm struct {
	Email           string `form:"email" validate:"required,email,max=60"`
	Name            string `form:"name" validate:"required,max=60"`
	FirstName       string `form:"first_name" validate:"max=60"`
	LastName        string `form:"last_name" validate:"max=60"`
	Password        string `form:"password" validate:"required,maxbytes=72"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

func (f signUpForm) data() view.FormData {
	return view.FormData{Values: map[string]string{
		"email":      f.Email,
		"name":       f.Name,
		"first_name": f.FirstName,
		"last_name":  f.LastName,
	}}
}

type signInForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// SignUp serves GET and POST /signup.
func (h *AuthHandler) SignUp(c echo.Context) error {
	rerender := func(f view.FormData, status int) error {
		return render(c, status, view.SignUp(h.page(c, "Sign up"), f))
	}
	if !isPost(c) {
		return rerender(view.FormData{}, http.StatusOK)
	}

	var form signUpForm
	err := bindForm(c, &form)
	if err == nil {
		_, err = h.authService.SignUp(c.Request().Context(), ports.SignUpInput{
			Email:     form.Email,
			Name:      form.Name,
			FirstName: form.FirstName,
			LastName:  form.LastName,
			Password:  form.Password,
		})
	}
	if err != nil {
		return h.formError(c, err, form.data(), rerender, "/signup", msgSignUpFailed)
	}
	return h.redirectWithFlash(c, "/signin", msgSignedUp)
}

// SignIn serves GET and POST /signin. A successful sign-in starts a new
// session and follows the next query parameter when it is a local path.
func (h *AuthHandler) SignIn(c echo.Context) error {
	next := safeNext(c.QueryParam("next"))
	rerender := func(f view.FormData, status int) error {
		return render(c, status, view.SignIn(h.page(c, "Sign in"), f, next))
	}
	if !isPost(c) {
		return rerender(view.FormData{}, http.StatusOK)
	}

	var form signInForm
	err := bindForm(c, &form)
	data := view.FormData{Values: map[string]string{"email": form.Email}}
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			data.Errors = ve.Fields
			return rerender(data, http.StatusUnprocessableEntity)
		}
		return err
	}

	user, err := h.authService.SignIn(c.Request().Context(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.AuthAttemptsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
			h.flash(c, msgInvalidLogin)
			return rerender(data, http.StatusOK)
		}
		metrics.AuthAttemptsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return err
	}

	if _, err := h.sessions.Start(c, user.ID); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return err
	}
	metrics.AuthAttemptsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	h.log.Info().Int64("user_id", user.ID).Bool("is_admin", user.IsAdmin).Msg("signed in")

	if next != "" {
		return c.Redirect(http.StatusFound, next)
	}
	return c.Redirect(http.StatusFound, landing(user))
}

// SignOut serves /signout. It runs behind the session gate.
func (h *AuthHandler) SignOut(c echo.Context) error {
	if err := h.sessions.Destroy(c); err != nil {
		return err
	}
	return h.redirectWithFlash(c, "/", msgSignedOut)
}

func landing(u *domain.User) string {
	if u.IsAdmin {
		return "/admin/home"
	}
	return "/home"
}
