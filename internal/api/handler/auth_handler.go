package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mybankuml/banking-portal/internal/api/metrics"
	"github.com/mybankuml/banking-portal/internal/api/middleware"
	"github.com/mybankuml/banking-portal/internal/core/domain"
	"github.com/mybankuml/banking-portal/internal/core/ports"
	"github.com/mybankuml/banking-portal/internal/core/service"
)

// SessionReleaser drops a live session after logout.
type SessionReleaser interface {
	Release(sessionID string)
}

// AuthHandler serves login, registration, logout and the session check.
type AuthHandler struct {
	api      ports.BankAPI
	sessions SessionReleaser
	log      zerolog.Logger
}

func NewAuthHandler(api ports.BankAPI, sessions SessionReleaser, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{api: api, sessions: sessions, log: log}
}

// Login authenticates the session against the banking backend and moves it
// to a fresh session id.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	store, err := sessionStore(c)
	if err != nil {
		return err
	}

	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	id, err := store.Login(c.Request().Context(), service.Credentials{Username: req.Username, Password: req.Password})
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	// A session id handed out before login must not carry the login.
	if store, err = middleware.RenewSession(c); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sessionResponse{
		Success: true,
		User:    &id,
		Flags:   store.Flags(),
		Home:    domain.HomeFor(id.UserRole),
	})
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrAuthenticationFailed):
		return "rejected"
	default:
		return "error"
	}
}

// Register creates a new user on the backend. The session is not logged in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.api.Register(c.Request().Context(), ports.RegisterInput{
		UserID:    req.UserID,
		Password:  req.Password,
		UserName:  req.UserName,
		UserEmail: req.UserEmail,
		UserPhone: req.UserPhone,
		UserRole:  req.UserRole,
	})
	if err != nil {
		return err
	}
	if err := res.Failure(); err != nil {
		return err
	}

	role := domain.RoleCustomer
	if res.User != nil {
		if r, err := domain.ParseRole(res.User.UserRole); err == nil {
			role = r
		}
	}
	return c.JSON(http.StatusCreated, registerResponse{
		Success: true,
		User:    res.User,
		Home:    domain.HomeFor(role),
	})
}

// Logout clears the session and points the client at the login page.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  redirectResponse
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	store, err := sessionStore(c)
	if err != nil {
		return err
	}
	redirect := store.Logout(c.Request().Context())
	h.sessions.Release(store.SessionID())
	return c.JSON(http.StatusOK, redirectResponse{Success: true, Redirect: redirect})
}

// Session reports the active identity and its role flags.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	store, err := sessionStore(c)
	if err != nil {
		return err
	}
	resp := sessionResponse{Success: true, Flags: store.Flags()}
	if id, ok := store.Identity(); ok {
		resp.User = &id
		resp.Home = domain.HomeFor(id.UserRole)
	}
	return c.JSON(http.StatusOK, resp)
}
