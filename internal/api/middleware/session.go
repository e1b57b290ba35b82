package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mybankuml/banking-portal/internal/core/service"
)

const (
	// SessionCookie carries the signed browser-session token.
	SessionCookie = "portal_session"

	// SessionTokenHeader returns a renewed token to bearer-token clients.
	SessionTokenHeader = "X-Session-Token"

	sessionContextKey = "session"
	sessionIDKey      = "session_id"
	sessionRenewKey   = "session_renew"
	tokenIssuer       = "banking-portal"
)

// SessionSource hands out the live store of a browser session.
type SessionSource interface {
	Acquire(ctx context.Context, sessionID string) *service.Store
}

// SessionRotator moves a live session to a new id. Session sources that
// implement it get their session ids renewed on login.
type SessionRotator interface {
	Rotate(ctx context.Context, oldID, newID string) *service.Store
}

type renewFunc func() (*service.Store, error)

// SessionConfig configures the Session middleware.
type SessionConfig struct {
	Secret   string
	TTL      time.Duration
	Secure   bool
	Sessions SessionSource
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Session resolves the browser session from the portal_session cookie or an
// Authorization bearer token. A missing, expired or tampered token starts a
// new anonymous session and sets a fresh cookie. The session's store is
// placed in the context.
func Session(cfg SessionConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, ok := sessionFromRequest(c.Request(), cfg.Secret)
			if !ok {
				sid = uuid.NewString()
				token, err := IssueToken(cfg.Secret, sid, cfg.TTL)
				if err != nil {
					return err
				}
				c.SetCookie(sessionCookie(token, cfg.TTL, cfg.Secure))
			}

			store := cfg.Sessions.Acquire(c.Request().Context(), sid)
			c.Set(sessionContextKey, store)
			c.Set(sessionIDKey, sid)
			c.Set(sessionRenewKey, renewFunc(func() (*service.Store, error) {
				return renew(c, cfg)
			}))
			return next(c)
		}
	}
}

// RenewSession moves the request's session to a fresh id and reissues its
// token, so a token known before login is worthless after it. When the
// session source cannot rotate, the current store is returned unchanged.
func RenewSession(c echo.Context) (*service.Store, error) {
	fn, ok := c.Get(sessionRenewKey).(renewFunc)
	if !ok {
		return nil, errors.New("renew session: no session in context")
	}
	return fn()
}

func renew(c echo.Context, cfg SessionConfig) (*service.Store, error) {
	current := SessionFrom(c)
	rotator, ok := cfg.Sessions.(SessionRotator)
	if !ok || current == nil {
		return current, nil
	}

	sid := uuid.NewString()
	token, err := IssueToken(cfg.Secret, sid, cfg.TTL)
	if err != nil {
		return nil, fmt.Errorf("renew session: %w", err)
	}
	store := rotator.Rotate(c.Request().Context(), current.SessionID(), sid)
	if store == nil {
		return current, nil
	}

	c.SetCookie(sessionCookie(token, cfg.TTL, cfg.Secure))
	if _, err := c.Cookie(SessionCookie); err != nil && c.Request().Header.Get(echo.HeaderAuthorization) != "" {
		c.Response().Header().Set(SessionTokenHeader, token)
	}
	c.Set(sessionContextKey, store)
	c.Set(sessionIDKey, sid)
	return store, nil
}

// SessionFrom returns the store placed in the context by Session, or nil.
func SessionFrom(c echo.Context) *service.Store {
	store, _ := c.Get(sessionContextKey).(*service.Store)
	return store
}

// IssueToken signs a session token for sid.
func IssueToken(secret, sid string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   tokenIssuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates a session token and returns its session id.
func ParseToken(secret, raw string) (string, error) {
	claims := &sessionClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return "", err
	}
	if !tkn.Valid || claims.SessionID == "" {
		return "", errors.New("session token without sid")
	}
	if _, err := uuid.Parse(claims.SessionID); err != nil {
		return "", err
	}
	return claims.SessionID, nil
}

func sessionFromRequest(r *http.Request, secret string) (string, bool) {
	raw := ""
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		raw = cookie.Value
	} else if h := r.Header.Get(echo.HeaderAuthorization); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			raw = parts[1]
		}
	}
	if raw == "" {
		return "", false
	}
	sid, err := ParseToken(secret, raw)
	if err != nil {
		return "", false
	}
	return sid, true
}

func sessionCookie(token string, ttl time.Duration, secure bool) *http.Cookie {
	cookie := &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl > 0 {
		cookie.MaxAge = int(ttl.Seconds())
	}
	return cookie
}
