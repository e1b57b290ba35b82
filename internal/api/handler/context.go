package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/mybankuml/banking-portal/internal/api/middleware"
	"github.com/mybankuml/banking-portal/internal/core/domain"
	"github.com/mybankuml/banking-portal/internal/core/service"
)

// sessionStore returns the store the Session middleware put in the context.
func sessionStore(c echo.Context) (*service.Store, error) {
	store := middleware.SessionFrom(c)
	if store == nil {
		return nil, &domain.AuthError{Message: "Please login first"}
	}
	return store, nil
}

// activeIdentity is sessionStore plus the logged-in identity. Gated routes
// never reach a handler without one, so a miss here is a 401.
func activeIdentity(c echo.Context) (*service.Store, domain.Identity, error) {
	store, err := sessionStore(c)
	if err != nil {
		return nil, domain.Identity{}, err
	}
	id, ok := store.Identity()
	if !ok {
		return nil, domain.Identity{}, &domain.AuthError{Message: "Please login first"}
	}
	return store, id, nil
}

// bindAndValidate binds the request into req and runs the validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.Invalid("invalid payload")
	}
	return c.Validate(req)
}
