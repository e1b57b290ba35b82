package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/mybankuml/banking-portal/internal/core/domain"
	"github.com/mybankuml/banking-portal/internal/core/ports"
	"github.com/mybankuml/banking-portal/internal/core/service"
)

type searchFunc func(ctx context.Context, criteria ports.UserSearch) (*ports.UsersResult, error)

// runSearch executes a user search for the session. Empty criteria return an
// empty result without calling the backend. A search overtaken by a newer one
// from the same session fails with domain.ErrSuperseded.
func runSearch(c echo.Context, store *service.Store, search searchFunc) ([]domain.UserSummary, error) {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return nil, domain.Invalid("invalid search criteria")
	}
	criteria := ports.UserSearch{
		Name:          req.Name,
		AccountNumber: req.AccountNumber,
		PhoneNumber:   req.PhoneNumber,
		UserType:      req.UserType,
	}.Normalize()

	latest := store.Searches()
	seq := latest.Begin()

	if criteria.IsEmpty() {
		latest.Commit(seq, []domain.UserSummary{})
		return []domain.UserSummary{}, nil
	}

	res, err := search(c.Request().Context(), criteria)
	if err != nil {
		latest.Commit(seq, nil)
		return nil, err
	}
	if err := res.Failure(); err != nil {
		latest.Commit(seq, nil)
		return nil, err
	}

	users := nonNil(res.Users)
	if !latest.Commit(seq, users) {
		return nil, domain.ErrSuperseded
	}
	return users, nil
}
