package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mybankuml/banking-portal/internal/api/metrics"
	"github.com/mybankuml/banking-portal/internal/core/domain"
)

// DeniedResponse is the body sent with a gate redirect.
type DeniedResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
}

// Gate admits only sessions whose role flags satisfy the family's rule.
// Refused requests get a 303 to the rule's redirect target; the session is
// left untouched.
func Gate(family domain.PageFamily) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			store := SessionFrom(c)

			var flags domain.RoleFlags
			if store != nil {
				flags = store.Flags()
			}

			decision := domain.Authorize(family, flags)
			if decision.Allowed {
				return next(c)
			}

			metrics.AccessDeniedTotal.
				WithLabelValues(family.String(), strconv.FormatBool(flags.IsAuthenticated)).
				Inc()
			if store != nil {
				store.Record(domain.ActionAccessDenied, family.String()+" "+c.Request().URL.Path)
			}

			c.Response().Header().Set(echo.HeaderLocation, decision.Redirect)
			return c.JSON(http.StatusSeeOther, DeniedResponse{
				Success:  false,
				Message:  decision.Message,
				Redirect: decision.Redirect,
			})
		}
	}
}
