package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mybankuml/banking-portal/internal/core/domain"
	"github.com/mybankuml/banking-portal/internal/core/ports"
)

// AdminHandler serves user administration.
type AdminHandler struct {
	api ports.BankAPI
	log zerolog.Logger
}

func NewAdminHandler(api ports.BankAPI, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{api: api, log: log}
}

// Stats returns portal-wide statistics.
//
// @Summary      Admin statistics
// @Tags         admin
// @Produce      json
// @Success      200  {object}  statsResponse
// @Router       /admin/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	res, err := h.api.AdminStats(c.Request().Context())
	if err != nil {
		return err
	}
	if err := res.Failure(); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statsResponse{Success: true, TotalUsers: res.TotalUsers})
}

// SearchUsers finds users by any combination of criteria.
//
// @Summary      Search users
// @Tags         admin
// @Produce      json
// @Param        name           query     string  false  "Name"
// @Param        accountNumber  query     string  false  "Account number"
// @Param        phoneNumber    query     string  false  "Phone number"
// @Param        userType       query     string  false  "User type"
// @Success      200            {object}  usersResponse
// @Failure      409            {object}  errorResponse
// @Router       /admin/users [get]
func (h *AdminHandler) SearchUsers(c echo.Context) error {
	store, _, err := activeIdentity(c)
	if err != nil {
		return err
	}
	users, err := runSearch(c, store, h.api.SearchUsers)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, usersResponse{Success: true, Users: users})
}

// UserDetails returns a user with accounts and loan count.
//
// @Summary      User details
// @Tags         admin
// @Produce      json
// @Param        userID  path      string  true  "User ID"
// @Success      200     {object}  userDetailsResponse
// @Failure      404     {object}  errorResponse
// @Router       /admin/users/{userID} [get]
func (h *AdminHandler) UserDetails(c echo.Context) error {
	res, err := h.api.GetUserDetails(c.Request().Context(), c.Param("userID"))
	if err != nil {
		return err
	}
	if err := res.Failure(); err != nil {
		return err
	}
	if res.User == nil {
		return domain.ErrNotFound
	}
	return c.JSON(http.StatusOK, userDetailsResponse{Success: true, User: res.User})
}

// AssignRole changes a user's role.
//
// @Summary      Assign a role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        userID  path      string             true  "User ID"
// @Param        body    body      assignRoleRequest  true  "New role"
// @Success      200     {object}  messageResponse
// @Failure      400     {object}  errorResponse
// @Failure      422     {object}  errorResponse
// @Router       /admin/users/{userID}/role [post]
func (h *AdminHandler) AssignRole(c echo.Context) error {
	store, _, err := activeIdentity(c)
	if err != nil {
		return err
	}

	var req assignRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return domain.Invalid("role must be one of: customer banker bank_manager admin")
	}

	userID := c.Param("userID")
	res, err := h.api.AssignRole(c.Request().Context(), userID, role.String())
	if err != nil {
		return err
	}
	if err := res.Failure(); err != nil {
		return err
	}

	store.Record(domain.ActionRoleAssigned, userID+" -> "+role.String())
	msg := res.Message
	if msg == "" {
		msg = "Role updated"
	}
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: msg})
}
