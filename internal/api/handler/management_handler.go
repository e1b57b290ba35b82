package handler

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mybankuml/banking-portal/internal/core/ports"
)

// ManagementHandler serves the combined admin and bank manager dashboard.
type ManagementHandler struct {
	api ports.BankAPI
	log zerolog.Logger
}

func NewManagementHandler(api ports.BankAPI, log zerolog.Logger) *ManagementHandler {
	return &ManagementHandler{api: api, log: log}
}

// Dashboard loads, in parallel, the panels the caller's role can see: user
// statistics for admins and the pending loan queue for bank managers. A
// failed panel is reported as a warning and does not fail the page.
//
// @Summary      Management dashboard
// @Tags         management
// @Produce      json
// @Success      200  {object}  managementResponse
// @Failure      303  {object}  middleware.DeniedResponse
// @Router       /dash [get]
func (h *ManagementHandler) Dashboard(c echo.Context) error {
	store, id, err := activeIdentity(c)
	if err != nil {
		return err
	}
	flags := store.Flags()
	resp := managementResponse{Success: true, User: id, Flags: flags}

	var (
		mu       sync.Mutex
		warnings []string
	)
	warn := func(panel string, err error) {
		h.log.Warn().Err(err).Str("panel", panel).Str("user_id", id.UserID).Msg("dashboard panel not loaded")
		mu.Lock()
		warnings = append(warnings, "Failed to load "+panel)
		mu.Unlock()
	}

	g, ctx := errgroup.WithContext(c.Request().Context())
	if flags.IsAdmin {
		g.Go(func() error {
			res, err := h.api.AdminStats(ctx)
			if err == nil {
				err = res.Failure()
			}
			if err != nil {
				warn("statistics", err)
				return nil
			}
			total := res.TotalUsers
			resp.TotalUsers = &total
			return nil
		})
	}
	if flags.IsBankManager {
		g.Go(func() error {
			res, err := h.api.PendingLoans(ctx)
			if err == nil {
				err = res.Failure()
			}
			if err != nil {
				warn("pending loans", err)
				return nil
			}
			resp.PendingLoans = nonNil(res.Loans)
			return nil
		})
	}
	_ = g.Wait()

	resp.Warnings = warnings
	return c.JSON(http.StatusOK, resp)
}
