package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mybankuml/banking-portal/internal/core/domain"
	"github.com/mybankuml/banking-portal/internal/core/ports"
)

// AccountHandler serves the customer's account pages.
type AccountHandler struct {
	api ports.BankAPI
	log zerolog.Logger
	now func() time.Time
}

func NewAccountHandler(api ports.BankAPI, log zerolog.Logger) *AccountHandler {
	return &AccountHandler{api: api, log: log, now: time.Now}
}

// Dashboard returns the customer's profile with a freshly loaded account list.
// A failed account load still renders the dashboard with an empty list.
//
// @Summary      Customer dashboard
// @Tags         accounts
// @Produce      json
// @Success      200  {object}  dashboardResponse
// @Failure      303  {object}  middleware.DeniedResponse
// @Router       /dashboard [get]
func (h *AccountHandler) Dashboard(c echo.Context) error {
	store, id, err := activeIdentity(c)
	if err != nil {
		return err
	}

	resp := dashboardResponse{Success: true, User: id}
	accounts, err := store.LoadAccounts(c.Request().Context(), "")
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", id.UserID).Msg("dashboard accounts not loaded")
		resp.Message = "Failed to load accounts"
	}
	resp.Accounts = nonNil(accounts)
	return c.JSON(http.StatusOK, resp)
}

// List reloads and returns the customer's accounts.
//
// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Success      200  {object}  accountsResponse
// @Failure      303  {object}  middleware.DeniedResponse
// @Failure      422  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /accounts [get]
func (h *AccountHandler) List(c echo.Context) error {
	store, _, err := activeIdentity(c)
	if err != nil {
		return err
	}
	accounts, err := store.LoadAccounts(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountsResponse{Success: true, Accounts: nonNil(accounts)})
}

// Create opens a new account for the customer and reloads the account list.
//
// @Summary      Open an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      createAccountRequest  true  "Account to open"
// @Success      201   {object}  accountResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /accounts [post]
func (h *AccountHandler) Create(c echo.Context) error {
	store, id, err := activeIdentity(c)
	if err != nil {
		return err
	}

	var req createAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	res, err := h.api.CreateAccount(ctx, ports.CreateAccountInput{
		CustomerID:     id.UserID,
		AccountID:      req.AccountID,
		AccountType:    req.AccountType,
		InitialBalance: req.InitialBalance,
		InterestRate:   req.InterestRate,
	})
	if err != nil {
		return err
	}
	if err := res.Failure(); err != nil {
		return err
	}

	accounts, err := store.LoadAccounts(ctx, "")
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", id.UserID).Msg("accounts not reloaded after create")
	}
	return c.JSON(http.StatusCreated, accountResponse{Success: true, Account: res.Account, Accounts: nonNil(accounts)})
}

// Details returns one account with its transactions. Accounts not owned by
// the caller are refused, including ones reported without an owner.
//
// @Summary      Account details
// @Tags         accounts
// @Produce      json
// @Param        accountID  path      string  true  "Account ID"
// @Success      200        {object}  accountDetailsResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Failure      422        {object}  errorResponse
// @Router       /accounts/{accountID} [get]
func (h *AccountHandler) Details(c echo.Context) error {
	_, id, err := activeIdentity(c)
	if err != nil {
		return err
	}

	res, err := h.api.GetAccountDetails(c.Request().Context(), c.Param("accountID"))
	if err != nil {
		return err
	}
	if err := res.Failure(); err != nil {
		return err
	}
	if res.Account == nil {
		return domain.ErrNotFound
	}
	if res.Account.CustomerID != id.UserID {
		return domain.ErrAuthorizationDenied
	}
	return c.JSON(http.StatusOK, accountDetailsResponse{Success: true, Account: res.Account})
}

// Statement generates a monthly statement for the selected accounts.
//
// @Summary      Generate a statement
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      statementRequest  true  "Statement period and accounts"
// @Success      200   {object}  statementResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /statements [post]
func (h *AccountHandler) Statement(c echo.Context) error {
	_, id, err := activeIdentity(c)
	if err != nil {
		return err
	}

	var req statementRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	now := h.now()
	if req.Year > now.Year() || (req.Year == now.Year() && req.Month > int(now.Month())) {
		return domain.Invalid("statement period cannot be in the future")
	}

	res, err := h.api.GenerateStatement(c.Request().Context(), ports.StatementInput{
		CustomerID: id.UserID,
		AccountIDs: req.AccountIDs,
		Year:       req.Year,
		Month:      req.Month,
	})
	if err != nil {
		return err
	}
	if err := res.Failure(); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statementResponse{Success: true, Statement: res.Statement})
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
