package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mybankuml/banking-portal/internal/core/domain"
	"github.com/mybankuml/banking-portal/internal/core/ports"
)

// BankerHandler serves the banker pages.
type BankerHandler struct {
	api ports.BankAPI
	log zerolog.Logger
}

func NewBankerHandler(api ports.BankAPI, log zerolog.Logger) *BankerHandler {
	return &BankerHandler{api: api, log: log}
}

// SearchCustomers finds customers by any combination of criteria.
//
// @Summary      Search customers
// @Tags         banker
// @Produce      json
// @Param        name           query     string  false  "Name"
// @Param        accountNumber  query     string  false  "Account number"
// @Param        phoneNumber    query     string  false  "Phone number"
// @Param        userType       query     string  false  "User type"
// @Success      200            {object}  usersResponse
// @Failure      409            {object}  errorResponse
// @Failure      422            {object}  errorResponse
// @Router       /banker/customers [get]
func (h *BankerHandler) SearchCustomers(c echo.Context) error {
	store, _, err := activeIdentity(c)
	if err != nil {
		return err
	}
	users, err := runSearch(c, store, h.api.SearchCustomers)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, usersResponse{Success: true, Users: users})
}

// CustomerDetails returns a customer with accounts and transactions.
//
// @Summary      Customer details
// @Tags         banker
// @Produce      json
// @Param        customerID  path      string  true  "Customer ID"
// @Success      200         {object}  customerDetailsResponse
// @Failure      404         {object}  errorResponse
// @Failure      422         {object}  errorResponse
// @Router       /banker/customers/{customerID} [get]
func (h *BankerHandler) CustomerDetails(c echo.Context) error {
	res, err := h.api.GetCustomerDetails(c.Request().Context(), c.Param("customerID"))
	if err != nil {
		return err
	}
	if err := res.Failure(); err != nil {
		return err
	}
	if res.Customer == nil {
		return domain.ErrNotFound
	}
	return c.JSON(http.StatusOK, customerDetailsResponse{Success: true, Customer: res.Customer})
}

// Transactions lists transactions, optionally for one customer.
//
// @Summary      List transactions
// @Tags         banker
// @Produce      json
// @Param        customerID  query     string  false  "Customer filter"
// @Success      200         {object}  transactionsResponse
// @Failure      422         {object}  errorResponse
// @Router       /banker/transactions [get]
func (h *BankerHandler) Transactions(c echo.Context) error {
	res, err := h.api.ListTransactions(c.Request().Context(), c.QueryParam("customerID"))
	if err != nil {
		return err
	}
	if err := res.Failure(); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transactionsResponse{Success: true, Transactions: nonNil(res.Transactions)})
}

// Reverse validates a reversal request. The backend has no reversal
// operation, so a valid request is answered with 501.
//
// @Summary      Reverse a transaction
// @Tags         banker
// @Accept       json
// @Produce      json
// @Param        body  body      reversalRequest  true  "Reversal"
// @Failure      400   {object}  errorResponse
// @Failure      501   {object}  errorResponse
// @Router       /banker/reversals [post]
func (h *BankerHandler) Reverse(c echo.Context) error {
	var req reversalRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	h.log.Info().Str("transaction_id", req.TransactionID).Msg("reversal requested but not supported by backend")
	return domain.ErrNotImplemented
}

// Branch would report branch metrics; the backend exposes none.
//
// @Summary      Branch metrics
// @Tags         banker
// @Produce      json
// @Failure      501  {object}  errorResponse
// @Router       /banker/branch [get]
func (h *BankerHandler) Branch(c echo.Context) error {
	return domain.ErrNotImplemented
}
