package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mybankuml/banking-portal/internal/core/domain"
	"github.com/mybankuml/banking-portal/internal/core/ports"
)

// LoanHandler serves loan applications and the manager's review queue.
type LoanHandler struct {
	api ports.BankAPI
	log zerolog.Logger
}

func NewLoanHandler(api ports.BankAPI, log zerolog.Logger) *LoanHandler {
	return &LoanHandler{api: api, log: log}
}

// Request submits a loan application for the customer.
//
// @Summary      Apply for a loan
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        body  body      loanRequest  true  "Loan application"
// @Success      201   {object}  loanResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /loans [post]
func (h *LoanHandler) Request(c echo.Context) error {
	_, id, err := activeIdentity(c)
	if err != nil {
		return err
	}

	var req loanRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.api.RequestLoan(c.Request().Context(), ports.LoanInput{
		CustomerID:    id.UserID,
		Amount:        req.Amount,
		Purpose:       req.Purpose,
		ProofOfIncome: req.ProofOfIncome,
	})
	if err != nil {
		return err
	}
	if err := res.Failure(); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, loanResponse{Success: true, LoanRequest: res.LoanRequest})
}

// Pending lists loan applications awaiting a decision.
//
// @Summary      Pending loans
// @Tags         loans
// @Produce      json
// @Success      200  {object}  loansResponse
// @Failure      303  {object}  middleware.DeniedResponse
// @Router       /loans/pending [get]
func (h *LoanHandler) Pending(c echo.Context) error {
	res, err := h.api.PendingLoans(c.Request().Context())
	if err != nil {
		return err
	}
	if err := res.Failure(); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loansResponse{Success: true, Loans: nonNil(res.Loans)})
}

// Approve approves a pending loan on behalf of the logged-in manager.
//
// @Summary      Approve a loan
// @Tags         loans
// @Produce      json
// @Param        loanID  path      string  true  "Loan ID"
// @Success      200     {object}  messageResponse
// @Failure      422     {object}  errorResponse
// @Router       /loans/{loanID}/approve [post]
func (h *LoanHandler) Approve(c echo.Context) error {
	return h.decide(c, true)
}

// Reject rejects a pending loan on behalf of the logged-in manager.
//
// @Summary      Reject a loan
// @Tags         loans
// @Produce      json
// @Param        loanID  path      string  true  "Loan ID"
// @Success      200     {object}  messageResponse
// @Failure      422     {object}  errorResponse
// @Router       /loans/{loanID}/reject [post]
func (h *LoanHandler) Reject(c echo.Context) error {
	return h.decide(c, false)
}

func (h *LoanHandler) decide(c echo.Context, approve bool) error {
	store, id, err := activeIdentity(c)
	if err != nil {
		return err
	}
	loanID := c.Param("loanID")
	if loanID == "" {
		return domain.Invalid("loanID is required")
	}

	decision, call := "rejected", h.api.RejectLoan
	if approve {
		decision, call = "approved", h.api.ApproveLoan
	}

	res, err := call(c.Request().Context(), loanID, id.UserID)
	if err != nil {
		return err
	}
	if err := res.Failure(); err != nil {
		return err
	}

	store.Record(domain.ActionLoanDecision, loanID+" "+decision)
	msg := res.Message
	if msg == "" {
		msg = "Loan " + decision
	}
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: msg})
}
