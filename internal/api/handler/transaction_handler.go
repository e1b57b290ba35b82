package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mybankuml/banking-portal/internal/core/domain"
	"github.com/mybankuml/banking-portal/internal/core/ports"
	"github.com/mybankuml/banking-portal/internal/core/service"
)

// HeaderIdempotencyKey lets a client mark retries of the same submission.
const HeaderIdempotencyKey = "Idempotency-Key"

// SubmissionGuard refuses repeated submissions of the same idempotency key.
type SubmissionGuard interface {
	Claim(ctx context.Context, sessionID, key string) (bool, error)
	Forget(ctx context.Context, sessionID, key string) error
}

// TransactionHandler serves funds movements and the receipt page.
type TransactionHandler struct {
	api      ports.BankAPI
	guard    SubmissionGuard
	notifier ports.Notifier
	log      zerolog.Logger
}

// NewTransactionHandler creates a TransactionHandler. guard and notifier may
// be nil.
func NewTransactionHandler(api ports.BankAPI, guard SubmissionGuard, notifier ports.Notifier, log zerolog.Logger) *TransactionHandler {
	return &TransactionHandler{api: api, guard: guard, notifier: notifier, log: log}
}

// Transfer moves funds between two of the customer's accounts. On success the
// receipt is kept for the receipt page and balances are re-fetched.
//
// @Summary      Transfer between own accounts
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string           false  "Client submission key"
// @Param        body             body      transferRequest  true   "Transfer"
// @Success      200              {object}  receiptResponse
// @Failure      400              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Failure      502              {object}  errorResponse
// @Router       /transfer [post]
func (h *TransactionHandler) Transfer(c echo.Context) error {
	store, id, err := activeIdentity(c)
	if err != nil {
		return err
	}

	var req transferRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	release, err := h.claim(ctx, store.SessionID(), c.Request().Header.Get(HeaderIdempotencyKey))
	if err != nil {
		return err
	}

	res, err := h.api.Transfer(ctx, ports.TransferInput{
		CustomerID:           id.UserID,
		SourceAccountID:      req.SourceAccountID,
		DestinationAccountID: req.DestinationAccountID,
		Amount:               req.Amount,
	})
	if err != nil {
		release()
		return err
	}
	if err := res.Failure(); err != nil {
		release()
		return err
	}

	store.Record(domain.ActionTransfer, fmt.Sprintf("%s -> %s %.2f", req.SourceAccountID, req.DestinationAccountID, req.Amount))
	return c.JSON(http.StatusOK, h.complete(ctx, store, res.Receipt))
}

// ETransfer sends funds to an external recipient and publishes a
// notification for them.
//
// @Summary      Send an e-transfer
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string            false  "Client submission key"
// @Param        body             body      etransferRequest  true   "E-transfer"
// @Success      200              {object}  receiptResponse
// @Failure      400              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Failure      502              {object}  errorResponse
// @Router       /etransfer [post]
func (h *TransactionHandler) ETransfer(c echo.Context) error {
	store, id, err := activeIdentity(c)
	if err != nil {
		return err
	}

	var req etransferRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	release, err := h.claim(ctx, store.SessionID(), c.Request().Header.Get(HeaderIdempotencyKey))
	if err != nil {
		return err
	}

	res, err := h.api.ETransfer(ctx, ports.ETransferInput{
		CustomerID:         id.UserID,
		SourceAccountID:    req.SourceAccountID,
		RecipientEmail:     req.RecipientEmail,
		RecipientName:      req.RecipientName,
		RecipientPhone:     req.RecipientPhone,
		Amount:             req.Amount,
		NotificationMethod: req.NotificationMethod,
	})
	if err != nil {
		release()
		return err
	}
	if err := res.Failure(); err != nil {
		release()
		return err
	}

	store.Record(domain.ActionETransfer, fmt.Sprintf("%s -> %s %.2f", req.SourceAccountID, req.RecipientEmail, req.Amount))
	resp := h.complete(ctx, store, res.Receipt)

	if h.notifier != nil && res.Receipt != nil {
		notice := ports.ETransferNotice{
			ReferenceNumber: res.Receipt.ReferenceNumber,
			CustomerID:      id.UserID,
			RecipientName:   req.RecipientName,
			RecipientEmail:  req.RecipientEmail,
			RecipientPhone:  req.RecipientPhone,
			Method:          req.NotificationMethod,
			Amount:          req.Amount,
			IssuedAt:        time.Now().UTC(),
		}
		if err := h.notifier.NotifyETransfer(ctx, notice); err != nil {
			h.log.Error().Err(err).Str("reference", notice.ReferenceNumber).Msg("etransfer sent but recipient not notified")
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// Receipt returns the receipt of the last completed funds movement.
//
// @Summary      Last receipt
// @Tags         transactions
// @Produce      json
// @Success      200  {object}  receiptResponse
// @Failure      404  {object}  errorResponse
// @Router       /receipt [get]
func (h *TransactionHandler) Receipt(c echo.Context) error {
	store, _, err := activeIdentity(c)
	if err != nil {
		return err
	}
	r, err := store.LastReceipt(c.Request().Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "No receipt available")
		}
		return err
	}
	return c.JSON(http.StatusOK, receiptResponse{Success: true, Receipt: &r, Accounts: store.Accounts()})
}

// claim applies the submission guard when the client sent a key. The returned
// func releases the key again; it is called when the backend did not take
// the submission so the client may retry with the same key.
func (h *TransactionHandler) claim(ctx context.Context, sessionID, key string) (func(), error) {
	key = strings.TrimSpace(key)
	if h.guard == nil || key == "" {
		return func() {}, nil
	}

	ok, err := h.guard.Claim(ctx, sessionID, key)
	if err != nil {
		h.log.Warn().Err(err).Msg("submission guard unavailable, continuing unguarded")
		return func() {}, nil
	}
	if !ok {
		return nil, domain.ErrDuplicateSubmission
	}
	return func() {
		if err := h.guard.Forget(ctx, sessionID, key); err != nil {
			h.log.Warn().Err(err).Msg("submission key not released")
		}
	}, nil
}

// complete stores the receipt and re-fetches balances.
func (h *TransactionHandler) complete(ctx context.Context, store *service.Store, receipt *domain.Receipt) receiptResponse {
	if receipt != nil {
		if err := store.SaveReceipt(ctx, *receipt); err != nil {
			h.log.Error().Err(err).Str("reference", receipt.ReferenceNumber).Msg("receipt not saved")
		}
	}
	accounts, err := store.LoadAccounts(ctx, "")
	if err != nil {
		h.log.Warn().Err(err).Msg("balances not refreshed after funds movement")
	}
	return receiptResponse{Success: true, Receipt: receipt, Accounts: nonNil(accounts)}
}
