package handlers

import (
	"paylink/internal/models"
	"paylink/internal/services/transaction"
	"paylink/internal/utils/pagination"
	"paylink/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type TransactionHandler struct {
	service transaction.Service
}

func NewTransactionHandler(s transaction.Service) *TransactionHandler {
	return &TransactionHandler{service: s}
}

// Transfer handles POST /transactions/transfer.
func (h *TransactionHandler) Transfer(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	var req struct {
		ReceiverIdentifier string `json:"receiver_identifier"`
		Amount             string `json:"amount"`
		Pin                string `json:"pin"`
		IdempotencyKey     string `json:"idempotency_key"`
		Description        string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return response.BadRequest(c, "invalid amount")
	}

	view, err := h.service.Transfer(c.Context(), transaction.TransferRequest{
		SenderID:           claims.UserID,
		ReceiverIdentifier: req.ReceiverIdentifier,
		Amount:             amount,
		Pin:                req.Pin,
		IdempotencyKey:     req.IdempotencyKey,
		Description:        req.Description,
		ClientIP:           c.IP(),
	})
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Created(c, "transfer completed", view)
}

// Deposit handles POST /transactions/deposit.
func (h *TransactionHandler) Deposit(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	var req struct {
		BankAccountID  uint   `json:"bank_account_id"`
		Amount         string `json:"amount"`
		IdempotencyKey string `json:"idempotency_key"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return response.BadRequest(c, "invalid amount")
	}

	view, err := h.service.Deposit(c.Context(), transaction.DepositRequest{
		UserID:         claims.UserID,
		BankAccountID:  req.BankAccountID,
		Amount:         amount,
		IdempotencyKey: req.IdempotencyKey,
		ClientIP:       c.IP(),
	})
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Created(c, "deposit completed", view)
}

// History handles GET /transactions.
func (h *TransactionHandler) History(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	p := pagination.ParseFromRequest(c)

	page, err := h.service.GetHistory(c.Context(), claims.UserID, p.Page, p.Limit)
	if err != nil {
		return response.DomainError(c, err)
	}
	return c.JSON(page)
}

// GetByReference handles GET /transactions/:reference.
func (h *TransactionHandler) GetByReference(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	reference := c.Params("reference")

	view, err := h.service.GetByReference(c.Context(), reference, claims.UserID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "transaction found", view)
}
