package handlers

import (
	"strconv"

	"paylink/internal/models"
	"paylink/internal/services/bankaccount"
	"paylink/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type BankAccountHandler struct {
	service bankaccount.Service
}

func NewBankAccountHandler(s bankaccount.Service) *BankAccountHandler {
	return &BankAccountHandler{service: s}
}

// Link handles POST /bank-accounts.
func (h *BankAccountHandler) Link(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	var req struct {
		BankName          string `json:"bank_name"`
		AccountNumber     string `json:"account_number"`
		IfscCode          string `json:"ifsc_code"`
		AccountHolderName string `json:"account_holder_name"`
		IsPrimary         bool   `json:"is_primary"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	view, err := h.service.Link(bankaccount.LinkRequest{
		UserID:            claims.UserID,
		BankName:          req.BankName,
		AccountNumber:     req.AccountNumber,
		IfscCode:          req.IfscCode,
		AccountHolderName: req.AccountHolderName,
		IsPrimary:         req.IsPrimary,
	})
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Created(c, "bank account linked", view)
}

// List handles GET /bank-accounts.
func (h *BankAccountHandler) List(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	views, err := h.service.List(claims.UserID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "bank accounts retrieved", views)
}

// Remove handles DELETE /bank-accounts/:id.
func (h *BankAccountHandler) Remove(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	accountID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid account id")
	}

	if err := h.service.Remove(claims.UserID, uint(accountID)); err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "bank account removed", nil)
}
