package handlers

import (
	"paylink/internal/models"
	"paylink/internal/services/wallet"
	"paylink/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	service wallet.Service
}

func NewWalletHandler(s wallet.Service) *WalletHandler { return &WalletHandler{service: s} }

// GetWallet handles GET /wallet.
func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	view, err := h.service.GetWallet(c.Context(), claims.UserID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "wallet retrieved", view)
}
