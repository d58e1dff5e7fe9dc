package handlers

import (
	"strconv"

	"paylink/internal/models"
	"paylink/internal/services/admin"
	"paylink/internal/utils/pagination"
	"paylink/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	service admin.Service
}

func NewAdminHandler(s admin.Service) *AdminHandler { return &AdminHandler{service: s} }

// Dashboard handles GET /admin/dashboard.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.service.Dashboard()
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "dashboard stats", stats)
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)

	users, total, err := h.service.ListUsers(p.Page, p.Limit)
	if err != nil {
		return response.DomainError(c, err)
	}

	p.Total = total
	return c.JSON(pagination.Response(p, users))
}

// FreezeUser handles POST /admin/users/:id/freeze.
func (h *AdminHandler) FreezeUser(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid user id")
	}

	if err := h.service.FreezeUser(claims.UserID, uint(userID)); err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "account frozen", nil)
}

// UnfreezeUser handles POST /admin/users/:id/unfreeze.
func (h *AdminHandler) UnfreezeUser(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid user id")
	}

	if err := h.service.UnfreezeUser(claims.UserID, uint(userID)); err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "account unfrozen", nil)
}

// ListFlagged handles GET /admin/transactions/flagged.
func (h *AdminHandler) ListFlagged(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)

	txns, total, err := h.service.ListFlagged(p.Page, p.Limit)
	if err != nil {
		return response.DomainError(c, err)
	}

	p.Total = total
	return c.JSON(pagination.Response(p, txns))
}
