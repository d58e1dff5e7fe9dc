// Package handlers contains the Fiber HTTP handlers. They parse and
// sanity-check requests, delegate to the services and shape responses;
// business rules live below them.
package handlers

import (
	"paylink/internal/models"
	"paylink/internal/services/auth"
	"paylink/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	service auth.Service
}

func NewAuthHandler(s auth.Service) *AuthHandler { return &AuthHandler{service: s} }

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	result, err := h.service.Register(auth.RegisterRequest{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Created(c, "registration successful", fiber.Map{
		"user":          userView(result.User),
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Identifier string `json:"identifier"` // UPI handle, phone or email
		Password   string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	result, err := h.service.Login(req.Identifier, req.Password, c.IP())
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "login successful", fiber.Map{
		"user":          userView(result.User),
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
	})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	access, refresh, err := h.service.RefreshTokens(req.RefreshToken)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "tokens refreshed", fiber.Map{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (h *AuthHandler) SetUpiPin(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	var req struct {
		Password string `json:"password"`
		Pin      string `json:"pin"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if err := h.service.SetUpiPin(claims.UserID, req.Password, req.Pin); err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "UPI PIN set", nil)
}

func userView(u *models.User) fiber.Map {
	return fiber.Map{
		"id":        u.ID,
		"full_name": u.FullName,
		"email":     u.Email,
		"phone":     u.Phone,
		"upi_id":    u.UpiID,
		"role":      u.Role,
		"status":    u.Status,
	}
}
