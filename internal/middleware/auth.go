// Package middleware provides the Fiber request middleware: JWT
// authentication and the admin role guard.
package middleware

import (
	"log"
	"strings"

	"paylink/internal/models"
	"paylink/internal/repositories"
	"paylink/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates the Bearer token and loads its claims into the
// request context. Tokens carry a version number; bumping the user's stored
// version invalidates every outstanding token at once.
type AuthMiddleware struct {
	users repositories.UserRepository
}

func NewAuthMiddleware(users repositories.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{users: users}
}

func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return unauthorized(c, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return unauthorized(c, "invalid authorization format")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	claims, err := utils.ParseToken(tokenString)
	if err != nil {
		return unauthorized(c, "invalid or expired token")
	}

	user, err := m.users.GetByID(claims.UserID)
	if err != nil {
		log.Printf("user %d from token not found", claims.UserID)
		return unauthorized(c, "invalid token")
	}
	if user.TokenVersion != claims.TokenVersion {
		return unauthorized(c, "session expired")
	}
	if user.Status != models.AccountStatusActive {
		return unauthorized(c, "account is not active")
	}

	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)
	return c.Next()
}

// AdminOnly rejects requests whose claims do not carry the admin role.
// Must run after AuthMiddleware.
func AdminOnly(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return unauthorized(c, "invalid claims")
	}
	if !claims.IsAdmin() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin access required"})
	}
	return c.Next()
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": message})
}
