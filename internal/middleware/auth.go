package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"monstager/internal/auth"
)

// RequireAuth admits requests carrying a valid Bearer access token and stores
// the resolved account identity in locals. Refresh tokens are rejected here:
// they only work at the refresh endpoint.
func RequireAuth(issuer *auth.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "No token provided",
				"success": false,
				"status":  fiber.StatusUnauthorized,
			})
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid token format",
				"success": false,
				"status":  fiber.StatusUnauthorized,
			})
		}
		accountID, err := issuer.VerifyAccessToken(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"success": false,
				"status":  fiber.StatusUnauthorized,
			})
		}
		c.Locals("accountID", accountID)
		return c.Next()
	}
}
