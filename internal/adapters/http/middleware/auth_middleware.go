package middleware

import (
	"errors"

	"expensio/internal/core/domain"
	"expensio/internal/core/services"
	"expensio/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the single session cookie this API issues.
const SessionCookie = "session_token"

// AuthMiddleware re-verifies the session on every protected request: cookie →
// signature/expiry → backing session row. Any negative outcome is a uniform
// 401 JSON body; this API never redirects.
func AuthMiddleware(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := authService.Verify(c.Context(), c.Cookies(SessionCookie))
		if err != nil {
			if errors.Is(err, domain.ErrMissingSecret) {
				return response.InternalServerError(c, "server is misconfigured")
			}
			return response.InternalServerError(c, "failed to verify session")
		}
		if identity == nil {
			return response.Unauthorized(c, "authentication required")
		}

		c.Locals("userID", identity.UserID)
		c.Locals("email", identity.Email)
		c.Locals("sessionToken", identity.SessionToken)
		c.Locals("role", identity.Role)

		return c.Next()
	}
}

// UserID returns the authenticated user id set by AuthMiddleware
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok
}
