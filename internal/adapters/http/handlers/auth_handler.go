package handlers

import (
	"errors"
	"time"

	"expensio/internal/adapters/http/middleware"
	"expensio/internal/config"
	"expensio/internal/core/domain"
	"expensio/internal/core/services"
	"expensio/internal/pkg/response"
	"expensio/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// Register handles user registration
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if details := validation.Struct(&input); details != nil {
		return response.ValidationFailed(c, details)
	}

	user, err := h.authService.Register(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserAlreadyExists):
			return response.Conflict(c, "email already registered")
		default:
			return response.InternalServerError(c, "failed to register user")
		}
	}

	return response.Created(c, fiber.Map{
		"success": true,
		"user":    user,
	})
}

// Login authenticates a user and sets the session cookie. Credential failures
// are reported with one identical message whichever part was wrong.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input services.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if details := validation.Struct(&input); details != nil {
		return response.ValidationFailed(c, details)
	}

	result, err := h.authService.Login(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			return response.Unauthorized(c, "invalid email or password")
		case errors.Is(err, domain.ErrMissingSecret):
			return response.InternalServerError(c, "server is misconfigured")
		default:
			return response.InternalServerError(c, "failed to login")
		}
	}

	h.setSessionCookie(c, result.SignedToken, result.ExpiresAt)

	return response.OK(c, fiber.Map{
		"success": true,
		"user":    result.User,
	})
}

// Logout deletes the backing session and clears the cookie. The cookie is
// cleared even when the session row is already gone or the delete fails.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.authService.Logout(c.Context(), c.Cookies(middleware.SessionCookie))

	h.clearSessionCookie(c)

	return response.OK(c, fiber.Map{"success": true})
}

// Me returns the current user info
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "authentication required")
	}

	user, err := h.authService.GetUserByID(c.Context(), userID)
	if err != nil {
		return response.NotFound(c, "user not found")
	}

	return response.OK(c, fiber.Map{"user": user.ToResponse()})
}

// setSessionCookie sets the session cookie; its expiry mirrors the session row's.
func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, signedToken string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    signedToken,
		Path:     "/",
		Expires:  expiresAt,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}

// clearSessionCookie clears the session cookie
func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-1 * time.Hour),
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}
