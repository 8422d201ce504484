package handlers

import (
	"errors"

	"expensio/internal/adapters/http/middleware"
	"expensio/internal/adapters/persistence/repositories"
	"expensio/internal/core/domain"
	"expensio/internal/core/services"
	"expensio/internal/pkg/pagination"
	"expensio/internal/pkg/response"
	"expensio/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// ClientHandler handles client endpoints
type ClientHandler struct {
	clientService *services.ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *services.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// List returns one page of the caller's clients
func (h *ClientHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "authentication required")
	}

	q := &repositories.ClientQuery{
		UserID:  userID,
		Name:    c.Query("name"),
		Email:   c.Query("email"),
		Company: c.Query("company"),
		Search:  c.Query("search"),
		SortBy:  c.Query("sortBy", "created_at"),
	}
	if !repositories.IsClientSortKey(q.SortBy) {
		return response.ValidationFailed(c, []response.FieldError{
			{Field: "sortBy", Message: "unknown sort key"},
		})
	}
	switch dir := c.Query("sortDirection", "desc"); dir {
	case "desc":
		q.SortDesc = true
	case "asc":
		q.SortDesc = false
	default:
		return response.ValidationFailed(c, []response.FieldError{
			{Field: "sortDirection", Message: "must be one of: asc desc"},
		})
	}

	params := pagination.GetParams(c)
	clients, total, err := h.clientService.List(c.Context(), q, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "failed to list clients")
	}

	return response.List(c, clients, params, total)
}

// GetByID returns one client
func (h *ClientHandler) GetByID(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "authentication required")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "invalid client id")
	}

	client, err := h.clientService.Get(c.Context(), userID, uint(id))
	if err != nil {
		return clientError(c, err)
	}

	return response.OK(c, client)
}

// Create creates a new client
func (h *ClientHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "authentication required")
	}

	var input services.ClientInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if details := validation.Struct(&input); details != nil {
		return response.ValidationFailed(c, details)
	}

	client, err := h.clientService.Create(c.Context(), userID, &input)
	if err != nil {
		return clientError(c, err)
	}

	return response.Created(c, client)
}

// Update updates a client
func (h *ClientHandler) Update(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "authentication required")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "invalid client id")
	}

	var input services.ClientInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if details := validation.Struct(&input); details != nil {
		return response.ValidationFailed(c, details)
	}

	client, err := h.clientService.Update(c.Context(), userID, uint(id), &input)
	if err != nil {
		return clientError(c, err)
	}

	return response.OK(c, client)
}

// Delete deletes a client
func (h *ClientHandler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "authentication required")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "invalid client id")
	}

	if err := h.clientService.Delete(c.Context(), userID, uint(id)); err != nil {
		return clientError(c, err)
	}

	return response.OK(c, fiber.Map{"success": true})
}

// clientError maps service errors to HTTP responses
func clientError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrClientNotFound):
		return response.NotFound(c, "client not found")
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "you do not own this client")
	case errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, "invalid query parameters")
	default:
		return response.InternalServerError(c, "client operation failed")
	}
}
