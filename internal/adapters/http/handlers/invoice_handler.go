package handlers

import (
	"errors"
	"strconv"
	"time"

	"expensio/internal/adapters/http/middleware"
	"expensio/internal/adapters/persistence/repositories"
	"expensio/internal/core/domain"
	"expensio/internal/core/services"
	"expensio/internal/pkg/pagination"
	"expensio/internal/pkg/response"
	"expensio/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	invoiceService *services.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// List returns one page of the caller's invoices
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "authentication required")
	}

	var details []response.FieldError

	q := &repositories.InvoiceQuery{
		UserID: userID,
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	if raw := c.Query("clientId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id < 1 {
			details = append(details, response.FieldError{Field: "clientId", Message: "must be a positive integer"})
		} else {
			clientID := uint(id)
			q.ClientID = &clientID
		}
	}

	for name, dst := range map[string]**time.Time{
		"dateFrom": &q.DateFrom,
		"dateTo":   &q.DateTo,
	} {
		if raw := c.Query(name); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				details = append(details, response.FieldError{Field: name, Message: "must be a date in YYYY-MM-DD format"})
				continue
			}
			*dst = &parsed
		}
	}

	q.SortBy = c.Query("sortBy", "issue_date")
	if !repositories.IsInvoiceSortKey(q.SortBy) {
		details = append(details, response.FieldError{Field: "sortBy", Message: "unknown sort key"})
	}
	switch dir := c.Query("sortDirection", "desc"); dir {
	case "desc":
		q.SortDesc = true
	case "asc":
		q.SortDesc = false
	default:
		details = append(details, response.FieldError{Field: "sortDirection", Message: "must be one of: asc desc"})
	}

	if details != nil {
		return response.ValidationFailed(c, details)
	}

	params := pagination.GetParams(c)
	invoices, total, err := h.invoiceService.List(c.Context(), q, params.Offset, params.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.BadRequest(c, "invalid query parameters")
		}
		return response.InternalServerError(c, "failed to list invoices")
	}

	return response.List(c, invoices, params, total)
}

// GetByID returns one invoice
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "authentication required")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "invalid invoice id")
	}

	invoice, err := h.invoiceService.Get(c.Context(), userID, uint(id))
	if err != nil {
		return invoiceError(c, err)
	}

	return response.OK(c, invoice)
}

// Create creates a new draft invoice
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "authentication required")
	}

	var input services.InvoiceInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if details := validation.Struct(&input); details != nil {
		return response.ValidationFailed(c, details)
	}

	invoice, err := h.invoiceService.Create(c.Context(), userID, &input)
	if err != nil {
		return invoiceError(c, err)
	}

	return response.Created(c, invoice)
}

// UpdateStatusRequest represents a status transition request body
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft sent paid overdue"`
}

// UpdateStatus transitions an invoice status
func (h *InvoiceHandler) UpdateStatus(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "authentication required")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "invalid invoice id")
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if details := validation.Struct(&req); details != nil {
		return response.ValidationFailed(c, details)
	}

	invoice, err := h.invoiceService.UpdateStatus(c.Context(), userID, uint(id), req.Status)
	if err != nil {
		return invoiceError(c, err)
	}

	return response.OK(c, invoice)
}

// Delete deletes an invoice
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "authentication required")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "invalid invoice id")
	}

	if err := h.invoiceService.Delete(c.Context(), userID, uint(id)); err != nil {
		return invoiceError(c, err)
	}

	return response.OK(c, fiber.Map{"success": true})
}

// invoiceError maps service errors to HTTP responses
func invoiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvoiceNotFound):
		return response.NotFound(c, "invoice not found")
	case errors.Is(err, services.ErrClientNotFound):
		return response.NotFound(c, "client not found")
	case errors.Is(err, services.ErrInvalidInvoiceStatus):
		return response.BadRequest(c, "invalid invoice status")
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "you do not own this invoice")
	default:
		return response.InternalServerError(c, "invoice operation failed")
	}
}
