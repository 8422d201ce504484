package handlers

import (
	"context"
	"errors"
	"fmt"
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

// TransactionHandler handles transaction endpoints
type TransactionHandler struct {
	transactionService *services.TransactionService
	exportService      *services.ExportService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(
	transactionService *services.TransactionService,
	exportService *services.ExportService,
) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		exportService:      exportService,
	}
}

// parseQuery builds the transaction filter set from request parameters.
// Everything is parsed and range-validated here; a malformed shape fails
// closed with field details before any query executes.
func parseQuery(c *fiber.Ctx, userID uint) (*repositories.TransactionQuery, []response.FieldError) {
	var details []response.FieldError

	q := &repositories.TransactionQuery{
		UserID:            userID,
		Category:          c.Query("category"),
		PaymentMethod:     c.Query("paymentMethod"),
		TransactionNumber: c.Query("transactionNumber"),
		Search:            c.Query("search"),
	}

	if t := c.Query("type"); t != "" {
		if t != "income" && t != "expense" {
			details = append(details, response.FieldError{Field: "type", Message: "must be one of: income expense"})
		}
		q.Type = t
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

	for name, dst := range map[string]**float64{
		"amountMin": &q.AmountMin,
		"amountMax": &q.AmountMax,
	} {
		if raw := c.Query(name); raw != "" {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil || parsed < 0 {
				details = append(details, response.FieldError{Field: name, Message: "must be a non-negative number"})
				continue
			}
			*dst = &parsed
		}
	}

	q.SortBy = c.Query("sortBy", "date")
	if !repositories.IsTransactionSortKey(q.SortBy) {
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

	return q, details
}

// List returns one page of the caller's transactions together with the total
// count and the aggregate summary over the full filter set
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "authentication required")
	}

	q, details := parseQuery(c, userID)
	if details != nil {
		return response.ValidationFailed(c, details)
	}

	params := pagination.GetParams(c)
	result, err := h.transactionService.List(c.Context(), q, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "failed to list transactions")
	}

	return response.ListWithSummary(c, result.Transactions, params, result.Total, result.Summary)
}

// GetByID returns one transaction
func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "authentication required")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "invalid transaction id")
	}

	transaction, err := h.transactionService.Get(c.Context(), userID, uint(id))
	if err != nil {
		return transactionError(c, err)
	}

	return response.OK(c, transaction)
}

// Create creates a new transaction
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "authentication required")
	}

	var input services.TransactionInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if details := validation.Struct(&input); details != nil {
		return response.ValidationFailed(c, details)
	}

	transaction, err := h.transactionService.Create(c.Context(), userID, &input)
	if err != nil {
		return transactionError(c, err)
	}

	return response.Created(c, transaction)
}

// Update updates a transaction
func (h *TransactionHandler) Update(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "authentication required")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "invalid transaction id")
	}

	var input services.TransactionInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if details := validation.Struct(&input); details != nil {
		return response.ValidationFailed(c, details)
	}

	transaction, err := h.transactionService.Update(c.Context(), userID, uint(id), &input)
	if err != nil {
		return transactionError(c, err)
	}

	return response.OK(c, transaction)
}

// Delete deletes a transaction
func (h *TransactionHandler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "authentication required")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "invalid transaction id")
	}

	if err := h.transactionService.Delete(c.Context(), userID, uint(id)); err != nil {
		return transactionError(c, err)
	}

	return response.OK(c, fiber.Map{"success": true})
}

// ExportCSV exports the full matching set as CSV
func (h *TransactionHandler) ExportCSV(c *fiber.Ctx) error {
	return h.export(c, h.exportService.ExportCSV)
}

// ExportXLSX exports the full matching set as a styled workbook
func (h *TransactionHandler) ExportXLSX(c *fiber.Ctx) error {
	return h.export(c, h.exportService.ExportXLSX)
}

func (h *TransactionHandler) export(
	c *fiber.Ctx,
	run func(ctx context.Context, q *repositories.TransactionQuery) (*services.ExportFile, error),
) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "authentication required")
	}

	q, details := parseQuery(c, userID)
	if details != nil {
		return response.ValidationFailed(c, details)
	}

	file, err := run(c.Context(), q)
	if err != nil {
		return response.InternalServerError(c, "failed to export transactions")
	}

	return sendExport(c, file)
}

// DownloadAttachments streams a transaction's attachments: one file raw, two
// or more as a zip bundle
func (h *TransactionHandler) DownloadAttachments(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "authentication required")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "invalid transaction id")
	}

	file, err := h.exportService.DownloadAttachments(c.Context(), userID, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTransactionNotFound):
			return response.NotFound(c, "transaction not found")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "you do not own this transaction")
		case errors.Is(err, domain.ErrNotFound):
			return response.NotFound(c, "transaction has no attachments")
		case errors.Is(err, domain.ErrUpstreamFetch):
			return response.BadGateway(c, "failed to fetch attachments from storage")
		default:
			return response.InternalServerError(c, "failed to download attachments")
		}
	}

	return sendExport(c, file)
}

// sendExport writes an export payload as an attachment download
func sendExport(c *fiber.Ctx, file *services.ExportFile) error {
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.FileName))
	return c.Send(file.Data)
}

// transactionError maps service errors to HTTP responses
func transactionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrTransactionNotFound):
		return response.NotFound(c, "transaction not found")
	case errors.Is(err, services.ErrClientNotFound):
		return response.NotFound(c, "client not found")
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "you do not own this resource")
	case errors.Is(err, services.ErrInvalidSortKey):
		return response.BadRequest(c, "unknown sort key")
	default:
		return response.InternalServerError(c, "transaction operation failed")
	}
}
