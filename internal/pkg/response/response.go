package response

import (
	"expensio/internal/pkg/pagination"

	"github.com/gofiber/fiber/v2"
)

// FieldError describes one failing field of a validation error.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorBody is the uniform error payload: {error, details?}.
type ErrorBody struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

// ListBody is the paginated list envelope.
type ListBody struct {
	Data       interface{}      `json:"data"`
	Pagination *pagination.Meta `json:"pagination"`
	Summary    interface{}      `json:"summary,omitempty"`
}

// OK sends a 200 response with the given body
func OK(c *fiber.Ctx, body interface{}) error {
	return c.JSON(body)
}

// Created sends a 201 created response
func Created(c *fiber.Ctx, body interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(body)
}

// List sends a paginated list response
func List(c *fiber.Ctx, data interface{}, params *pagination.Params, total int64) error {
	return c.JSON(ListBody{
		Data:       data,
		Pagination: pagination.GetMeta(params, total),
	})
}

// ListWithSummary sends a paginated list response with an aggregate summary
func ListWithSummary(c *fiber.Ctx, data interface{}, params *pagination.Params, total int64, summary interface{}) error {
	return c.JSON(ListBody{
		Data:       data,
		Pagination: pagination.GetMeta(params, total),
		Summary:    summary,
	})
}

// Error sends an error response
func Error(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(ErrorBody{Error: message})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

// ValidationFailed sends a 400 response enumerating the failing fields
func ValidationFailed(c *fiber.Ctx, details []FieldError) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorBody{
		Error:   "validation failed",
		Details: details,
	})
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

// Forbidden sends a 403 forbidden response
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, message)
}

// NotFound sends a 404 not found response
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

// Conflict sends a 409 conflict response
func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusConflict, message)
}

// InternalServerError sends a 500 internal server error response
func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

// BadGateway sends a 502 response (upstream blob store failures)
func BadGateway(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadGateway, message)
}
