package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"expensio/internal/adapters/persistence/models"
	"expensio/internal/adapters/persistence/repositories"
	"expensio/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invoice service errors
var (
	ErrInvoiceNotFound      = errors.New("invoice not found")
	ErrInvalidInvoiceStatus = errors.New("invalid invoice status")
)

// InvoiceService handles invoice business logic
type InvoiceService struct {
	invoiceRepo *repositories.InvoiceRepository
	clientRepo  *repositories.ClientRepository
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo *repositories.InvoiceRepository,
	clientRepo *repositories.ClientRepository,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
	}
}

// InvoiceInput represents create invoice input
type InvoiceInput struct {
	ClientID  uint      `json:"clientId" validate:"required"`
	Amount    float64   `json:"amount" validate:"required,gt=0"`
	IssueDate time.Time `json:"issueDate" validate:"required"`
	DueDate   time.Time `json:"dueDate" validate:"required"`
	Notes     string    `json:"notes"`
}

var invoiceStatuses = map[string]bool{
	models.InvoiceStatusDraft:   true,
	models.InvoiceStatusSent:    true,
	models.InvoiceStatusPaid:    true,
	models.InvoiceStatusOverdue: true,
}

// List lists a user's invoices
func (s *InvoiceService) List(ctx context.Context, q *repositories.InvoiceQuery, offset, limit int) ([]*models.Invoice, int64, error) {
	if q.SortBy != "" && !repositories.IsInvoiceSortKey(q.SortBy) {
		return nil, 0, domain.ErrInvalidInput
	}
	if q.Status != "" && !invoiceStatuses[q.Status] {
		return nil, 0, domain.ErrInvalidInput
	}
	return s.invoiceRepo.List(ctx, q, offset, limit)
}

// Get fetches one invoice. Another user's record is Forbidden, distinct from
// NotFound.
func (s *InvoiceService) Get(ctx context.Context, userID, id uint) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	if invoice.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return invoice, nil
}

// Create creates a new draft invoice for a client owned by the caller
func (s *InvoiceService) Create(ctx context.Context, userID uint, input *InvoiceInput) (*models.Invoice, error) {
	client, err := s.clientRepo.GetByID(ctx, input.ClientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if client.UserID != userID {
		return nil, domain.ErrForbidden
	}

	invoice := &models.Invoice{
		UserID:        userID,
		ClientID:      input.ClientID,
		InvoiceNumber: NewInvoiceNumber(),
		Status:        models.InvoiceStatusDraft,
		Amount:        input.Amount,
		IssueDate:     input.IssueDate,
		DueDate:       input.DueDate,
		Notes:         input.Notes,
	}
	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// UpdateStatus transitions an invoice to a new status after the ownership check
func (s *InvoiceService) UpdateStatus(ctx context.Context, userID, id uint, status string) (*models.Invoice, error) {
	if !invoiceStatuses[status] {
		return nil, ErrInvalidInvoiceStatus
	}

	invoice, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	invoice.Status = status
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// Delete deletes an invoice after the ownership check
func (s *InvoiceService) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.invoiceRepo.Delete(ctx, id)
}

// NewInvoiceNumber generates a unique invoice number
func NewInvoiceNumber() string {
	return "INV-" + strings.ToUpper(uuid.New().String()[:8])
}
