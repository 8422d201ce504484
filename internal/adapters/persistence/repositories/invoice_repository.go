package repositories

import (
	"context"
	"strings"
	"time"

	"expensio/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// InvoiceQuery is the closed filter set for invoice listings
type InvoiceQuery struct {
	UserID   uint
	Status   string
	ClientID *uint
	DateFrom *time.Time
	DateTo   *time.Time
	Search   string
	SortBy   string
	SortDesc bool
}

var invoiceSortColumns = map[string]string{
	"issue_date": "issue_date",
	"due_date":   "due_date",
	"amount":     "amount",
	"created_at": "created_at",
}

// IsInvoiceSortKey reports whether key is an allowed sort key.
func IsInvoiceSortKey(key string) bool {
	_, ok := invoiceSortColumns[key]
	return ok
}

// InvoiceRepository handles invoice data access
type InvoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) scope(ctx context.Context, q *InvoiceQuery) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("user_id = ?", q.UserID)

	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.ClientID != nil {
		tx = tx.Where("client_id = ?", *q.ClientID)
	}
	if q.DateFrom != nil {
		tx = tx.Where("issue_date >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		tx = tx.Where("issue_date <= ?", *q.DateTo)
	}
	if q.Search != "" {
		pattern := "%" + strings.ToLower(q.Search) + "%"
		tx = tx.Where(
			"LOWER(invoice_number) LIKE ? OR LOWER(notes) LIKE ?",
			pattern, pattern,
		)
	}

	return tx
}

// List returns one page of matching invoices with the total count
func (r *InvoiceRepository) List(ctx context.Context, q *InvoiceQuery, offset, limit int) ([]*models.Invoice, int64, error) {
	var invoices []*models.Invoice
	var total int64

	if err := r.scope(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	col, ok := invoiceSortColumns[q.SortBy]
	if !ok {
		col = "issue_date"
	}
	dir := " ASC"
	if q.SortDesc {
		dir = " DESC"
	}

	err := r.scope(ctx, q).
		Order(col + dir).
		Preload("Client").
		Offset(offset).
		Limit(limit).
		Find(&invoices).Error

	return invoices, total, err
}

// Create creates a new invoice
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

// GetByID gets an invoice by ID with its client. Ownership is checked by the caller.
func (r *InvoiceRepository) GetByID(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Client").
		First(&invoice, id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// Update updates an invoice
func (r *InvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

// Delete soft deletes an invoice
func (r *InvoiceRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Invoice{}, id).Error
}
