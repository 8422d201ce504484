package repositories

import (
	"context"
	"strings"
	"time"

	"expensio/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// TransactionQuery is the closed filter set for transaction listings. Every
// supported dimension is a field here; unknown dimensions are rejected at the
// boundary before this struct is built. UserID is always set — ownership
// scoping is part of every query, never optional.
type TransactionQuery struct {
	UserID            uint
	Type              string
	Category          string
	PaymentMethod     string
	TransactionNumber string
	Search            string
	DateFrom          *time.Time
	DateTo            *time.Time
	AmountMin         *float64
	AmountMax         *float64
	SortBy            string
	SortDesc          bool
}

// TypeSums holds amount sums grouped by transaction type over a filter set.
type TypeSums struct {
	Income  float64
	Expense float64
}

// TransactionRepository handles transaction data access
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// sortColumns maps allowed sort keys to columns. The service validates keys
// against this same set before building a query.
var sortColumns = map[string]string{
	"date":               "date",
	"amount":             "amount",
	"category":           "category",
	"transaction_number": "transaction_number",
	"created_at":         "created_at",
}

// TransactionSortKeys returns the allowed sort keys for transaction listings.
func TransactionSortKeys() []string {
	keys := make([]string, 0, len(sortColumns))
	for k := range sortColumns {
		keys = append(keys, k)
	}
	return keys
}

// IsTransactionSortKey reports whether key is an allowed sort key.
func IsTransactionSortKey(key string) bool {
	_, ok := sortColumns[key]
	return ok
}

// scope applies every predicate of the query. Each optional parameter maps to
// exactly one predicate; range bounds are inclusive and applied independently.
func (r *TransactionRepository) scope(ctx context.Context, q *TransactionQuery) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("user_id = ?", q.UserID)

	if q.Type != "" {
		tx = tx.Where("type = ?", q.Type)
	}
	if q.Category != "" {
		tx = tx.Where("LOWER(category) LIKE ?", "%"+strings.ToLower(q.Category)+"%")
	}
	if q.PaymentMethod != "" {
		tx = tx.Where("LOWER(payment_method) LIKE ?", "%"+strings.ToLower(q.PaymentMethod)+"%")
	}
	if q.TransactionNumber != "" {
		tx = tx.Where("LOWER(transaction_number) LIKE ?", "%"+strings.ToLower(q.TransactionNumber)+"%")
	}
	if q.Search != "" {
		pattern := "%" + strings.ToLower(q.Search) + "%"
		tx = tx.Where(
			"LOWER(description) LIKE ? OR LOWER(category) LIKE ? OR LOWER(transaction_number) LIKE ? OR LOWER(payment_method) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if q.DateFrom != nil {
		tx = tx.Where("date >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		tx = tx.Where("date <= ?", *q.DateTo)
	}
	if q.AmountMin != nil {
		tx = tx.Where("amount >= ?", *q.AmountMin)
	}
	if q.AmountMax != nil {
		tx = tx.Where("amount <= ?", *q.AmountMax)
	}

	return tx
}

func (r *TransactionRepository) order(tx *gorm.DB, q *TransactionQuery) *gorm.DB {
	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = "date"
	}
	dir := " ASC"
	if q.SortDesc {
		dir = " DESC"
	}
	return tx.Order(col + dir)
}

// List returns one page of matching transactions
func (r *TransactionRepository) List(ctx context.Context, q *TransactionQuery, offset, limit int) ([]*models.Transaction, error) {
	var transactions []*models.Transaction
	err := r.order(r.scope(ctx, q), q).
		Preload("Client").
		Preload("Attachments").
		Offset(offset).
		Limit(limit).
		Find(&transactions).Error
	return transactions, err
}

// ListAll returns the full matching set, pagination disabled (exports)
func (r *TransactionRepository) ListAll(ctx context.Context, q *TransactionQuery) ([]*models.Transaction, error) {
	var transactions []*models.Transaction
	err := r.order(r.scope(ctx, q), q).
		Preload("Client").
		Find(&transactions).Error
	return transactions, err
}

// Count counts matching transactions
func (r *TransactionRepository) Count(ctx context.Context, q *TransactionQuery) (int64, error) {
	var total int64
	err := r.scope(ctx, q).Count(&total).Error
	return total, err
}

// SumByType computes amount sums grouped by type over the full matching set,
// not the current page.
func (r *TransactionRepository) SumByType(ctx context.Context, q *TransactionQuery) (*TypeSums, error) {
	var rows []struct {
		Type  string
		Total float64
	}
	err := r.scope(ctx, q).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	sums := &TypeSums{}
	for _, row := range rows {
		switch row.Type {
		case models.TxTypeIncome:
			sums.Income = row.Total
		case models.TxTypeExpense:
			sums.Expense = row.Total
		}
	}
	return sums, nil
}

// Create creates a new transaction
func (r *TransactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}

// GetByID gets a transaction by ID with relations. Ownership is checked by
// the caller against the returned row.
func (r *TransactionRepository) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Attachments").
		First(&transaction, id).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

// Update updates a transaction
func (r *TransactionRepository) Update(ctx context.Context, transaction *models.Transaction) error {
	return r.db.WithContext(ctx).Save(transaction).Error
}

// Delete soft deletes a transaction
func (r *TransactionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Transaction{}, id).Error
}

// AttachmentRepository handles attachment data access
type AttachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository creates a new attachment repository
func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Create creates a new attachment
func (r *AttachmentRepository) Create(ctx context.Context, attachment *models.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

// GetByTransactionID gets all attachments of a transaction
func (r *AttachmentRepository) GetByTransactionID(ctx context.Context, transactionID uint) ([]*models.Attachment, error) {
	var attachments []*models.Attachment
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("created_at ASC").
		Find(&attachments).Error
	return attachments, err
}
