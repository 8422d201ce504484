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
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Transaction service errors
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidSortKey      = errors.New("unknown sort key")
)

// Summary holds the aggregate sums over the full filter set, not the page.
type Summary struct {
	TotalIncome   float64 `json:"totalIncome"`
	TotalExpenses float64 `json:"totalExpenses"`
	NetAmount     float64 `json:"netAmount"`
}

// TransactionService handles transaction business logic
type TransactionService struct {
	transactionRepo *repositories.TransactionRepository
	clientRepo      *repositories.ClientRepository
}

// NewTransactionService creates a new transaction service
func NewTransactionService(
	transactionRepo *repositories.TransactionRepository,
	clientRepo *repositories.ClientRepository,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		clientRepo:      clientRepo,
	}
}

// TransactionInput represents create/update transaction input
type TransactionInput struct {
	Type          string    `json:"type" validate:"required,oneof=income expense"`
	Category      string    `json:"category" validate:"required,max=50"`
	PaymentMethod string    `json:"paymentMethod" validate:"max=50"`
	Amount        float64   `json:"amount" validate:"required,gt=0"`
	Description   string    `json:"description"`
	Date          time.Time `json:"date" validate:"required"`
	ClientID      *uint     `json:"clientId"`
}

// ListResult bundles one page with the count and aggregate of the full set.
type ListResult struct {
	Transactions []*models.Transaction
	Total        int64
	Summary      *Summary
}

// List runs the page fetch, the total count and the type-grouped sums
// concurrently over the same filter set. The three queries are read-only and
// independent, so no ordering between them is needed.
func (s *TransactionService) List(ctx context.Context, q *repositories.TransactionQuery, offset, limit int) (*ListResult, error) {
	if q.SortBy != "" && !repositories.IsTransactionSortKey(q.SortBy) {
		return nil, ErrInvalidSortKey
	}

	result := &ListResult{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		transactions, err := s.transactionRepo.List(gctx, q, offset, limit)
		result.Transactions = transactions
		return err
	})
	g.Go(func() error {
		total, err := s.transactionRepo.Count(gctx, q)
		result.Total = total
		return err
	})
	g.Go(func() error {
		sums, err := s.transactionRepo.SumByType(gctx, q)
		if err != nil {
			return err
		}
		result.Summary = &Summary{
			TotalIncome:   sums.Income,
			TotalExpenses: sums.Expense,
			NetAmount:     sums.Income - sums.Expense,
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// Get fetches one transaction. Another user's record is Forbidden, distinct
// from NotFound.
func (s *TransactionService) Get(ctx context.Context, userID, id uint) (*models.Transaction, error) {
	transaction, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	if transaction.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return transaction, nil
}

// Create creates a new transaction owned by the caller
func (s *TransactionService) Create(ctx context.Context, userID uint, input *TransactionInput) (*models.Transaction, error) {
	if err := s.checkClient(ctx, userID, input.ClientID); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:            userID,
		ClientID:          input.ClientID,
		TransactionNumber: NewTransactionNumber(),
		Type:              input.Type,
		Category:          strings.TrimSpace(input.Category),
		PaymentMethod:     strings.TrimSpace(input.PaymentMethod),
		Amount:            input.Amount,
		Description:       input.Description,
		Date:              input.Date,
	}
	if err := s.transactionRepo.Create(ctx, transaction); err != nil {
		return nil, err
	}
	return transaction, nil
}

// Update updates a transaction after the ownership check
func (s *TransactionService) Update(ctx context.Context, userID, id uint, input *TransactionInput) (*models.Transaction, error) {
	transaction, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkClient(ctx, userID, input.ClientID); err != nil {
		return nil, err
	}

	transaction.ClientID = input.ClientID
	transaction.Type = input.Type
	transaction.Category = strings.TrimSpace(input.Category)
	transaction.PaymentMethod = strings.TrimSpace(input.PaymentMethod)
	transaction.Amount = input.Amount
	transaction.Description = input.Description
	transaction.Date = input.Date

	if err := s.transactionRepo.Update(ctx, transaction); err != nil {
		return nil, err
	}
	return transaction, nil
}

// Delete deletes a transaction after the ownership check
func (s *TransactionService) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.transactionRepo.Delete(ctx, id)
}

// checkClient verifies a referenced client exists and belongs to the caller
func (s *TransactionService) checkClient(ctx context.Context, userID uint, clientID *uint) error {
	if clientID == nil {
		return nil
	}
	client, err := s.clientRepo.GetByID(ctx, *clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClientNotFound
		}
		return err
	}
	if client.UserID != userID {
		return domain.ErrForbidden
	}
	return nil
}

// NewTransactionNumber generates a unique transaction number
func NewTransactionNumber() string {
	return "TXN-" + strings.ToUpper(uuid.New().String()[:8])
}
