package services

import (
	"context"
	"errors"
	"strings"

	"expensio/internal/adapters/persistence/models"
	"expensio/internal/adapters/persistence/repositories"
	"expensio/internal/core/domain"

	"gorm.io/gorm"
)

// Client service errors
var (
	ErrClientNotFound = errors.New("client not found")
)

// ClientService handles client business logic. Every operation is scoped to
// the calling user; cross-user access is impossible by construction.
type ClientService struct {
	clientRepo *repositories.ClientRepository
}

// NewClientService creates a new client service
func NewClientService(clientRepo *repositories.ClientRepository) *ClientService {
	return &ClientService{clientRepo: clientRepo}
}

// ClientInput represents create/update client input
type ClientInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"max=30"`
	Company string `json:"company" validate:"max=100"`
	Notes   string `json:"notes"`
}

// List lists a user's clients
func (s *ClientService) List(ctx context.Context, q *repositories.ClientQuery, offset, limit int) ([]*models.Client, int64, error) {
	if q.SortBy != "" && !repositories.IsClientSortKey(q.SortBy) {
		return nil, 0, domain.ErrInvalidInput
	}
	return s.clientRepo.List(ctx, q, offset, limit)
}

// Get fetches one client. A record owned by someone else is Forbidden,
// distinct from NotFound.
func (s *ClientService) Get(ctx context.Context, userID, id uint) (*models.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if client.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return client, nil
}

// Create creates a new client owned by the caller
func (s *ClientService) Create(ctx context.Context, userID uint, input *ClientInput) (*models.Client, error) {
	client := &models.Client{
		UserID:  userID,
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Phone:   strings.TrimSpace(input.Phone),
		Company: strings.TrimSpace(input.Company),
		Notes:   input.Notes,
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// Update updates a client after the ownership check
func (s *ClientService) Update(ctx context.Context, userID, id uint, input *ClientInput) (*models.Client, error) {
	client, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	client.Name = strings.TrimSpace(input.Name)
	client.Email = strings.TrimSpace(input.Email)
	client.Phone = strings.TrimSpace(input.Phone)
	client.Company = strings.TrimSpace(input.Company)
	client.Notes = input.Notes

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// Delete deletes a client after the ownership check
func (s *ClientService) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.clientRepo.Delete(ctx, id)
}
