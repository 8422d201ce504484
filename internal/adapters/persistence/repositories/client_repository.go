package repositories

import (
	"context"
	"strings"

	"expensio/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ClientQuery is the closed filter set for client listings
type ClientQuery struct {
	UserID   uint
	Name     string
	Email    string
	Company  string
	Search   string
	SortBy   string
	SortDesc bool
}

var clientSortColumns = map[string]string{
	"name":       "name",
	"company":    "company",
	"created_at": "created_at",
}

// IsClientSortKey reports whether key is an allowed sort key.
func IsClientSortKey(key string) bool {
	_, ok := clientSortColumns[key]
	return ok
}

// ClientRepository handles client data access
type ClientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) scope(ctx context.Context, q *ClientQuery) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&models.Client{}).
		Where("user_id = ?", q.UserID)

	if q.Name != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q.Name)+"%")
	}
	if q.Email != "" {
		tx = tx.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(q.Email)+"%")
	}
	if q.Company != "" {
		tx = tx.Where("LOWER(company) LIKE ?", "%"+strings.ToLower(q.Company)+"%")
	}
	if q.Search != "" {
		pattern := "%" + strings.ToLower(q.Search) + "%"
		tx = tx.Where(
			"LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(company) LIKE ? OR LOWER(notes) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	return tx
}

// List returns one page of matching clients with the total count
func (r *ClientRepository) List(ctx context.Context, q *ClientQuery, offset, limit int) ([]*models.Client, int64, error) {
	var clients []*models.Client
	var total int64

	if err := r.scope(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	col, ok := clientSortColumns[q.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := " ASC"
	if q.SortDesc {
		dir = " DESC"
	}

	err := r.scope(ctx, q).
		Order(col + dir).
		Offset(offset).
		Limit(limit).
		Find(&clients).Error

	return clients, total, err
}

// Create creates a new client
func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

// GetByID gets a client by ID. Ownership is checked by the caller.
func (r *ClientRepository) GetByID(ctx context.Context, id uint) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).First(&client, id).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// Update updates a client
func (r *ClientRepository) Update(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

// Delete soft deletes a client
func (r *ClientRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Client{}, id).Error
}
