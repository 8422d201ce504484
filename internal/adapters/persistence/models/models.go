package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth tables
// ============================================================

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Name      string         `gorm:"size:100" json:"name"`
	Role      string         `gorm:"size:20;default:'user'" json:"role"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// Session represents sessions table. The opaque token doubles as the primary
// key and as the session_token claim of the signed cookie token. A row past
// its expiry is logically dead even before the sweeper removes it.
type Session struct {
	Token     string    `gorm:"primaryKey;size:64" json:"token"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
}

func (Session) TableName() string {
	return "sessions"
}

func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.After(time.Now())
}

// ============================================================
// Domain tables
// ============================================================

// Client represents clients table
type Client struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Email     string         `gorm:"size:100" json:"email"`
	Phone     string         `gorm:"size:30" json:"phone"`
	Company   string         `gorm:"size:100" json:"company"`
	Notes     string         `gorm:"type:text" json:"notes"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Client) TableName() string {
	return "clients"
}

// Transaction types
const (
	TxTypeIncome  = "income"
	TxTypeExpense = "expense"
)

// Transaction represents transactions table
type Transaction struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	UserID            uint           `gorm:"index;not null" json:"user_id"`
	ClientID          *uint          `gorm:"index" json:"client_id"`
	TransactionNumber string         `gorm:"uniqueIndex;size:50;not null" json:"transaction_number"`
	Type              string         `gorm:"size:20;not null;index" json:"type"`
	Category          string         `gorm:"size:50;index" json:"category"`
	PaymentMethod     string         `gorm:"size:50" json:"payment_method"`
	Amount            float64        `gorm:"type:decimal(15,2);not null" json:"amount"`
	Description       string         `gorm:"type:text" json:"description"`
	Date              time.Time      `gorm:"type:date;not null;index" json:"date"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Client      *Client      `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Attachments []Attachment `gorm:"foreignKey:TransactionID" json:"attachments,omitempty"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// Attachment represents attachments table. The blob itself lives in external
// storage; URL is the only handle this service keeps.
type Attachment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TransactionID uint      `gorm:"index;not null" json:"transaction_id"`
	FileName      string    `gorm:"size:255;not null" json:"file_name"`
	URL           string    `gorm:"size:500;not null" json:"url"`
	Size          int64     `json:"size"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Attachment) TableName() string {
	return "attachments"
}

// Invoice statuses
const (
	InvoiceStatusDraft   = "draft"
	InvoiceStatusSent    = "sent"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
)

// Invoice represents invoices table
type Invoice struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"index;not null" json:"user_id"`
	ClientID      uint           `gorm:"index;not null" json:"client_id"`
	InvoiceNumber string         `gorm:"uniqueIndex;size:50;not null" json:"invoice_number"`
	Status        string         `gorm:"size:20;not null;default:'draft'" json:"status"`
	Amount        float64        `gorm:"type:decimal(15,2);not null" json:"amount"`
	IssueDate     time.Time      `gorm:"type:date;not null" json:"issue_date"`
	DueDate       time.Time      `gorm:"type:date;not null" json:"due_date"`
	Notes         string         `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Client *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Session{},
		&Client{},
		&Transaction{},
		&Attachment{},
		&Invoice{},
	)
}
