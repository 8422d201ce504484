package config

import (
	"log"
	"time"

	"expensio/internal/adapters/persistence/models"
	"expensio/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders. Development only; production data comes in
// through the API.
func (s *Seeder) Run() error {
	log.Println("running database seeders...")

	if err := s.seedDemoUser(); err != nil {
		log.Printf("demo seeder skipped: %v", err)
	}

	log.Println("database seeding completed")
	return nil
}

// seedDemoUser seeds a demo account with a few clients and transactions
func (s *Seeder) seedDemoUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("email = ?", "demo@expensio.dev").Count(&count)
	if count > 0 {
		return nil // already seeded
	}

	hashedPassword, err := password.Hash("demo123456")
	if err != nil {
		return err
	}

	user := &models.User{
		Email:    "demo@expensio.dev",
		Password: hashedPassword,
		Name:     "Demo User",
		Role:     "user",
	}
	if err := s.db.Create(user).Error; err != nil {
		return err
	}

	client := &models.Client{
		UserID:  user.ID,
		Name:    "Acme Corp",
		Email:   "billing@acme.example",
		Company: "Acme Corporation",
	}
	if err := s.db.Create(client).Error; err != nil {
		return err
	}

	now := time.Now()
	transactions := []*models.Transaction{
		{
			UserID:            user.ID,
			ClientID:          &client.ID,
			TransactionNumber: "TXN-" + uuid.New().String()[:8],
			Type:              models.TxTypeIncome,
			Category:          "consulting",
			PaymentMethod:     "bank_transfer",
			Amount:            2500,
			Description:       "March retainer",
			Date:              now.AddDate(0, 0, -20),
		},
		{
			UserID:            user.ID,
			TransactionNumber: "TXN-" + uuid.New().String()[:8],
			Type:              models.TxTypeExpense,
			Category:          "software",
			PaymentMethod:     "credit_card",
			Amount:            49.99,
			Description:       "IDE subscription",
			Date:              now.AddDate(0, 0, -12),
		},
		{
			UserID:            user.ID,
			TransactionNumber: "TXN-" + uuid.New().String()[:8],
			Type:              models.TxTypeExpense,
			Category:          "travel",
			PaymentMethod:     "credit_card",
			Amount:            180.50,
			Description:       "Client site visit",
			Date:              now.AddDate(0, 0, -5),
		},
	}
	for _, tx := range transactions {
		if err := s.db.Create(tx).Error; err != nil {
			return err
		}
	}

	log.Printf("demo user created: %s", user.Email)
	return nil
}
