package services

import (
	"context"
	"log"

	"expensio/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CleanupService runs the scheduled expired-session sweep. The inline sweeps
// on login/logout keep correctness; this job only keeps the table small.
type CleanupService struct {
	sessionRepo repositories.SessionRepository
	cron        *cron.Cron
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(sessionRepo repositories.SessionRepository) *CleanupService {
	return &CleanupService{
		sessionRepo: sessionRepo,
		cron:        cron.New(),
	}
}

// Start schedules the daily sweep (03:00)
func (s *CleanupService) Start() {
	s.cron.AddFunc("0 3 * * *", func() {
		if err := s.sessionRepo.DeleteExpired(context.Background()); err != nil {
			log.Printf("scheduled session sweep failed: %v", err)
			return
		}
		log.Println("scheduled session sweep completed")
	})
	s.cron.Start()
	log.Println("CleanupService started")
}

// Stop stops the scheduler
func (s *CleanupService) Stop() {
	s.cron.Stop()
	log.Println("CleanupService stopped")
}
