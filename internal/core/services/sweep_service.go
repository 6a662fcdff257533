package services

import (
	"context"
	"log"

	"afps-backend/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// SweepService runs the scheduled housekeeping jobs: the daily overdue
// sweep and expired refresh token cleanup.
type SweepService struct {
	financeSvc *FinanceService
	tokenRepo  repositories.RefreshTokenRepository
	cron       *cron.Cron
}

// NewSweepService creates a new sweep service
func NewSweepService(financeSvc *FinanceService, tokenRepo repositories.RefreshTokenRepository) *SweepService {
	return &SweepService{
		financeSvc: financeSvc,
		tokenRepo:  tokenRepo,
		cron:       cron.New(),
	}
}

// Start schedules the jobs and launches the cron loop
func (s *SweepService) Start() error {
	// Daily 03:00: PENDING items referencing past months become OVERDUE
	if _, err := s.cron.AddFunc("0 3 * * *", s.sweepOverdue); err != nil {
		return err
	}

	// Daily 04:00: drop expired refresh tokens
	if _, err := s.cron.AddFunc("0 4 * * *", s.cleanupTokens); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("🚀 SweepService started")
	return nil
}

// Stop stops the cron loop, waiting for running jobs
func (s *SweepService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 SweepService stopped")
}

func (s *SweepService) sweepOverdue() {
	if _, err := s.financeSvc.MarkOverdue(context.Background()); err != nil {
		log.Printf("❌ Overdue sweep error: %v", err)
	}
}

func (s *SweepService) cleanupTokens() {
	if err := s.tokenRepo.DeleteExpired(context.Background()); err != nil {
		log.Printf("❌ Token cleanup error: %v", err)
	}
}
