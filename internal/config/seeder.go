package config

import (
	"log"
	"os"

	"afps-backend/internal/adapters/persistence/models"
	"afps-backend/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg *Config
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	// The settings row must exist before any billing code runs; dues
	// and fine generation read it and never create it.
	if err := s.seedAppConfig(); err != nil {
		return err
	}

	if err := s.seedAdminPlayer(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAppConfig creates the singleton settings row with env defaults
func (s *Seeder) seedAppConfig() error {
	var count int64
	s.db.Model(&models.AppConfig{}).Count(&count)
	if count > 0 {
		return nil // Already seeded
	}

	cfg := &models.AppConfig{
		PixKey:               s.cfg.Pix.Key,
		MonthlyFeeAmount:     s.cfg.Billing.MonthlyFee,
		YellowCardFineAmount: s.cfg.Billing.YellowCardFine,
		RedCardFineAmount:    s.cfg.Billing.RedCardFine,
		PayeeName:            s.cfg.Pix.PayeeName,
		PayeeCity:            s.cfg.Pix.PayeeCity,
	}

	if err := s.db.Create(cfg).Error; err != nil {
		return err
	}

	log.Printf("✅ Settings seeded: monthly fee %.2f, fines %.2f/%.2f",
		cfg.MonthlyFeeAmount, cfg.YellowCardFineAmount, cfg.RedCardFineAmount)
	return nil
}

// seedAdminPlayer seeds the first admin account from ADMIN_CPF and
// ADMIN_PASSWORD. Further admins are promoted through the API.
func (s *Seeder) seedAdminPlayer() error {
	var count int64
	s.db.Model(&models.Player{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	adminCPF := os.Getenv("ADMIN_CPF")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminCPF == "" || adminPassword == "" {
		log.Println("⚠️ Skipping admin seed: ADMIN_CPF / ADMIN_PASSWORD not set")
		return nil
	}

	hashedPassword, err := password.Hash(adminPassword)
	if err != nil {
		return err
	}

	admin := &models.Player{
		CPF:                   adminCPF,
		Name:                  "Administrator",
		Role:                  models.RoleAdmin,
		Status:                models.PlayerStatusActive,
		Authorized:            true,
		RegistrationCompleted: true,
		Password:              hashedPassword,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Println("✅ Admin player created")
	return nil
}
