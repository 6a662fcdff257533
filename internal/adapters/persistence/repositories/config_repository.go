package repositories

import (
	"context"

	"afps-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// GormConfigRepository handles the association settings row
type GormConfigRepository struct {
	db *gorm.DB
}

// NewConfigRepository creates a new config repository
func NewConfigRepository(db *gorm.DB) *GormConfigRepository {
	return &GormConfigRepository{db: db}
}

// Get loads the settings row. The row is seeded at startup, so a
// missing row is a real error here, not a cue to create one.
func (r *GormConfigRepository) Get(ctx context.Context) (*models.AppConfig, error) {
	var cfg models.AppConfig
	err := r.db.WithContext(ctx).First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Update saves the settings row
func (r *GormConfigRepository) Update(ctx context.Context, cfg *models.AppConfig) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}
