package repositories

import (
	"context"

	"afps-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// GormPlayerRepository handles player data access
type GormPlayerRepository struct {
	db *gorm.DB
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(db *gorm.DB) *GormPlayerRepository {
	return &GormPlayerRepository{db: db}
}

// Create creates a new player
func (r *GormPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	return r.db.WithContext(ctx).Create(player).Error
}

// GetByCPF gets a player by CPF
func (r *GormPlayerRepository) GetByCPF(ctx context.Context, cpf string) (*models.Player, error) {
	var player models.Player
	err := r.db.WithContext(ctx).Where("cpf = ?", cpf).First(&player).Error
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// Update updates a player
func (r *GormPlayerRepository) Update(ctx context.Context, player *models.Player) error {
	return r.db.WithContext(ctx).Save(player).Error
}

// List lists players, optionally filtered by status
func (r *GormPlayerRepository) List(ctx context.Context, status string, offset, limit int) ([]*models.Player, int64, error) {
	var players []*models.Player
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Player{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	query.Count(&total)

	err := query.
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&players).Error

	return players, total, err
}

// ExistsByCPF checks whether a player with the CPF exists
func (r *GormPlayerRepository) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Player{}).Where("cpf = ?", cpf).Count(&count).Error
	return count > 0, err
}

// IncrementGoals adjusts the denormalized goals counter
func (r *GormPlayerRepository) IncrementGoals(ctx context.Context, cpf string, delta int) error {
	return r.db.WithContext(ctx).
		Model(&models.Player{}).
		Where("cpf = ?", cpf).
		UpdateColumn("goals_scored", gorm.Expr("goals_scored + ?", delta)).Error
}
