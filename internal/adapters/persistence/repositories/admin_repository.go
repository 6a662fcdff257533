package repositories

import (
	"context"

	"afps-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// GormExpenseRepository handles expense data access
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// Create creates an expense
func (r *GormExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

// GetByID gets an expense by ID
func (r *GormExpenseRepository) GetByID(ctx context.Context, id uint) (*models.Expense, error) {
	var expense models.Expense
	err := r.db.WithContext(ctx).First(&expense, id).Error
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// Update updates an expense
func (r *GormExpenseRepository) Update(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Save(expense).Error
}

// Delete deletes an expense
func (r *GormExpenseRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Expense{}, id).Error
}

// List lists expenses, newest first
func (r *GormExpenseRepository) List(ctx context.Context, offset, limit int) ([]*models.Expense, int64, error) {
	var expenses []*models.Expense
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Expense{})
	query.Count(&total)

	err := query.
		Order("date DESC").
		Offset(offset).
		Limit(limit).
		Find(&expenses).Error

	return expenses, total, err
}

// SumTotal sums all recorded expenses
func (r *GormExpenseRepository) SumTotal(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// GormAuditLogRepository handles audit log data access
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Create writes an audit log entry
func (r *GormAuditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List lists audit log entries, newest first
func (r *GormAuditLogRepository) List(ctx context.Context, offset, limit int) ([]*models.AuditLog, int64, error) {
	var entries []*models.AuditLog
	var total int64

	query := r.db.WithContext(ctx).Model(&models.AuditLog{})
	query.Count(&total)

	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error

	return entries, total, err
}
