package repositories

import (
	"context"
	"errors"
	"time"

	"afps-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFinanceRepository handles payable item and transaction data access
type GormFinanceRepository struct {
	db *gorm.DB
}

// NewFinanceRepository creates a new finance repository
func NewFinanceRepository(db *gorm.DB) *GormFinanceRepository {
	return &GormFinanceRepository{db: db}
}

// CreateItemIfAbsent inserts a payable item unless one with the same
// dedup key exists. The unique index on dedup_key makes this safe under
// concurrent generation for the same player.
func (r *GormFinanceRepository) CreateItemIfAbsent(ctx context.Context, item *models.PayableItem) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dedup_key"}},
			DoNothing: true,
		}).
		Create(item)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListDedupKeys lists dedup keys of a player's items of one kind
func (r *GormFinanceRepository) ListDedupKeys(ctx context.Context, ownerCPF, kind string) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).
		Model(&models.PayableItem{}).
		Where("owner_cpf = ? AND kind = ?", ownerCPF, kind).
		Pluck("dedup_key", &keys).Error
	return keys, err
}

// ListFineDedupKeysByMatch lists dedup keys of fine items linked to a match
func (r *GormFinanceRepository) ListFineDedupKeysByMatch(ctx context.Context, matchID uint) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).
		Model(&models.PayableItem{}).
		Where("match_id = ?", matchID).
		Where("kind IN ?", []string{models.ItemYellowCardFine, models.ItemRedCardFine}).
		Pluck("dedup_key", &keys).Error
	return keys, err
}

// ListItemsByOwner lists all payable items of a player
func (r *GormFinanceRepository) ListItemsByOwner(ctx context.Context, ownerCPF string) ([]models.PayableItem, error) {
	var items []models.PayableItem
	err := r.db.WithContext(ctx).
		Where("owner_cpf = ?", ownerCPF).
		Order("reference_date DESC").
		Find(&items).Error
	return items, err
}

// GetPendingItems resolves ids to PENDING items owned by the player
func (r *GormFinanceRepository) GetPendingItems(ctx context.Context, ownerCPF string, ids []uint) ([]models.PayableItem, error) {
	var items []models.PayableItem
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Where("owner_cpf = ?", ownerCPF).
		Where("status = ?", models.ItemStatusPending).
		Find(&items).Error
	return items, err
}

// MarkOverdue flips PENDING items older than the cutoff to OVERDUE
func (r *GormFinanceRepository) MarkOverdue(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PayableItem{}).
		Where("status = ?", models.ItemStatusPending).
		Where("reference_date < ?", before).
		Update("status", models.ItemStatusOverdue)
	return res.RowsAffected, res.Error
}

// CreateTransaction creates a checkout transaction with its item links
func (r *GormFinanceRepository) CreateTransaction(ctx context.Context, tx *models.Transaction, items []models.PayableItem) error {
	tx.Items = items
	// Omit the items themselves so the association only writes link rows.
	return r.db.WithContext(ctx).
		Omit("Items.*").
		Create(tx).Error
}

// DeleteTransaction removes a transaction and its item links
// (compensating rollback after a gateway failure)
func (r *GormFinanceRepository) DeleteTransaction(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		if err := dbtx.Exec("DELETE FROM transaction_items WHERE transaction_id = ?", id).Error; err != nil {
			return err
		}
		return dbtx.Delete(&models.Transaction{}, id).Error
	})
}

// AttachGatewayPaymentID stores the gateway's charge id on the transaction
func (r *GormFinanceRepository) AttachGatewayPaymentID(ctx context.Context, id uint, paymentID int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ?", id).
		Update("gateway_payment_id", paymentID).Error
}

// ListTransactionsByOwner lists a player's checkout transactions
func (r *GormFinanceRepository) ListTransactionsByOwner(ctx context.Context, ownerCPF string) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("owner_cpf = ?", ownerCPF).
		Order("created_at DESC").
		Find(&txs).Error
	return txs, err
}

// SettleTransaction marks every item linked to the transaction as PAID
// inside one database transaction. Either all linked items flip or none
// do. A missing transaction reports (false, nil): duplicate webhook
// deliveries and unknown references are benign no-ops.
func (r *GormFinanceRepository) SettleTransaction(ctx context.Context, id uint, paidAt time.Time, method string) (bool, error) {
	settled := false
	err := r.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		var tx models.Transaction
		if err := dbtx.Preload("Items").First(&tx, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		itemIDs := make([]uint, 0, len(tx.Items))
		for _, item := range tx.Items {
			itemIDs = append(itemIDs, item.ID)
		}
		if len(itemIDs) == 0 {
			return nil
		}

		// Matching zero rows means the items were already PAID; that is
		// a benign re-delivery, not an error.
		res := dbtx.Model(&models.PayableItem{}).
			Where("id IN ?", itemIDs).
			Where("status <> ?", models.ItemStatusPaid).
			Updates(map[string]interface{}{
				"status":         models.ItemStatusPaid,
				"payment_date":   paidAt,
				"payment_method": method,
			})
		if res.Error != nil {
			return res.Error
		}

		settled = true
		return nil
	})
	return settled, err
}

// SumPaidTotal sums all paid items (transparency report)
func (r *GormFinanceRepository) SumPaidTotal(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.PayableItem{}).
		Where("status = ?", models.ItemStatusPaid).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
