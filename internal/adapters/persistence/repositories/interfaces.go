package repositories

import (
	"context"
	"time"

	"afps-backend/internal/adapters/persistence/models"
)

// PlayerRepository defines player data access
type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByCPF(ctx context.Context, cpf string) (*models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	List(ctx context.Context, status string, offset, limit int) ([]*models.Player, int64, error)
	ExistsByCPF(ctx context.Context, cpf string) (bool, error)
	IncrementGoals(ctx context.Context, cpf string, delta int) error
}

// RefreshTokenRepository defines refresh token data access
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByCPF(ctx context.Context, cpf string) error
	DeleteExpired(ctx context.Context) error
}

// ConfigRepository defines app configuration access. The row is seeded at
// startup; Get never creates.
type ConfigRepository interface {
	Get(ctx context.Context) (*models.AppConfig, error)
	Update(ctx context.Context, cfg *models.AppConfig) error
}

// FinanceRepository defines payable item and checkout transaction access.
type FinanceRepository interface {
	// CreateItemIfAbsent inserts the item unless its dedup key already
	// exists, reporting whether a row was written.
	CreateItemIfAbsent(ctx context.Context, item *models.PayableItem) (bool, error)
	ListDedupKeys(ctx context.Context, ownerCPF, kind string) ([]string, error)
	ListFineDedupKeysByMatch(ctx context.Context, matchID uint) ([]string, error)
	ListItemsByOwner(ctx context.Context, ownerCPF string) ([]models.PayableItem, error)
	// GetPendingItems resolves ids to items owned by ownerCPF in PENDING
	// status; ids that fail either test are silently absent from the result.
	GetPendingItems(ctx context.Context, ownerCPF string, ids []uint) ([]models.PayableItem, error)
	MarkOverdue(ctx context.Context, before time.Time) (int64, error)

	CreateTransaction(ctx context.Context, tx *models.Transaction, items []models.PayableItem) error
	DeleteTransaction(ctx context.Context, id uint) error
	AttachGatewayPaymentID(ctx context.Context, id uint, paymentID int64) error
	ListTransactionsByOwner(ctx context.Context, ownerCPF string) ([]models.Transaction, error)
	// SettleTransaction atomically marks every item linked to the
	// transaction as PAID. A missing transaction is a benign no-op and
	// reports false without error.
	SettleTransaction(ctx context.Context, id uint, paidAt time.Time, method string) (bool, error)
	SumPaidTotal(ctx context.Context) (float64, error)
}

// MatchRepository defines match data access
type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id uint) (*models.Match, error)
	Update(ctx context.Context, match *models.Match) error
	// ReplaceTeams swaps the full team sub-tree (roster, goals, cards).
	ReplaceTeams(ctx context.Context, matchID uint, teams []models.MatchTeam) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, f MatchFilters, offset, limit int) ([]*models.Match, int64, error)
	ListFinalizedByPlayer(ctx context.Context, cpf string) ([]*models.Match, error)
}

// MatchFilters narrows match listings.
type MatchFilters struct {
	Status    string
	DateFrom  *time.Time
	DateTo    *time.Time
	PlayerCPF string
}

// ExpenseRepository defines expense data access
type ExpenseRepository interface {
	Create(ctx context.Context, expense *models.Expense) error
	GetByID(ctx context.Context, id uint) (*models.Expense, error)
	Update(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.Expense, int64, error)
	SumTotal(ctx context.Context) (float64, error)
}

// AuditLogRepository defines audit trail access
type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, offset, limit int) ([]*models.AuditLog, int64, error)
}
