package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"afps-backend/internal/adapters/persistence/models"
	"afps-backend/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Finance errors
var (
	ErrPlayerNotBillable = errors.New("player is not billable")
	ErrConfigNotSeeded   = errors.New("app config row missing")
)

// FinanceService owns payable item generation: monthly dues and
// per-card disciplinary fines.
type FinanceService struct {
	playerRepo  repositories.PlayerRepository
	financeRepo repositories.FinanceRepository
	configRepo  repositories.ConfigRepository

	now func() time.Time
}

// NewFinanceService creates a new finance service
func NewFinanceService(
	playerRepo repositories.PlayerRepository,
	financeRepo repositories.FinanceRepository,
	configRepo repositories.ConfigRepository,
) *FinanceService {
	return &FinanceService{
		playerRepo:  playerRepo,
		financeRepo: financeRepo,
		configRepo:  configRepo,
		now:         time.Now,
	}
}

// MonthlyDueKey builds the dedup key of one player's dues for one month
func MonthlyDueKey(cpf string, month time.Time) string {
	return fmt.Sprintf("%s|%s|%s", cpf, models.ItemMonthlyFee, month.Format("2006-01"))
}

// FineKey builds the dedup key of one card event's fine. Keyed on
// (match, player, minute) so two cards for different players in the
// same minute never collide.
func FineKey(matchID uint, cpf string, minute int) string {
	return fmt.Sprintf("match:%d|%s|%d", matchID, cpf, minute)
}

// GenerateDues backfills monthly fee items for a player from the month
// the account was created through the current month. Idempotent: each
// month is keyed and inserted only if absent, so running it on every
// billing page visit is safe and cheap.
func (s *FinanceService) GenerateDues(ctx context.Context, cpf string) (int, error) {
	// 1. Load player and config up front; either failing aborts with no writes
	player, err := s.playerRepo.GetByCPF(ctx, cpf)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrPlayerNotFound
		}
		return 0, err
	}
	if !player.Billable() {
		return 0, ErrPlayerNotBillable
	}

	cfg, err := s.configRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrConfigNotSeeded
		}
		return 0, err
	}

	// 2. Billing window: creation month through current month, inclusive
	startMonth := firstOfMonth(player.CreatedAt)
	endMonth := firstOfMonth(s.now())

	// 3. One read for the keys already billed
	existingKeys, err := s.financeRepo.ListDedupKeys(ctx, cpf, models.ItemMonthlyFee)
	if err != nil {
		return 0, err
	}
	existing := make(map[string]bool, len(existingKeys))
	for _, k := range existingKeys {
		existing[k] = true
	}

	// 4. Insert the missing months. The unique dedup index absorbs any
	// concurrent generator racing us.
	created := 0
	for month := startMonth; !month.After(endMonth); month = month.AddDate(0, 1, 0) {
		key := MonthlyDueKey(cpf, month)
		if existing[key] {
			continue
		}

		item := &models.PayableItem{
			OwnerCPF:      cpf,
			Kind:          models.ItemMonthlyFee,
			Description:   fmt.Sprintf("Monthly fee %s", month.Format("01/2006")),
			DedupKey:      key,
			Amount:        cfg.MonthlyFeeAmount,
			Status:        models.ItemStatusPending,
			ReferenceDate: month,
		}
		inserted, err := s.financeRepo.CreateItemIfAbsent(ctx, item)
		if err != nil {
			return created, err
		}
		if inserted {
			created++
		}
	}

	if created > 0 {
		log.Printf("💰 Generated %d monthly due(s) for %s", created, maskCPF(cpf))
	}
	return created, nil
}

// GenerateMatchFines creates PENDING fines for every card event of a
// finalized match that has not been billed yet. Exactly-once per
// (match, player, minute): re-finalizing duplicates nothing and cards
// added on a later save get picked up.
func (s *FinanceService) GenerateMatchFines(ctx context.Context, match *models.Match) (int, error) {
	cards := match.Cards()
	if len(cards) == 0 {
		return 0, nil
	}

	cfg, err := s.configRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrConfigNotSeeded
		}
		return 0, err
	}

	existingKeys, err := s.financeRepo.ListFineDedupKeysByMatch(ctx, match.ID)
	if err != nil {
		return 0, err
	}
	existing := make(map[string]bool, len(existingKeys))
	for _, k := range existingKeys {
		existing[k] = true
	}

	created := 0
	for _, card := range cards {
		key := FineKey(match.ID, card.PlayerCPF, card.Minute)
		if existing[key] {
			continue
		}

		kind := models.ItemYellowCardFine
		amount := cfg.YellowCardFineAmount
		label := "Yellow card"
		if card.Color == models.CardRed {
			kind = models.ItemRedCardFine
			amount = cfg.RedCardFineAmount
			label = "Red card"
		}

		matchID := match.ID
		item := &models.PayableItem{
			OwnerCPF:      card.PlayerCPF,
			Kind:          kind,
			Description:   fmt.Sprintf("%s fine %s [%s %d']", label, match.Date.Format("02/01/2006"), card.PlayerCPF, card.Minute),
			DedupKey:      key,
			Amount:        amount,
			Status:        models.ItemStatusPending,
			ReferenceDate: match.Date,
			MatchID:       &matchID,
		}
		inserted, err := s.financeRepo.CreateItemIfAbsent(ctx, item)
		if err != nil {
			return created, err
		}
		if inserted {
			created++
		}
	}

	if created > 0 {
		log.Printf("🟨 Generated %d card fine(s) for match #%d", created, match.ID)
	}
	return created, nil
}

// ItemsSummary aggregates a player's billing state
type ItemsSummary struct {
	TotalPending float64 `json:"total_pending"`
	TotalOverdue float64 `json:"total_overdue"`
	TotalPaid    float64 `json:"total_paid"`
	PendingCount int     `json:"pending_count"`
}

// ItemsResult bundles a player's items with their summary
type ItemsResult struct {
	Items   []models.PayableItem `json:"items"`
	Summary ItemsSummary         `json:"summary"`
}

// ListItems generates any missing dues, then lists the player's items
// with a totals summary. The generation step runs on every call; its
// idempotence keeps that cheap.
func (s *FinanceService) ListItems(ctx context.Context, cpf string) (*ItemsResult, error) {
	if _, err := s.GenerateDues(ctx, cpf); err != nil {
		if !errors.Is(err, ErrPlayerNotBillable) {
			return nil, err
		}
		// Non-billable players still see previously created items.
	}

	items, err := s.financeRepo.ListItemsByOwner(ctx, cpf)
	if err != nil {
		return nil, err
	}

	result := &ItemsResult{Items: items}
	for _, item := range items {
		switch item.Status {
		case models.ItemStatusPending:
			result.Summary.TotalPending += item.Amount
			result.Summary.PendingCount++
		case models.ItemStatusOverdue:
			result.Summary.TotalOverdue += item.Amount
			result.Summary.PendingCount++
		case models.ItemStatusPaid:
			result.Summary.TotalPaid += item.Amount
		}
	}
	return result, nil
}

// MarkOverdue flips PENDING items referencing months before the current
// one to OVERDUE. Invoked by the daily sweep job.
func (s *FinanceService) MarkOverdue(ctx context.Context) (int64, error) {
	cutoff := firstOfMonth(s.now())
	updated, err := s.financeRepo.MarkOverdue(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		log.Printf("⏰ Marked %d item(s) overdue", updated)
	}
	return updated, nil
}
