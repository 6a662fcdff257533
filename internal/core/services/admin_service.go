package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"afps-backend/internal/adapters/persistence/models"
	"afps-backend/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Admin errors
var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrInvalidAmount   = errors.New("amount must be positive")
)

// AdminService handles association settings, expenses and the
// transparency report
type AdminService struct {
	configRepo  repositories.ConfigRepository
	expenseRepo repositories.ExpenseRepository
	financeRepo repositories.FinanceRepository
	auditRepo   repositories.AuditLogRepository
}

// NewAdminService creates a new admin service
func NewAdminService(
	configRepo repositories.ConfigRepository,
	expenseRepo repositories.ExpenseRepository,
	financeRepo repositories.FinanceRepository,
	auditRepo repositories.AuditLogRepository,
) *AdminService {
	return &AdminService{
		configRepo:  configRepo,
		expenseRepo: expenseRepo,
		financeRepo: financeRepo,
		auditRepo:   auditRepo,
	}
}

// GetConfig returns the association settings
func (s *AdminService) GetConfig(ctx context.Context) (*models.AppConfig, error) {
	cfg, err := s.configRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfigNotSeeded
		}
		return nil, err
	}
	return cfg, nil
}

// UpdateConfigInput carries editable settings fields
type UpdateConfigInput struct {
	PixKey               string   `json:"pix_key"`
	MonthlyFeeAmount     *float64 `json:"monthly_fee_amount"`
	YellowCardFineAmount *float64 `json:"yellow_card_fine_amount"`
	RedCardFineAmount    *float64 `json:"red_card_fine_amount"`
	PayeeName            string   `json:"payee_name"`
	PayeeCity            string   `json:"payee_city"`
}

// UpdateConfig edits the association settings. New amounts apply to
// items generated after the change; existing items keep their price.
func (s *AdminService) UpdateConfig(ctx context.Context, input *UpdateConfigInput, updatedBy string) (*models.AppConfig, error) {
	cfg, err := s.GetConfig(ctx)
	if err != nil {
		return nil, err
	}

	if input.PixKey != "" {
		cfg.PixKey = input.PixKey
	}
	if input.MonthlyFeeAmount != nil {
		if *input.MonthlyFeeAmount <= 0 {
			return nil, ErrInvalidAmount
		}
		cfg.MonthlyFeeAmount = *input.MonthlyFeeAmount
	}
	if input.YellowCardFineAmount != nil {
		if *input.YellowCardFineAmount <= 0 {
			return nil, ErrInvalidAmount
		}
		cfg.YellowCardFineAmount = *input.YellowCardFineAmount
	}
	if input.RedCardFineAmount != nil {
		if *input.RedCardFineAmount <= 0 {
			return nil, ErrInvalidAmount
		}
		cfg.RedCardFineAmount = *input.RedCardFineAmount
	}
	if input.PayeeName != "" {
		cfg.PayeeName = input.PayeeName
	}
	if input.PayeeCity != "" {
		cfg.PayeeCity = input.PayeeCity
	}

	if err := s.configRepo.Update(ctx, cfg); err != nil {
		return nil, err
	}

	s.audit(ctx, "config.update", updatedBy, models.RoleAdmin, "")

	log.Printf("⚙️ Association settings updated by %s", maskCPF(updatedBy))
	return cfg, nil
}

// ExpenseInput creates or updates an expense
type ExpenseInput struct {
	Description string  `json:"description" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Date        string  `json:"date" validate:"required"`
	Category    string  `json:"category" validate:"required"`
}

// CreateExpense records an association expense
func (s *AdminService) CreateExpense(ctx context.Context, input *ExpenseInput, recordedBy string) (*models.Expense, error) {
	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	date, err := ParseDate(input.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}

	expense := &models.Expense{
		Description: input.Description,
		Amount:      input.Amount,
		Date:        date,
		Category:    input.Category,
		RecordedBy:  recordedBy,
	}
	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, err
	}

	s.audit(ctx, "expense.create", recordedBy, models.RoleAdmin,
		fmt.Sprintf(`{"expense_id":%d,"amount":%.2f}`, expense.ID, expense.Amount))

	return expense, nil
}

// UpdateExpense edits an expense
func (s *AdminService) UpdateExpense(ctx context.Context, id uint, input *ExpenseInput, updatedBy string) (*models.Expense, error) {
	expense, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}

	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	date, err := ParseDate(input.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}

	expense.Description = input.Description
	expense.Amount = input.Amount
	expense.Date = date
	expense.Category = input.Category

	if err := s.expenseRepo.Update(ctx, expense); err != nil {
		return nil, err
	}

	s.audit(ctx, "expense.update", updatedBy, models.RoleAdmin,
		fmt.Sprintf(`{"expense_id":%d}`, id))

	return expense, nil
}

// DeleteExpense removes an expense
func (s *AdminService) DeleteExpense(ctx context.Context, id uint, deletedBy string) error {
	if _, err := s.expenseRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExpenseNotFound
		}
		return err
	}
	if err := s.expenseRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit(ctx, "expense.delete", deletedBy, models.RoleAdmin,
		fmt.Sprintf(`{"expense_id":%d}`, id))

	return nil
}

// ListExpenses lists expenses, newest first
func (s *AdminService) ListExpenses(ctx context.Context, offset, limit int) ([]*models.Expense, int64, error) {
	return s.expenseRepo.List(ctx, offset, limit)
}

// TransparencyReport is the public collected-vs-spent summary
type TransparencyReport struct {
	TotalCollected float64 `json:"total_collected"`
	TotalExpenses  float64 `json:"total_expenses"`
	Balance        float64 `json:"balance"`
}

// Transparency builds the public financial summary
func (s *AdminService) Transparency(ctx context.Context) (*TransparencyReport, error) {
	collected, err := s.financeRepo.SumPaidTotal(ctx)
	if err != nil {
		return nil, err
	}
	spent, err := s.expenseRepo.SumTotal(ctx)
	if err != nil {
		return nil, err
	}

	return &TransparencyReport{
		TotalCollected: collected,
		TotalExpenses:  spent,
		Balance:        collected - spent,
	}, nil
}

// ListLogs lists audit log entries, newest first
func (s *AdminService) ListLogs(ctx context.Context, offset, limit int) ([]*models.AuditLog, int64, error) {
	return s.auditRepo.List(ctx, offset, limit)
}

// audit records an audit entry for this service
func (s *AdminService) audit(ctx context.Context, action, cpf, role, details string) {
	writeAudit(ctx, s.auditRepo, action, cpf, role, details)
}
