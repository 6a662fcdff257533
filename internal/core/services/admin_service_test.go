package services

import (
	"context"
	"errors"
	"testing"

	"afps-backend/internal/adapters/persistence/models"
)

func newTestAdminService() (*AdminService, *mockConfigRepo, *mockExpenseRepo, *mockFinanceRepo) {
	configRepo := newMockConfigRepo()
	expenseRepo := newMockExpenseRepo()
	financeRepo := newMockFinanceRepo()
	svc := NewAdminService(configRepo, expenseRepo, financeRepo, &mockAuditRepo{})
	return svc, configRepo, expenseRepo, financeRepo
}

func TestUpdateConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("merges only the provided fields", func(t *testing.T) {
		svc, configRepo, _, _ := newTestAdminService()
		fee := 75.0

		cfg, err := svc.UpdateConfig(ctx, &UpdateConfigInput{MonthlyFeeAmount: &fee}, "00011122233")
		if err != nil {
			t.Fatalf("UpdateConfig failed: %v", err)
		}
		if cfg.MonthlyFeeAmount != 75 {
			t.Errorf("expected fee 75, got %.2f", cfg.MonthlyFeeAmount)
		}
		// Untouched fields keep their values
		if cfg.YellowCardFineAmount != 10 || cfg.PixKey != "financeiro@afps.com.br" {
			t.Errorf("unrelated fields changed: %+v", cfg)
		}
		if configRepo.cfg.MonthlyFeeAmount != 75 {
			t.Error("change not persisted")
		}
	})

	t.Run("rejects non positive amounts", func(t *testing.T) {
		svc, _, _, _ := newTestAdminService()
		zero := 0.0
		if _, err := svc.UpdateConfig(ctx, &UpdateConfigInput{RedCardFineAmount: &zero}, "00011122233"); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("missing settings row", func(t *testing.T) {
		svc, configRepo, _, _ := newTestAdminService()
		configRepo.cfg = nil
		if _, err := svc.GetConfig(ctx); !errors.Is(err, ErrConfigNotSeeded) {
			t.Errorf("expected ErrConfigNotSeeded, got %v", err)
		}
	})
}

func TestExpenses(t *testing.T) {
	ctx := context.Background()

	t.Run("create, update, delete", func(t *testing.T) {
		svc, _, expenseRepo, _ := newTestAdminService()

		expense, err := svc.CreateExpense(ctx, &ExpenseInput{
			Description: "Field rental August",
			Amount:      300,
			Date:        "2026-08-01",
			Category:    "field",
		}, "00011122233")
		if err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if expense.RecordedBy != "00011122233" {
			t.Errorf("expected recorder tracked, got %q", expense.RecordedBy)
		}

		updated, err := svc.UpdateExpense(ctx, expense.ID, &ExpenseInput{
			Description: "Field rental August",
			Amount:      350,
			Date:        "2026-08-01",
			Category:    "field",
		}, "00011122233")
		if err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}
		if updated.Amount != 350 {
			t.Errorf("expected amount 350, got %.2f", updated.Amount)
		}

		if err := svc.DeleteExpense(ctx, expense.ID, "00011122233"); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if len(expenseRepo.expenses) != 0 {
			t.Error("expense not deleted")
		}
		if err := svc.DeleteExpense(ctx, expense.ID, "00011122233"); !errors.Is(err, ErrExpenseNotFound) {
			t.Errorf("expected ErrExpenseNotFound, got %v", err)
		}
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		svc, _, _, _ := newTestAdminService()

		if _, err := svc.CreateExpense(ctx, &ExpenseInput{Amount: -5, Date: "2026-08-01"}, "x"); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("expected ErrInvalidAmount, got %v", err)
		}
		if _, err := svc.CreateExpense(ctx, &ExpenseInput{Amount: 10, Date: "08/01/2026"}, "x"); err == nil {
			t.Error("expected a date parse error")
		}
	})
}

func TestTransparency(t *testing.T) {
	ctx := context.Background()
	svc, _, expenseRepo, financeRepo := newTestAdminService()

	financeRepo.seedItem(models.PayableItem{
		OwnerCPF: "11122233344", Kind: models.ItemMonthlyFee,
		DedupKey: "11122233344|MONTHLY_FEE|2026-07",
		Amount:   50, Status: models.ItemStatusPaid,
	})
	financeRepo.seedItem(models.PayableItem{
		OwnerCPF: "11122233344", Kind: models.ItemMonthlyFee,
		DedupKey: "11122233344|MONTHLY_FEE|2026-08",
		Amount:   50, Status: models.ItemStatusPending, // pending money is not collected
	})
	expenseRepo.Create(ctx, &models.Expense{Description: "Balls", Amount: 120})

	report, err := svc.Transparency(ctx)
	if err != nil {
		t.Fatalf("Transparency failed: %v", err)
	}
	if report.TotalCollected != 50 {
		t.Errorf("expected collected 50, got %.2f", report.TotalCollected)
	}
	if report.TotalExpenses != 120 {
		t.Errorf("expected expenses 120, got %.2f", report.TotalExpenses)
	}
	if report.Balance != -70 {
		t.Errorf("expected balance -70, got %.2f", report.Balance)
	}
}
