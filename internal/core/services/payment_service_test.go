package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"afps-backend/internal/adapters/persistence/models"
	"afps-backend/internal/config"
)

func newTestPaymentService(gateway *mockGateway) (*PaymentService, *mockPlayerRepo, *mockFinanceRepo) {
	playerRepo := newMockPlayerRepo()
	financeRepo := newMockFinanceRepo()
	configRepo := newMockConfigRepo()
	cfg := &config.Config{
		MercadoPago: config.MercadoPagoConfig{WebhookURL: "https://api.afps.com.br/api/v1/webhooks/mercadopago"},
	}
	svc := NewPaymentService(playerRepo, financeRepo, configRepo, &mockAuditRepo{}, gateway, cfg)
	svc.now = func() time.Time { return time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC) }
	return svc, playerRepo, financeRepo
}

func seedPendingItems(financeRepo *mockFinanceRepo, cpf string, amounts ...float64) []uint {
	ids := make([]uint, 0, len(amounts))
	for i, amount := range amounts {
		item := financeRepo.seedItem(models.PayableItem{
			OwnerCPF: cpf,
			Kind:     models.ItemMonthlyFee,
			DedupKey: MonthlyDueKey(cpf, time.Date(2026, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)),
			Amount:   amount,
			Status:   models.ItemStatusPending,
		})
		ids = append(ids, item.ID)
	}
	return ids
}

func TestCreateCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("bundles items into one charge", func(t *testing.T) {
		gateway := &mockGateway{charge: &ChargeResult{
			PaymentID:    987654,
			QRCode:       "00020126...",
			QRCodeBase64: "data:image/png;base64,abc",
			TicketURL:    "https://mp.example/ticket",
		}}
		svc, playerRepo, financeRepo := newTestPaymentService(gateway)
		playerRepo.players["11122233344"] = activePlayer("11122233344", time.Now())
		ids := seedPendingItems(financeRepo, "11122233344", 50, 10)

		result, err := svc.CreateCheckout(ctx, "11122233344", ids)
		if err != nil {
			t.Fatalf("CreateCheckout failed: %v", err)
		}
		if result.Total != 60 {
			t.Errorf("expected total 60, got %.2f", result.Total)
		}
		if result.QRCode == "" || result.QRCodeBase64 == "" {
			t.Errorf("expected QR payloads in result: %+v", result)
		}

		tx := financeRepo.transactions[result.TransactionID]
		if tx == nil {
			t.Fatal("transaction not persisted")
		}
		if tx.GatewayPaymentID == nil || *tx.GatewayPaymentID != 987654 {
			t.Errorf("gateway payment id not attached: %+v", tx)
		}
		if gateway.lastCharge.ExternalReference != "1" {
			t.Errorf("expected external reference %q, got %q", "1", gateway.lastCharge.ExternalReference)
		}
		if gateway.lastCharge.PayerDocument != "11122233344" {
			t.Errorf("expected payer document to carry the CPF, got %q", gateway.lastCharge.PayerDocument)
		}
	})

	t.Run("empty selection", func(t *testing.T) {
		svc, _, _ := newTestPaymentService(&mockGateway{})
		if _, err := svc.CreateCheckout(ctx, "11122233344", nil); !errors.Is(err, ErrNoItemsSelected) {
			t.Errorf("expected ErrNoItemsSelected, got %v", err)
		}
	})

	t.Run("rejects items owned by someone else", func(t *testing.T) {
		gateway := &mockGateway{}
		svc, playerRepo, financeRepo := newTestPaymentService(gateway)
		playerRepo.players["11122233344"] = activePlayer("11122233344", time.Now())
		otherIDs := seedPendingItems(financeRepo, "55566677788", 50)

		if _, err := svc.CreateCheckout(ctx, "11122233344", otherIDs); !errors.Is(err, ErrItemsUnavailable) {
			t.Errorf("expected ErrItemsUnavailable, got %v", err)
		}
		if gateway.chargeCalls != 0 {
			t.Errorf("gateway must not be called for a rejected selection")
		}
	})

	t.Run("rejects already paid items", func(t *testing.T) {
		svc, playerRepo, financeRepo := newTestPaymentService(&mockGateway{})
		playerRepo.players["11122233344"] = activePlayer("11122233344", time.Now())
		item := financeRepo.seedItem(models.PayableItem{
			OwnerCPF: "11122233344", Kind: models.ItemMonthlyFee,
			DedupKey: "11122233344|MONTHLY_FEE|2026-07",
			Amount:   50, Status: models.ItemStatusPaid,
		})

		if _, err := svc.CreateCheckout(ctx, "11122233344", []uint{item.ID}); !errors.Is(err, ErrItemsUnavailable) {
			t.Errorf("expected ErrItemsUnavailable, got %v", err)
		}
	})

	t.Run("gateway failure rolls the transaction back", func(t *testing.T) {
		gateway := &mockGateway{chargeErr: errMockGateway}
		svc, playerRepo, financeRepo := newTestPaymentService(gateway)
		playerRepo.players["11122233344"] = activePlayer("11122233344", time.Now())
		ids := seedPendingItems(financeRepo, "11122233344", 50)

		if _, err := svc.CreateCheckout(ctx, "11122233344", ids); !errors.Is(err, ErrGatewayUnavailable) {
			t.Errorf("expected ErrGatewayUnavailable, got %v", err)
		}
		if len(financeRepo.transactions) != 0 {
			t.Errorf("expected transaction rolled back, %d remain", len(financeRepo.transactions))
		}
		// Items stay payable for the next attempt
		pending, _ := financeRepo.GetPendingItems(ctx, "11122233344", ids)
		if len(pending) != 1 {
			t.Errorf("expected item still pending, got %d", len(pending))
		}
	})

	t.Run("empty charge response rolls back too", func(t *testing.T) {
		gateway := &mockGateway{charge: &ChargeResult{PaymentID: 0, QRCode: ""}}
		svc, playerRepo, financeRepo := newTestPaymentService(gateway)
		playerRepo.players["11122233344"] = activePlayer("11122233344", time.Now())
		ids := seedPendingItems(financeRepo, "11122233344", 50)

		if _, err := svc.CreateCheckout(ctx, "11122233344", ids); !errors.Is(err, ErrGatewayUnavailable) {
			t.Errorf("expected ErrGatewayUnavailable, got %v", err)
		}
		if len(financeRepo.deletedTxIDs) != 1 {
			t.Errorf("expected 1 rollback delete, got %d", len(financeRepo.deletedTxIDs))
		}
	})
}

// settleSetup creates a player with one pending item already checked out
// as transaction #1 referencing gateway payment 987654.
func settleSetup(t *testing.T, gateway *mockGateway) (*PaymentService, *mockFinanceRepo) {
	t.Helper()
	createGateway := &mockGateway{charge: &ChargeResult{PaymentID: 987654, QRCode: "qr", QRCodeBase64: "b64"}}
	svc, playerRepo, financeRepo := newTestPaymentService(createGateway)
	playerRepo.players["11122233344"] = activePlayer("11122233344", time.Now())
	ids := seedPendingItems(financeRepo, "11122233344", 50)

	if _, err := svc.CreateCheckout(context.Background(), "11122233344", ids); err != nil {
		t.Fatalf("checkout setup failed: %v", err)
	}

	svc.gateway = gateway
	return svc, financeRepo
}

func TestHandlePaymentNotification(t *testing.T) {
	ctx := context.Background()
	approvedAt := time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)

	t.Run("approved payment settles the transaction", func(t *testing.T) {
		gateway := &mockGateway{payment: &PaymentInfo{
			PaymentID:         987654,
			Status:            "approved",
			ExternalReference: "1",
			Amount:            50,
			DateApproved:      &approvedAt,
		}}
		svc, financeRepo := settleSetup(t, gateway)

		if err := svc.HandlePaymentNotification(ctx, PaymentNotification{Type: "payment", PaymentID: 987654}); err != nil {
			t.Fatalf("HandlePaymentNotification failed: %v", err)
		}

		items, _ := financeRepo.ListItemsByOwner(ctx, "11122233344")
		for _, item := range items {
			if item.Status != models.ItemStatusPaid {
				t.Errorf("expected item PAID, got %s", item.Status)
			}
			if item.PaymentDate == nil || !item.PaymentDate.Equal(approvedAt) {
				t.Errorf("expected payment date %v, got %v", approvedAt, item.PaymentDate)
			}
		}
	})

	t.Run("duplicate delivery is acknowledged", func(t *testing.T) {
		gateway := &mockGateway{payment: &PaymentInfo{
			PaymentID: 987654, Status: "approved", ExternalReference: "1", Amount: 50,
		}}
		svc, _ := settleSetup(t, gateway)

		n := PaymentNotification{Type: "payment", PaymentID: 987654}
		if err := svc.HandlePaymentNotification(ctx, n); err != nil {
			t.Fatalf("first delivery failed: %v", err)
		}
		if err := svc.HandlePaymentNotification(ctx, n); err != nil {
			t.Errorf("duplicate delivery must be acknowledged, got %v", err)
		}
	})

	t.Run("non payment events are ignored", func(t *testing.T) {
		gateway := &mockGateway{}
		svc, _ := settleSetup(t, gateway)

		if err := svc.HandlePaymentNotification(ctx, PaymentNotification{Type: "plan", PaymentID: 1}); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
		if gateway.getCalls != 0 {
			t.Errorf("gateway must not be queried for non payment events")
		}
	})

	t.Run("unapproved status is acknowledged without settling", func(t *testing.T) {
		gateway := &mockGateway{payment: &PaymentInfo{
			PaymentID: 987654, Status: "pending", ExternalReference: "1",
		}}
		svc, financeRepo := settleSetup(t, gateway)

		if err := svc.HandlePaymentNotification(ctx, PaymentNotification{Type: "payment", PaymentID: 987654}); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
		items, _ := financeRepo.ListItemsByOwner(ctx, "11122233344")
		if items[0].Status != models.ItemStatusPending {
			t.Errorf("item must stay PENDING, got %s", items[0].Status)
		}
	})

	t.Run("malformed external reference is acknowledged", func(t *testing.T) {
		gateway := &mockGateway{payment: &PaymentInfo{
			PaymentID: 987654, Status: "approved", ExternalReference: "not-a-number",
		}}
		svc, _ := settleSetup(t, gateway)

		if err := svc.HandlePaymentNotification(ctx, PaymentNotification{Type: "payment", PaymentID: 987654}); err != nil {
			t.Errorf("a reference that can never resolve must be acknowledged, got %v", err)
		}
	})

	t.Run("gateway lookup failure propagates for retry", func(t *testing.T) {
		gateway := &mockGateway{paymentErr: errMockGateway}
		svc, _ := settleSetup(t, gateway)

		if err := svc.HandlePaymentNotification(ctx, PaymentNotification{Type: "payment", PaymentID: 987654}); err == nil {
			t.Error("expected an error so the gateway retries delivery")
		}
	})

	t.Run("settle failure propagates for retry", func(t *testing.T) {
		gateway := &mockGateway{payment: &PaymentInfo{
			PaymentID: 987654, Status: "approved", ExternalReference: "1",
		}}
		svc, financeRepo := settleSetup(t, gateway)
		financeRepo.failSettle = true

		if err := svc.HandlePaymentNotification(ctx, PaymentNotification{Type: "payment", PaymentID: 987654}); err == nil {
			t.Error("expected an error so the gateway retries delivery")
		}
	})

	t.Run("unknown transaction is acknowledged", func(t *testing.T) {
		gateway := &mockGateway{payment: &PaymentInfo{
			PaymentID: 987654, Status: "approved", ExternalReference: "42",
		}}
		svc, _ := settleSetup(t, gateway)

		if err := svc.HandlePaymentNotification(ctx, PaymentNotification{Type: "payment", PaymentID: 987654}); err != nil {
			t.Errorf("stale reference must be acknowledged, got %v", err)
		}
	})
}

func TestStaticPix(t *testing.T) {
	ctx := context.Background()
	svc, playerRepo, _ := newTestPaymentService(&mockGateway{})
	playerRepo.players["11122233344"] = activePlayer("11122233344", time.Now())

	result, err := svc.StaticPix(ctx, "11122233344")
	if err != nil {
		t.Fatalf("StaticPix failed: %v", err)
	}
	if !strings.HasPrefix(result.Payload, "000201") {
		t.Errorf("payload must start with the EMV header, got %q", result.Payload)
	}
	if !strings.Contains(result.Payload, "financeiro@afps.com.br") {
		t.Errorf("payload must carry the configured key: %q", result.Payload)
	}
	if result.Amount != 50 {
		t.Errorf("expected monthly fee amount 50, got %.2f", result.Amount)
	}
	if !strings.HasPrefix(result.QRCodeBase64, "data:image/png;base64,") {
		t.Errorf("expected a data URL QR code, got %q", result.QRCodeBase64[:30])
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		name  string
		first string
		last  string
	}{
		{"Carlos Silva", "Carlos", "Silva"},
		{"Carlos da Silva Souza", "Carlos", "da Silva Souza"},
		{"Carlos", "Carlos", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		first, last := splitName(tt.name)
		if first != tt.first || last != tt.last {
			t.Errorf("splitName(%q) = %q, %q; want %q, %q", tt.name, first, last, tt.first, tt.last)
		}
	}
}
