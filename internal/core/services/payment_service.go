package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"afps-backend/internal/adapters/persistence/models"
	"afps-backend/internal/adapters/persistence/repositories"
	"afps-backend/internal/config"
	"afps-backend/internal/pkg/pix"

	"gorm.io/gorm"
)

// Payment errors
var (
	ErrNoItemsSelected    = errors.New("no items selected for checkout")
	ErrItemsUnavailable   = errors.New("one or more items are not pending or not yours")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// chargeExpiry is how long a PIX charge stays payable
const chargeExpiry = 30 * time.Minute

// PaymentService owns checkout aggregation and webhook reconciliation
type PaymentService struct {
	playerRepo  repositories.PlayerRepository
	financeRepo repositories.FinanceRepository
	configRepo  repositories.ConfigRepository
	auditRepo   repositories.AuditLogRepository
	gateway     PaymentGateway
	cfg         *config.Config

	now func() time.Time
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	playerRepo repositories.PlayerRepository,
	financeRepo repositories.FinanceRepository,
	configRepo repositories.ConfigRepository,
	auditRepo repositories.AuditLogRepository,
	gateway PaymentGateway,
	cfg *config.Config,
) *PaymentService {
	return &PaymentService{
		playerRepo:  playerRepo,
		financeRepo: financeRepo,
		configRepo:  configRepo,
		auditRepo:   auditRepo,
		gateway:     gateway,
		cfg:         cfg,
		now:         time.Now,
	}
}

// CheckoutResult is what the player needs to pay a created charge
type CheckoutResult struct {
	TransactionID uint    `json:"transaction_id"`
	Total         float64 `json:"total"`
	QRCode        string  `json:"qr_code"`
	QRCodeBase64  string  `json:"qr_code_base64"`
	TicketURL     string  `json:"ticket_url,omitempty"`
}

// CreateCheckout bundles the player's selected PENDING items into one
// transaction and requests a single PIX charge for the sum. Any item
// that is missing, already paid, or owned by someone else rejects the
// whole call. A gateway failure rolls the transaction back and leaves
// every item payable.
func (s *PaymentService) CreateCheckout(ctx context.Context, cpf string, itemIDs []uint) (*CheckoutResult, error) {
	// 1. Validate selection
	if len(itemIDs) == 0 {
		return nil, ErrNoItemsSelected
	}

	player, err := s.playerRepo.GetByCPF(ctx, cpf)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}

	// 2. Resolve the ids against items that are PENDING and owned by cpf.
	// Any shortfall means a stale or forged selection.
	items, err := s.financeRepo.GetPendingItems(ctx, cpf, itemIDs)
	if err != nil {
		return nil, err
	}
	if len(items) != len(itemIDs) {
		return nil, ErrItemsUnavailable
	}

	total := 0.0
	for _, item := range items {
		total += item.Amount
	}

	// 3. Create the transaction with its item links
	tx := &models.Transaction{
		OwnerCPF:      cpf,
		TotalAmount:   total,
		PaymentMethod: models.PaymentMethodPix,
		PaymentDate:   s.now(),
	}
	if err := s.financeRepo.CreateTransaction(ctx, tx, items); err != nil {
		return nil, err
	}

	// 4. Request the PIX charge. external_reference carries our
	// transaction id so the webhook can find its way back.
	firstName, lastName := splitName(player.Name)
	charge, err := s.gateway.CreatePixCharge(ctx, ChargeRequest{
		Amount:            total,
		Description:       fmt.Sprintf("AFPS: %d item(s)", len(items)),
		ExternalReference: strconv.FormatUint(uint64(tx.ID), 10),
		ExpiresAt:         s.now().Add(chargeExpiry),
		PayerEmail:        player.Email,
		PayerFirstName:    firstName,
		PayerLastName:     lastName,
		PayerDocument:     player.CPF,
		NotificationURL:   s.cfg.MercadoPago.WebhookURL,
	})
	if err != nil || charge == nil || charge.PaymentID == 0 || charge.QRCode == "" {
		// Compensating rollback: without a live charge the transaction
		// must not exist, and the items stay payable.
		if delErr := s.financeRepo.DeleteTransaction(ctx, tx.ID); delErr != nil {
			log.Printf("❌ Failed to roll back transaction #%d: %v", tx.ID, delErr)
		}
		log.Printf("❌ PIX charge creation failed for %s: %v", maskCPF(cpf), err)
		return nil, ErrGatewayUnavailable
	}

	// 5. Persist the gateway's payment id
	if err := s.financeRepo.AttachGatewayPaymentID(ctx, tx.ID, charge.PaymentID); err != nil {
		return nil, err
	}

	s.audit(ctx, "payment.checkout", cpf, player.Role,
		fmt.Sprintf(`{"transaction_id":%d,"total":%.2f,"items":%d}`, tx.ID, total, len(items)))

	log.Printf("💳 Checkout created: tx #%d, R$ %.2f, %d item(s) for %s", tx.ID, total, len(items), maskCPF(cpf))

	return &CheckoutResult{
		TransactionID: tx.ID,
		Total:         total,
		QRCode:        charge.QRCode,
		QRCodeBase64:  charge.QRCodeBase64,
		TicketURL:     charge.TicketURL,
	}, nil
}

// PaymentNotification is the parsed gateway webhook body
type PaymentNotification struct {
	Type      string
	PaymentID int64
}

// HandlePaymentNotification reconciles a gateway webhook. The body's
// status is never trusted: the authoritative state is re-fetched from
// the gateway by payment id. Only transient failures return an error
// (so the caller answers 5xx and the gateway retries); every other
// outcome is acknowledged.
func (s *PaymentService) HandlePaymentNotification(ctx context.Context, n PaymentNotification) error {
	// 1. Only payment events matter
	if n.Type != "payment" {
		return nil
	}

	// 2. Authoritative status fetch
	info, err := s.gateway.GetPayment(ctx, n.PaymentID)
	if err != nil {
		log.Printf("❌ Webhook: payment %d lookup failed: %v", n.PaymentID, err)
		return fmt.Errorf("payment lookup: %w", err)
	}

	// 3. Anything not approved yet will be notified again later
	if info.Status != "approved" {
		log.Printf("🔔 Webhook: payment %d status %q, ignoring", n.PaymentID, info.Status)
		return nil
	}

	// 4. Correlate back to our transaction. A malformed reference can
	// never succeed on retry, so it is acknowledged, not errored.
	txID, err := strconv.ParseUint(info.ExternalReference, 10, 64)
	if err != nil || txID == 0 {
		log.Printf("⚠️ Webhook: payment %d carries unusable external_reference %q", n.PaymentID, info.ExternalReference)
		return nil
	}

	paidAt := s.now()
	if info.DateApproved != nil {
		paidAt = *info.DateApproved
	}

	// 5. Atomic settle. A missing transaction or already-paid items are
	// benign no-ops (duplicate deliveries, stale references).
	settled, err := s.financeRepo.SettleTransaction(ctx, uint(txID), paidAt, models.PaymentMethodPix)
	if err != nil {
		log.Printf("❌ Webhook: settling tx #%d failed: %v", txID, err)
		return fmt.Errorf("settle transaction: %w", err)
	}
	if !settled {
		log.Printf("🔔 Webhook: tx #%d already settled or unknown, ignoring", txID)
		return nil
	}

	s.audit(ctx, "payment.settled", "", "",
		fmt.Sprintf(`{"transaction_id":%d,"payment_id":%d,"amount":%.2f}`, txID, n.PaymentID, info.Amount))

	log.Printf("✅ Webhook: tx #%d settled (payment %d, R$ %.2f)", txID, n.PaymentID, info.Amount)
	return nil
}

// StaticPixResult carries the manual PIX payment data for a player
type StaticPixResult struct {
	Payload      string  `json:"payload"`
	QRCodeBase64 string  `json:"qr_code_base64"`
	Amount       float64 `json:"amount"`
}

// StaticPix builds the static BRCode for the configured monthly fee,
// for players who pay manually instead of through checkout.
func (s *PaymentService) StaticPix(ctx context.Context, cpf string) (*StaticPixResult, error) {
	player, err := s.playerRepo.GetByCPF(ctx, cpf)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}

	cfg, err := s.configRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfigNotSeeded
		}
		return nil, err
	}

	code := pix.BRCode{
		Key:       cfg.PixKey,
		PayeeName: cfg.PayeeName,
		PayeeCity: cfg.PayeeCity,
		Amount:    cfg.MonthlyFeeAmount,
		TxID:      fmt.Sprintf("AFPS%s", player.CPF),
	}

	payload, err := code.Payload()
	if err != nil {
		return nil, err
	}
	qr, err := pix.QRCodeBase64(payload)
	if err != nil {
		return nil, err
	}

	return &StaticPixResult{
		Payload:      payload,
		QRCodeBase64: qr,
		Amount:       cfg.MonthlyFeeAmount,
	}, nil
}

// ListTransactions lists a player's checkout transactions
func (s *PaymentService) ListTransactions(ctx context.Context, cpf string) ([]models.Transaction, error) {
	return s.financeRepo.ListTransactionsByOwner(ctx, cpf)
}

// splitName splits a full name into gateway first/last fields
func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// audit records an audit entry for this service
func (s *PaymentService) audit(ctx context.Context, action, cpf, role, details string) {
	writeAudit(ctx, s.auditRepo, action, cpf, role, details)
}
