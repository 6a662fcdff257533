package services

import (
	"context"
	"time"
)

// ChargeRequest describes a PIX charge to create at the gateway
type ChargeRequest struct {
	Amount            float64
	Description       string
	ExternalReference string
	ExpiresAt         time.Time
	PayerEmail        string
	PayerFirstName    string
	PayerLastName     string
	PayerDocument     string
	NotificationURL   string
}

// ChargeResult is the gateway's answer to a charge creation
type ChargeResult struct {
	PaymentID    int64
	QRCode       string // copy-paste PIX payload
	QRCodeBase64 string // QR image, base64 PNG
	TicketURL    string
}

// PaymentInfo is the authoritative state of a payment at the gateway
type PaymentInfo struct {
	PaymentID         int64
	Status            string
	StatusDetail      string
	ExternalReference string
	Amount            float64
	PaymentMethod     string
	DateApproved      *time.Time
}

// PaymentGateway abstracts the payment provider. The webhook reconciler
// always re-fetches through GetPayment instead of trusting notification
// bodies.
type PaymentGateway interface {
	CreatePixCharge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	GetPayment(ctx context.Context, paymentID int64) (*PaymentInfo, error)
}
