// Package mercadopago implements the payment gateway using the official SDK.
package mercadopago

import (
	"context"
	"fmt"

	"afps-backend/internal/core/services"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
)

// Gateway implements services.PaymentGateway with Mercado Pago.
type Gateway struct {
	client payment.Client
}

// NewGateway creates a gateway bound to one access token
func NewGateway(accessToken string) (*Gateway, error) {
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return &Gateway{client: payment.NewClient(cfg)}, nil
}

// CreatePixCharge creates a PIX payment and returns its QR data
func (g *Gateway) CreatePixCharge(ctx context.Context, req services.ChargeRequest) (*services.ChargeResult, error) {
	expiresAt := req.ExpiresAt

	request := payment.Request{
		TransactionAmount: req.Amount,
		Description:       req.Description,
		PaymentMethodID:   "pix",
		ExternalReference: req.ExternalReference,
		DateOfExpiration:  &expiresAt,
		NotificationURL:   req.NotificationURL,
		Payer: &payment.PayerRequest{
			Email:     req.PayerEmail,
			FirstName: req.PayerFirstName,
			LastName:  req.PayerLastName,
			Identification: &payment.IdentificationRequest{
				Type:   "CPF",
				Number: req.PayerDocument,
			},
		},
	}

	result, err := g.client.Create(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("create pix charge: %w", err)
	}

	charge := &services.ChargeResult{
		PaymentID: int64(result.ID),
	}
	if result.PointOfInteraction.TransactionData.QRCode != "" {
		charge.QRCode = result.PointOfInteraction.TransactionData.QRCode
		charge.QRCodeBase64 = result.PointOfInteraction.TransactionData.QRCodeBase64
		charge.TicketURL = result.PointOfInteraction.TransactionData.TicketURL
	}
	return charge, nil
}

// GetPayment fetches the authoritative payment state by id
func (g *Gateway) GetPayment(ctx context.Context, paymentID int64) (*services.PaymentInfo, error) {
	result, err := g.client.Get(ctx, int(paymentID))
	if err != nil {
		return nil, fmt.Errorf("get payment %d: %w", paymentID, err)
	}

	info := &services.PaymentInfo{
		PaymentID:         paymentID,
		Status:            result.Status,
		StatusDetail:      result.StatusDetail,
		ExternalReference: result.ExternalReference,
		Amount:            result.TransactionAmount,
		PaymentMethod:     result.PaymentMethodID,
	}
	if !result.DateApproved.IsZero() {
		approved := result.DateApproved
		info.DateApproved = &approved
	}
	return info, nil
}
