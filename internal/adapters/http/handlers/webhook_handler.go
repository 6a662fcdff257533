package handlers

import (
	"log"

	"afps-backend/internal/core/services"
	"afps-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// WebhookHandler handles payment gateway notifications
type WebhookHandler struct {
	paymentService *services.PaymentService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(paymentService *services.PaymentService) *WebhookHandler {
	return &WebhookHandler{paymentService: paymentService}
}

// webhookBody is the gateway's notification payload
type webhookBody struct {
	Type string `json:"type"`
	Data struct {
		ID int64 `json:"id,string"`
	} `json:"data"`
}

// MercadoPago receives a payment notification
// @Summary Payment webhook
// @Description Reconcile a Mercado Pago payment notification. Only transient failures answer 5xx; everything else is acknowledged so the gateway stops retrying.
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /webhooks/mercadopago [post]
func (h *WebhookHandler) MercadoPago(c *fiber.Ctx) error {
	var body webhookBody
	if err := c.BodyParser(&body); err != nil {
		// An unparseable body can never succeed on retry: acknowledge it.
		log.Printf("⚠️ Webhook: unparseable body: %v", err)
		return response.Success(c, "ignored", nil)
	}

	notification := services.PaymentNotification{
		Type:      body.Type,
		PaymentID: body.Data.ID,
	}

	if err := h.paymentService.HandlePaymentNotification(c.Context(), notification); err != nil {
		// Transient failure: 5xx tells the gateway to retry later.
		return response.InternalServerError(c, "temporary failure, retry")
	}

	return response.Success(c, "ok", nil)
}
