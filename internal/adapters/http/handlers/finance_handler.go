package handlers

import (
	"errors"

	"afps-backend/internal/core/services"
	"afps-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// FinanceHandler handles the player-facing billing endpoints
type FinanceHandler struct {
	financeService *services.FinanceService
	paymentService *services.PaymentService
}

// NewFinanceHandler creates a new finance handler
func NewFinanceHandler(
	financeService *services.FinanceService,
	paymentService *services.PaymentService,
) *FinanceHandler {
	return &FinanceHandler{
		financeService: financeService,
		paymentService: paymentService,
	}
}

// CheckoutRequest represents the checkout body
type CheckoutRequest struct {
	ItemIDs []uint `json:"item_ids"`
}

// ListItems lists the caller's payable items
// @Summary List payable items
// @Description Generate any missing monthly dues, then list the caller's items with a totals summary
// @Tags Finance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /finance/items [get]
func (h *FinanceHandler) ListItems(c *fiber.Ctx) error {
	cpf, ok := c.Locals("cpf").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	result, err := h.financeService.ListItems(c.Context(), cpf)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPlayerNotFound):
			return response.NotFound(c, "Player not found")
		case errors.Is(err, services.ErrConfigNotSeeded):
			return response.InternalServerError(c, "Association settings missing")
		default:
			return response.InternalServerError(c, "Failed to list items")
		}
	}

	return response.Success(c, "Items retrieved successfully", result)
}

// Checkout bundles selected items into one PIX charge
// @Summary Create checkout
// @Description Bundle the caller's selected PENDING items into a single PIX charge
// @Tags Finance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CheckoutRequest true "Item ids to pay"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /finance/checkout [post]
func (h *FinanceHandler) Checkout(c *fiber.Ctx) error {
	cpf, ok := c.Locals("cpf").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.paymentService.CreateCheckout(c.Context(), cpf, req.ItemIDs)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoItemsSelected):
			return response.BadRequest(c, "Select at least one item")
		case errors.Is(err, services.ErrItemsUnavailable):
			return response.Conflict(c, "One or more items are no longer payable")
		case errors.Is(err, services.ErrPlayerNotFound):
			return response.NotFound(c, "Player not found")
		case errors.Is(err, services.ErrGatewayUnavailable):
			return response.Error(c, fiber.StatusBadGateway, "Payment service unavailable, try again")
		default:
			return response.InternalServerError(c, "Failed to create checkout")
		}
	}

	return response.Created(c, "Checkout created successfully", result)
}

// ListTransactions lists the caller's checkout transactions
// @Summary List transactions
// @Description List the caller's checkout transactions with their items
// @Tags Finance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /finance/transactions [get]
func (h *FinanceHandler) ListTransactions(c *fiber.Ctx) error {
	cpf, ok := c.Locals("cpf").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	txs, err := h.paymentService.ListTransactions(c.Context(), cpf)
	if err != nil {
		return response.InternalServerError(c, "Failed to list transactions")
	}

	return response.Success(c, "Transactions retrieved successfully", txs)
}
