package handlers

import (
	"errors"

	"afps-backend/internal/core/services"
	"afps-backend/internal/pkg/pagination"
	"afps-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PlayerHandler handles player management endpoints
type PlayerHandler struct {
	playerService  *services.PlayerService
	matchService   *services.MatchService
	paymentService *services.PaymentService
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(
	playerService *services.PlayerService,
	matchService *services.MatchService,
	paymentService *services.PaymentService,
) *PlayerHandler {
	return &PlayerHandler{
		playerService:  playerService,
		matchService:   matchService,
		paymentService: paymentService,
	}
}

// AuthorizeCPFRequest represents the CPF authorization body
type AuthorizeCPFRequest struct {
	CPF string `json:"cpf"`
}

// AuthorizeCPF pre-authorizes a CPF for registration
// @Summary Authorize a CPF
// @Description Create an authorized_unregistered player record for a CPF
// @Tags Players
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AuthorizeCPFRequest true "CPF to authorize"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /players/authorize [post]
func (h *PlayerHandler) AuthorizeCPF(c *fiber.Ctx) error {
	var req AuthorizeCPFRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.CPF == "" {
		return response.BadRequest(c, "CPF is required")
	}

	adminCPF, _ := c.Locals("cpf").(string)

	player, err := h.playerService.AuthorizeCPF(c.Context(), req.CPF, adminCPF)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCPF):
			return response.BadRequest(c, "Invalid CPF")
		case errors.Is(err, services.ErrCPFAlreadyExists):
			return response.Conflict(c, "CPF already registered")
		default:
			return response.InternalServerError(c, "Failed to authorize CPF")
		}
	}

	return response.Created(c, "CPF authorized successfully", player.ToResponse())
}

// List lists players
// @Summary List players
// @Description List players with optional status filter and pagination
// @Tags Players
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /players [get]
func (h *PlayerHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	status := c.Query("status")

	players, total, err := h.playerService.List(c.Context(), status, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list players")
	}

	responses := make([]interface{}, 0, len(players))
	for _, p := range players {
		responses = append(responses, p.ToResponse())
	}

	return response.Success(c, "Players retrieved successfully", pagination.NewResponse(responses, params, total))
}

// Get gets one player
// @Summary Get player
// @Description Get a player by CPF
// @Tags Players
// @Produce json
// @Security BearerAuth
// @Param cpf path string true "Player CPF"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /players/{cpf} [get]
func (h *PlayerHandler) Get(c *fiber.Ctx) error {
	player, err := h.playerService.GetByCPF(c.Context(), c.Params("cpf"))
	if err != nil {
		if errors.Is(err, services.ErrPlayerNotFound) {
			return response.NotFound(c, "Player not found")
		}
		return response.InternalServerError(c, "Failed to get player")
	}

	return response.Success(c, "Player retrieved successfully", player.ToResponse())
}

// Update edits a player's profile
// @Summary Update player
// @Description Update a player's profile fields
// @Tags Players
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param cpf path string true "Player CPF"
// @Param body body services.UpdateProfileInput true "Profile fields"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /players/{cpf} [put]
func (h *PlayerHandler) Update(c *fiber.Ctx) error {
	var input services.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	adminCPF, _ := c.Locals("cpf").(string)

	player, err := h.playerService.Update(c.Context(), c.Params("cpf"), &input, adminCPF)
	if err != nil {
		if errors.Is(err, services.ErrPlayerNotFound) {
			return response.NotFound(c, "Player not found")
		}
		return response.InternalServerError(c, "Failed to update player")
	}

	return response.Success(c, "Player updated successfully", player.ToResponse())
}

// Deactivate marks a player inactive
// @Summary Deactivate player
// @Description Mark a player inactive, stopping future dues generation
// @Tags Players
// @Produce json
// @Security BearerAuth
// @Param cpf path string true "Player CPF"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /players/{cpf} [delete]
func (h *PlayerHandler) Deactivate(c *fiber.Ctx) error {
	adminCPF, _ := c.Locals("cpf").(string)

	if err := h.playerService.Deactivate(c.Context(), c.Params("cpf"), adminCPF); err != nil {
		if errors.Is(err, services.ErrPlayerNotFound) {
			return response.NotFound(c, "Player not found")
		}
		return response.InternalServerError(c, "Failed to deactivate player")
	}

	return response.Success(c, "Player deactivated successfully", nil)
}

// Stats returns a player's aggregated match record
// @Summary Player stats
// @Description Appearances, goals and cards aggregated from finalized matches
// @Tags Players
// @Produce json
// @Security BearerAuth
// @Param cpf path string true "Player CPF"
// @Success 200 {object} response.Response
// @Router /players/{cpf}/stats [get]
func (h *PlayerHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.matchService.PlayerStats(c.Context(), c.Params("cpf"))
	if err != nil {
		return response.InternalServerError(c, "Failed to compute stats")
	}

	return response.Success(c, "Stats retrieved successfully", stats)
}

// StaticPix returns the static PIX code for the monthly fee
// @Summary Static PIX code
// @Description BRCode payload and QR image for paying the monthly fee manually
// @Tags Players
// @Produce json
// @Security BearerAuth
// @Param cpf path string true "Player CPF"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /players/{cpf}/pix [get]
func (h *PlayerHandler) StaticPix(c *fiber.Ctx) error {
	cpf := c.Params("cpf")

	// Players may only fetch their own code; admins may fetch any
	callerCPF, _ := c.Locals("cpf").(string)
	role, _ := c.Locals("role").(string)
	if role != "admin" && services.NormalizeCPF(cpf) != callerCPF {
		return response.Forbidden(c, "You can only access your own PIX code")
	}

	result, err := h.paymentService.StaticPix(c.Context(), services.NormalizeCPF(cpf))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPlayerNotFound):
			return response.NotFound(c, "Player not found")
		case errors.Is(err, services.ErrConfigNotSeeded):
			return response.InternalServerError(c, "Association settings missing")
		default:
			return response.InternalServerError(c, "Failed to build PIX code")
		}
	}

	return response.Success(c, "PIX code generated", result)
}
