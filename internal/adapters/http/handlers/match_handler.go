package handlers

import (
	"errors"
	"strconv"

	"afps-backend/internal/adapters/persistence/repositories"
	"afps-backend/internal/core/services"
	"afps-backend/internal/pkg/pagination"
	"afps-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MatchHandler handles match endpoints
type MatchHandler struct {
	matchService *services.MatchService
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(matchService *services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// Create registers a match
// @Summary Create match
// @Description Register a match with teams, rosters, goals and cards
// @Tags Matches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.MatchInput true "Match data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /matches [post]
func (h *MatchHandler) Create(c *fiber.Ctx) error {
	var input services.MatchInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	adminCPF, _ := c.Locals("cpf").(string)

	match, err := h.matchService.Create(c.Context(), &input, adminCPF)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidTeams):
			return response.BadRequest(c, "Match needs exactly one home and one away team")
		case errors.Is(err, services.ErrInvalidTransition):
			return response.BadRequest(c, "Invalid match status")
		case errors.Is(err, services.ErrConfigNotSeeded):
			return response.InternalServerError(c, "Association settings missing")
		default:
			return response.BadRequest(c, err.Error())
		}
	}

	return response.Created(c, "Match created successfully", match)
}

// Update edits a match
// @Summary Update match
// @Description Update a match; saving it finalized bills any unbilled cards
// @Tags Matches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Param body body services.MatchInput true "Match data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /matches/{id} [put]
func (h *MatchHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid match id")
	}

	var input services.MatchInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	adminCPF, _ := c.Locals("cpf").(string)

	match, err := h.matchService.Update(c.Context(), uint(id), &input, adminCPF)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMatchNotFound):
			return response.NotFound(c, "Match not found")
		case errors.Is(err, services.ErrInvalidTransition):
			return response.BadRequest(c, "Invalid match status transition")
		case errors.Is(err, services.ErrInvalidTeams):
			return response.BadRequest(c, "Match needs exactly one home and one away team")
		case errors.Is(err, services.ErrConfigNotSeeded):
			return response.InternalServerError(c, "Association settings missing")
		default:
			return response.BadRequest(c, err.Error())
		}
	}

	return response.Success(c, "Match updated successfully", match)
}

// Get gets one match
// @Summary Get match
// @Description Get a match with its teams, rosters, goals and cards
// @Tags Matches
// @Produce json
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /matches/{id} [get]
func (h *MatchHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid match id")
	}

	match, err := h.matchService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrMatchNotFound) {
			return response.NotFound(c, "Match not found")
		}
		return response.InternalServerError(c, "Failed to get match")
	}

	return response.Success(c, "Match retrieved successfully", match)
}

// List lists matches
// @Summary List matches
// @Description List matches with optional status, date range and player filters
// @Tags Matches
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param date_from query string false "Start date (YYYY-MM-DD)"
// @Param date_to query string false "End date (YYYY-MM-DD)"
// @Param player_cpf query string false "Filter by rostered player"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /matches [get]
func (h *MatchHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	filters := repositories.MatchFilters{
		Status:    c.Query("status"),
		PlayerCPF: services.NormalizeCPF(c.Query("player_cpf")),
	}
	if from := c.Query("date_from"); from != "" {
		if t, err := services.ParseDate(from); err == nil {
			filters.DateFrom = &t
		}
	}
	if to := c.Query("date_to"); to != "" {
		if t, err := services.ParseDate(to); err == nil {
			filters.DateTo = &t
		}
	}

	matches, total, err := h.matchService.List(c.Context(), filters, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list matches")
	}

	return response.Success(c, "Matches retrieved successfully", pagination.NewResponse(matches, params, total))
}

// Delete removes a match
// @Summary Delete match
// @Description Remove a match; fines already generated from it stay
// @Tags Matches
// @Produce json
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /matches/{id} [delete]
func (h *MatchHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid match id")
	}

	adminCPF, _ := c.Locals("cpf").(string)

	if err := h.matchService.Delete(c.Context(), uint(id), adminCPF); err != nil {
		if errors.Is(err, services.ErrMatchNotFound) {
			return response.NotFound(c, "Match not found")
		}
		return response.InternalServerError(c, "Failed to delete match")
	}

	return response.Success(c, "Match deleted successfully", nil)
}
