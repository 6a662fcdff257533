package handlers

import (
	"errors"
	"strconv"

	"afps-backend/internal/core/services"
	"afps-backend/internal/pkg/pagination"
	"afps-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles settings, expenses, transparency and logs
type AdminHandler struct {
	adminService *services.AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// GetConfig returns the association settings
// @Summary Get settings
// @Description Get the association billing settings
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/config [get]
func (h *AdminHandler) GetConfig(c *fiber.Ctx) error {
	cfg, err := h.adminService.GetConfig(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to get settings")
	}

	return response.Success(c, "Settings retrieved successfully", cfg)
}

// UpdateConfig edits the association settings
// @Summary Update settings
// @Description Update billing amounts and PIX payee data; new amounts apply to items generated afterwards
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UpdateConfigInput true "Settings fields"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/config [put]
func (h *AdminHandler) UpdateConfig(c *fiber.Ctx) error {
	var input services.UpdateConfigInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	adminCPF, _ := c.Locals("cpf").(string)

	cfg, err := h.adminService.UpdateConfig(c.Context(), &input, adminCPF)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAmount) {
			return response.BadRequest(c, "Amounts must be positive")
		}
		return response.InternalServerError(c, "Failed to update settings")
	}

	return response.Success(c, "Settings updated successfully", cfg)
}

// CreateExpense records an expense
// @Summary Create expense
// @Description Record an association expense
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ExpenseInput true "Expense data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/expenses [post]
func (h *AdminHandler) CreateExpense(c *fiber.Ctx) error {
	var input services.ExpenseInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	adminCPF, _ := c.Locals("cpf").(string)

	expense, err := h.adminService.CreateExpense(c.Context(), &input, adminCPF)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAmount) {
			return response.BadRequest(c, "Amount must be positive")
		}
		return response.BadRequest(c, err.Error())
	}

	return response.Created(c, "Expense recorded successfully", expense)
}

// UpdateExpense edits an expense
// @Summary Update expense
// @Description Edit a recorded expense
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Param body body services.ExpenseInput true "Expense data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/expenses/{id} [put]
func (h *AdminHandler) UpdateExpense(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid expense id")
	}

	var input services.ExpenseInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	adminCPF, _ := c.Locals("cpf").(string)

	expense, err := h.adminService.UpdateExpense(c.Context(), uint(id), &input, adminCPF)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrExpenseNotFound):
			return response.NotFound(c, "Expense not found")
		case errors.Is(err, services.ErrInvalidAmount):
			return response.BadRequest(c, "Amount must be positive")
		default:
			return response.BadRequest(c, err.Error())
		}
	}

	return response.Success(c, "Expense updated successfully", expense)
}

// DeleteExpense removes an expense
// @Summary Delete expense
// @Description Remove a recorded expense
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/expenses/{id} [delete]
func (h *AdminHandler) DeleteExpense(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid expense id")
	}

	adminCPF, _ := c.Locals("cpf").(string)

	if err := h.adminService.DeleteExpense(c.Context(), uint(id), adminCPF); err != nil {
		if errors.Is(err, services.ErrExpenseNotFound) {
			return response.NotFound(c, "Expense not found")
		}
		return response.InternalServerError(c, "Failed to delete expense")
	}

	return response.Success(c, "Expense deleted successfully", nil)
}

// ListExpenses lists expenses
// @Summary List expenses
// @Description List recorded expenses, newest first
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /admin/expenses [get]
func (h *AdminHandler) ListExpenses(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	expenses, total, err := h.adminService.ListExpenses(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list expenses")
	}

	return response.Success(c, "Expenses retrieved successfully", pagination.NewResponse(expenses, params, total))
}

// Transparency returns the public financial summary
// @Summary Transparency report
// @Description Total collected vs total expenses, public read
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Response
// @Router /transparency [get]
func (h *AdminHandler) Transparency(c *fiber.Ctx) error {
	report, err := h.adminService.Transparency(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to build report")
	}

	return response.Success(c, "Report retrieved successfully", report)
}

// ListLogs lists audit log entries
// @Summary List audit logs
// @Description List audit log entries, newest first
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /admin/logs [get]
func (h *AdminHandler) ListLogs(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	logs, total, err := h.adminService.ListLogs(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list logs")
	}

	return response.Success(c, "Logs retrieved successfully", pagination.NewResponse(logs, params, total))
}
