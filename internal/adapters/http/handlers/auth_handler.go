package handlers

import (
	"errors"
	"strings"
	"time"

	"afps-backend/internal/config"
	"afps-backend/internal/core/services"
	"afps-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// LoginRequest represents login request body
type LoginRequest struct {
	CPF      string `json:"cpf"`
	Password string `json:"password"`
}

// CheckCPFRequest represents the pre-registration CPF probe body
type CheckCPFRequest struct {
	CPF string `json:"cpf"`
}

// RegisterRequest represents registration request body
type RegisterRequest struct {
	CPF         string `json:"cpf"`
	Name        string `json:"name"`
	Nickname    string `json:"nickname"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	BirthDate   string `json:"birth_date"`
	Position    string `json:"position"`
	ShirtNumber *int   `json:"shirt_number"`
}

// Login handles player login
// @Summary Login player
// @Description Authenticate a player by CPF (admins also send a password) and return tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.CPF == "" {
		return response.BadRequest(c, "CPF is required")
	}

	input := &services.LoginInput{
		CPF:      strings.TrimSpace(req.CPF),
		Password: req.Password,
	}

	result, err := h.authService.Login(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCPF):
			return response.BadRequest(c, "Invalid CPF")
		case errors.Is(err, services.ErrInvalidCredentials):
			return response.Unauthorized(c, "Invalid credentials")
		case errors.Is(err, services.ErrPasswordRequired):
			return response.Unauthorized(c, "Password is required for admin accounts")
		case errors.Is(err, services.ErrCPFNotAuthorized):
			return response.Forbidden(c, "CPF not authorized or registration incomplete")
		case errors.Is(err, services.ErrPlayerInactive):
			return response.Forbidden(c, "Player account is inactive")
		default:
			return response.InternalServerError(c, "Failed to login")
		}
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)

	return response.Success(c, "Login successful", fiber.Map{
		"access_token": result.AccessToken,
		"player":       result.Player,
	})
}

// CheckCPF handles the pre-registration CPF probe
// @Summary Check CPF status
// @Description Check whether a CPF is authorized and whether it already completed registration
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body CheckCPFRequest true "CPF to check"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/check-cpf [post]
func (h *AuthHandler) CheckCPF(c *fiber.Ctx) error {
	var req CheckCPFRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.CPF == "" {
		return response.BadRequest(c, "CPF is required")
	}

	result, err := h.authService.CheckCPF(c.Context(), req.CPF)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCPF) {
			return response.BadRequest(c, "Invalid CPF")
		}
		return response.InternalServerError(c, "Failed to check CPF")
	}

	return response.Success(c, "CPF checked", result)
}

// Register handles registration completion
// @Summary Complete registration
// @Description Complete the profile of a pre-authorized CPF and activate the player
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate required fields
	if req.CPF == "" {
		return response.BadRequest(c, "CPF is required")
	}
	if req.Name == "" {
		return response.BadRequest(c, "Name is required")
	}
	if req.Email == "" {
		return response.BadRequest(c, "Email is required")
	}

	input := &services.RegisterInput{
		CPF:         strings.TrimSpace(req.CPF),
		Name:        strings.TrimSpace(req.Name),
		Nickname:    strings.TrimSpace(req.Nickname),
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		BirthDate:   req.BirthDate,
		Position:    req.Position,
		ShirtNumber: req.ShirtNumber,
	}

	result, err := h.authService.Register(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCPF):
			return response.BadRequest(c, "Invalid CPF")
		case errors.Is(err, services.ErrCPFNotAuthorized):
			return response.Forbidden(c, "CPF not authorized by the association")
		case errors.Is(err, services.ErrAlreadyRegistered):
			return response.Conflict(c, "CPF already completed registration")
		default:
			return response.InternalServerError(c, "Failed to register")
		}
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)

	return response.Created(c, "Registration completed successfully", fiber.Map{
		"access_token": result.AccessToken,
		"player":       result.Player,
	})
}

// RefreshToken handles token refresh
// @Summary Refresh access token
// @Description Refresh access token using refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	// Get refresh token from cookie
	refreshToken := c.Cookies("refresh_token")
	if refreshToken == "" {
		return response.Unauthorized(c, "Refresh token not found")
	}

	result, err := h.authService.RefreshToken(c.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenExpired):
			h.clearAuthCookies(c)
			return response.Unauthorized(c, "Refresh token expired, please login again")
		case errors.Is(err, services.ErrTokenRevoked):
			h.clearAuthCookies(c)
			return response.Unauthorized(c, "Refresh token revoked, please login again")
		case errors.Is(err, services.ErrInvalidToken):
			h.clearAuthCookies(c)
			return response.Unauthorized(c, "Invalid refresh token")
		case errors.Is(err, services.ErrPlayerInactive):
			h.clearAuthCookies(c)
			return response.Forbidden(c, "Player account is inactive")
		default:
			return response.InternalServerError(c, "Failed to refresh token")
		}
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)

	return response.Success(c, "Token refreshed successfully", fiber.Map{
		"access_token": result.AccessToken,
		"player":       result.Player,
	})
}

// Logout handles player logout
// @Summary Logout player
// @Description Logout player and revoke refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken != "" {
		_ = h.authService.Logout(c.Context(), refreshToken)
	}

	h.clearAuthCookies(c)

	return response.Success(c, "Logged out successfully", nil)
}

// LogoutAll handles logout from all devices
// @Summary Logout from all devices
// @Description Revoke all refresh tokens for the player
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	cpf, ok := c.Locals("cpf").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.authService.LogoutAll(c.Context(), cpf); err != nil {
		return response.InternalServerError(c, "Failed to logout from all devices")
	}

	h.clearAuthCookies(c)

	return response.Success(c, "Logged out from all devices", nil)
}

// Me returns the current player info
// @Summary Get current player
// @Description Get the currently authenticated player's information
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	cpf, ok := c.Locals("cpf").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	player, err := h.authService.GetPlayerByCPF(c.Context(), cpf)
	if err != nil {
		return response.NotFound(c, "Player not found")
	}

	return response.Success(c, "Player retrieved successfully", fiber.Map{
		"player": player.ToResponse(),
	})
}

// setAuthCookies sets access and refresh token cookies
func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	// Access token cookie (shorter expiry)
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		MaxAge:   h.cfg.JWT.AccessTokenMins * 60, // Convert minutes to seconds
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})

	// Refresh token cookie (longer expiry)
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   h.cfg.JWT.RefreshTokenDays * 24 * 60 * 60, // Convert days to seconds
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}

// clearAuthCookies clears auth cookies
func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-1 * time.Hour),
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})

	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-1 * time.Hour),
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}
