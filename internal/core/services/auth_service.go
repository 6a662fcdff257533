package services

import (
	"context"
	"errors"
	"log"

	"afps-backend/internal/adapters/persistence/models"
	"afps-backend/internal/adapters/persistence/repositories"
	"afps-backend/internal/config"
	"afps-backend/internal/pkg/jwt"
	"afps-backend/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCPFNotAuthorized   = errors.New("cpf not authorized by the association")
	ErrAlreadyRegistered  = errors.New("cpf already completed registration")
	ErrPasswordRequired   = errors.New("password required for admin login")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrPlayerInactive     = errors.New("player account is inactive")
	ErrInvalidCPF         = errors.New("invalid cpf")
)

// AuthService handles authentication business logic
type AuthService struct {
	playerRepo       repositories.PlayerRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	auditRepo        repositories.AuditLogRepository
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	playerRepo repositories.PlayerRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	auditRepo repositories.AuditLogRepository,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		playerRepo:       playerRepo,
		refreshTokenRepo: refreshTokenRepo,
		auditRepo:        auditRepo,
		cfg:              cfg,
	}
}

// LoginInput represents login input. Players log in with CPF only;
// admins must also present their password.
type LoginInput struct {
	CPF      string `json:"cpf" validate:"required,len=11"`
	Password string `json:"password"`
}

// RegisterInput completes the profile of an authorized CPF
type RegisterInput struct {
	CPF         string `json:"cpf" validate:"required,len=11"`
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Nickname    string `json:"nickname"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone"`
	BirthDate   string `json:"birth_date"`
	Position    string `json:"position"`
	ShirtNumber *int   `json:"shirt_number"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Player       *models.PlayerResponse `json:"player"`
	AccessToken  string                 `json:"access_token"`
	RefreshToken string                 `json:"refresh_token"`
}

// CheckCPFResult answers the pre-registration CPF probe
type CheckCPFResult struct {
	Authorized            bool `json:"authorized"`
	RegistrationCompleted bool `json:"registration_completed"`
}

// Login authenticates a player by CPF. Admin accounts additionally
// verify the bcrypt password.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	cpf := NormalizeCPF(input.CPF)
	if len(cpf) != 11 {
		return nil, ErrInvalidCPF
	}

	// 1. Find player by CPF
	player, err := s.playerRepo.GetByCPF(ctx, cpf)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Check account state
	if !player.Authorized {
		return nil, ErrCPFNotAuthorized
	}
	if player.Status == models.PlayerStatusInactive {
		return nil, ErrPlayerInactive
	}
	if !player.RegistrationCompleted {
		return nil, ErrCPFNotAuthorized
	}

	// 3. Admins must present a password
	if player.Role == models.RoleAdmin {
		if input.Password == "" {
			return nil, ErrPasswordRequired
		}
		if !password.Verify(input.Password, player.Password) {
			return nil, ErrInvalidCredentials
		}
	}

	// 4. Generate tokens
	tokens, err := s.generateTokens(player)
	if err != nil {
		return nil, err
	}

	// 5. Store refresh token
	if err := s.storeRefreshToken(ctx, player.CPF, tokens.RefreshToken); err != nil {
		return nil, err
	}

	s.audit(ctx, "auth.login", player.CPF, player.Role, "")

	log.Printf("✅ Player logged in: %s (%s)", player.Name, maskCPF(player.CPF))

	return &AuthResponse{
		Player:       player.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// CheckCPF reports whether a CPF is authorized and still unregistered
func (s *AuthService) CheckCPF(ctx context.Context, rawCPF string) (*CheckCPFResult, error) {
	cpf := NormalizeCPF(rawCPF)
	if len(cpf) != 11 {
		return nil, ErrInvalidCPF
	}

	player, err := s.playerRepo.GetByCPF(ctx, cpf)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CheckCPFResult{Authorized: false}, nil
		}
		return nil, err
	}

	return &CheckCPFResult{
		Authorized:            player.Authorized,
		RegistrationCompleted: player.RegistrationCompleted,
	}, nil
}

// Register completes the profile of an authorized CPF and activates it
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	cpf := NormalizeCPF(input.CPF)
	if len(cpf) != 11 {
		return nil, ErrInvalidCPF
	}

	// 1. The CPF must have been authorized by an admin first
	player, err := s.playerRepo.GetByCPF(ctx, cpf)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCPFNotAuthorized
		}
		return nil, err
	}
	if !player.Authorized {
		return nil, ErrCPFNotAuthorized
	}
	if player.RegistrationCompleted {
		return nil, ErrAlreadyRegistered
	}

	// 2. Fill in the profile and activate
	player.Name = input.Name
	player.Nickname = input.Nickname
	player.Email = input.Email
	player.Phone = input.Phone
	player.Position = input.Position
	player.ShirtNumber = input.ShirtNumber
	if birthDate, parseErr := ParseDate(input.BirthDate); parseErr == nil {
		player.BirthDate = &birthDate
	}
	player.Role = models.RolePlayer
	player.Status = models.PlayerStatusActive
	player.RegistrationCompleted = true

	if err := s.playerRepo.Update(ctx, player); err != nil {
		return nil, err
	}

	// 3. Generate tokens
	tokens, err := s.generateTokens(player)
	if err != nil {
		return nil, err
	}

	// 4. Store refresh token
	if err := s.storeRefreshToken(ctx, player.CPF, tokens.RefreshToken); err != nil {
		return nil, err
	}

	s.audit(ctx, "auth.register", player.CPF, player.Role, "")

	log.Printf("✅ Registration completed: %s (%s)", player.Name, maskCPF(player.CPF))

	return &AuthResponse{
		Player:       player.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// RefreshToken refreshes the access token using refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	// 1. Validate refresh token JWT
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	// 2. Hash the token to find in DB
	tokenHash := password.HashToken(refreshToken)

	// 3. Find token in DB
	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	// 4. Check if token is revoked
	if storedToken.IsRevoked() {
		return nil, ErrTokenRevoked
	}

	// 5. Check if token is expired
	if storedToken.IsExpired() {
		return nil, ErrTokenExpired
	}

	// 6. Get player
	player, err := s.playerRepo.GetByCPF(ctx, claims.CPF)
	if err != nil {
		return nil, ErrPlayerNotFound
	}

	// 7. Check account state
	if player.Status == models.PlayerStatusInactive {
		return nil, ErrPlayerInactive
	}

	// 8. Revoke old refresh token (Token Rotation)
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}

	// 9. Generate new tokens
	tokens, err := s.generateTokens(player)
	if err != nil {
		return nil, err
	}

	// 10. Store new refresh token
	if err := s.storeRefreshToken(ctx, player.CPF, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ Token refreshed for: %s", maskCPF(player.CPF))

	return &AuthResponse{
		Player:       player.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := password.HashToken(refreshToken)

	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, tokenHash); err != nil {
		return err
	}

	log.Printf("✅ Player logged out")
	return nil
}

// LogoutAll revokes all refresh tokens for a player
func (s *AuthService) LogoutAll(ctx context.Context, cpf string) error {
	if err := s.refreshTokenRepo.RevokeAllByCPF(ctx, cpf); err != nil {
		return err
	}

	log.Printf("✅ All sessions revoked for: %s", maskCPF(cpf))
	return nil
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// GetPlayerByCPF gets a player by CPF
func (s *AuthService) GetPlayerByCPF(ctx context.Context, cpf string) (*models.Player, error) {
	return s.playerRepo.GetByCPF(ctx, cpf)
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(player *models.Player) (*TokenPair, error) {
	// Generate access token
	accessToken, err := jwt.GenerateAccessToken(
		player.CPF,
		player.Name,
		player.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	// Generate unique token ID
	tokenID := uuid.New().String()

	// Generate refresh token
	refreshToken, err := jwt.GenerateRefreshToken(
		player.CPF,
		tokenID,
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, cpf, refreshToken string) error {
	tokenHash := password.HashToken(refreshToken)
	expiresAt := jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays)

	token := &models.RefreshToken{
		PlayerCPF: cpf,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
	}

	return s.refreshTokenRepo.Create(ctx, token)
}

// audit records an audit entry for this service
func (s *AuthService) audit(ctx context.Context, action, cpf, role, details string) {
	writeAudit(ctx, s.auditRepo, action, cpf, role, details)
}
