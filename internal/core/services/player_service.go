package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"afps-backend/internal/adapters/persistence/models"
	"afps-backend/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Player management errors
var (
	ErrCPFAlreadyExists = errors.New("cpf already registered")
)

// PlayerService handles player administration
type PlayerService struct {
	playerRepo repositories.PlayerRepository
	auditRepo  repositories.AuditLogRepository
}

// NewPlayerService creates a new player service
func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	auditRepo repositories.AuditLogRepository,
) *PlayerService {
	return &PlayerService{
		playerRepo: playerRepo,
		auditRepo:  auditRepo,
	}
}

// AuthorizeCPF lets an admin pre-authorize a CPF. The player record is
// created as authorized_unregistered; the owner completes the profile
// later through registration.
func (s *PlayerService) AuthorizeCPF(ctx context.Context, rawCPF, authorizedBy string) (*models.Player, error) {
	cpf := NormalizeCPF(rawCPF)
	if len(cpf) != 11 {
		return nil, ErrInvalidCPF
	}

	exists, err := s.playerRepo.ExistsByCPF(ctx, cpf)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrCPFAlreadyExists
	}

	player := &models.Player{
		CPF:        cpf,
		Status:     models.PlayerStatusAuthorizedUnregistered,
		Authorized: true,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, err
	}

	s.audit(ctx, "player.authorize", authorizedBy, models.RoleAdmin,
		fmt.Sprintf(`{"cpf":"%s"}`, maskCPF(cpf)))

	log.Printf("✅ CPF authorized: %s", maskCPF(cpf))
	return player, nil
}

// GetByCPF gets a player by CPF
func (s *PlayerService) GetByCPF(ctx context.Context, rawCPF string) (*models.Player, error) {
	cpf := NormalizeCPF(rawCPF)
	player, err := s.playerRepo.GetByCPF(ctx, cpf)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}

// List lists players, optionally filtered by status
func (s *PlayerService) List(ctx context.Context, status string, offset, limit int) ([]*models.Player, int64, error) {
	return s.playerRepo.List(ctx, status, offset, limit)
}

// UpdateProfileInput carries admin-editable profile fields
type UpdateProfileInput struct {
	Name        string `json:"name"`
	Nickname    string `json:"nickname"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Position    string `json:"position"`
	ShirtNumber *int   `json:"shirt_number"`
	Status      string `json:"status"`
}

// Update edits a player's profile
func (s *PlayerService) Update(ctx context.Context, rawCPF string, input *UpdateProfileInput, updatedBy string) (*models.Player, error) {
	player, err := s.GetByCPF(ctx, rawCPF)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		player.Name = input.Name
	}
	if input.Nickname != "" {
		player.Nickname = input.Nickname
	}
	if input.Email != "" {
		player.Email = input.Email
	}
	if input.Phone != "" {
		player.Phone = input.Phone
	}
	if input.Position != "" {
		player.Position = input.Position
	}
	if input.ShirtNumber != nil {
		player.ShirtNumber = input.ShirtNumber
	}
	if input.Status != "" {
		player.Status = input.Status
	}

	if err := s.playerRepo.Update(ctx, player); err != nil {
		return nil, err
	}

	s.audit(ctx, "player.update", updatedBy, models.RoleAdmin,
		fmt.Sprintf(`{"cpf":"%s"}`, maskCPF(player.CPF)))

	return player, nil
}

// Deactivate marks a player inactive, stopping future dues generation.
// Existing payable items stay untouched.
func (s *PlayerService) Deactivate(ctx context.Context, rawCPF, deactivatedBy string) error {
	player, err := s.GetByCPF(ctx, rawCPF)
	if err != nil {
		return err
	}

	player.Status = models.PlayerStatusInactive
	if err := s.playerRepo.Update(ctx, player); err != nil {
		return err
	}

	s.audit(ctx, "player.deactivate", deactivatedBy, models.RoleAdmin,
		fmt.Sprintf(`{"cpf":"%s"}`, maskCPF(player.CPF)))

	log.Printf("🛑 Player deactivated: %s", maskCPF(player.CPF))
	return nil
}

// audit records an audit entry for this service
func (s *PlayerService) audit(ctx context.Context, action, cpf, role, details string) {
	writeAudit(ctx, s.auditRepo, action, cpf, role, details)
}
