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

// Match errors
var (
	ErrMatchNotFound     = errors.New("match not found")
	ErrInvalidTransition = errors.New("invalid match status transition")
	ErrInvalidTeams      = errors.New("match needs exactly one home and one away team")
)

// MatchService handles match lifecycle and triggers fine generation
type MatchService struct {
	matchRepo  repositories.MatchRepository
	playerRepo repositories.PlayerRepository
	financeSvc *FinanceService
	auditRepo  repositories.AuditLogRepository
}

// NewMatchService creates a new match service
func NewMatchService(
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	financeSvc *FinanceService,
	auditRepo repositories.AuditLogRepository,
) *MatchService {
	return &MatchService{
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
		financeSvc: financeSvc,
		auditRepo:  auditRepo,
	}
}

// RosterEntryInput is one lined-up player
type RosterEntryInput struct {
	PlayerCPF   string `json:"player_cpf" validate:"required,len=11"`
	PlayerName  string `json:"player_name" validate:"required"`
	ShirtNumber *int   `json:"shirt_number"`
	Position    string `json:"position"`
}

// GoalInput is one goal event
type GoalInput struct {
	PlayerCPF  string `json:"player_cpf" validate:"required,len=11"`
	PlayerName string `json:"player_name" validate:"required"`
	Minute     int    `json:"minute" validate:"min=0,max=130"`
	Kind       string `json:"kind"`
}

// CardInput is one disciplinary card event
type CardInput struct {
	PlayerCPF  string `json:"player_cpf" validate:"required,len=11"`
	PlayerName string `json:"player_name" validate:"required"`
	Minute     int    `json:"minute" validate:"min=0,max=130"`
	Color      string `json:"color" validate:"required,oneof=yellow red"`
	Reason     string `json:"reason"`
}

// TeamInput is one side of a match
type TeamInput struct {
	Side   string             `json:"side" validate:"required,oneof=home away"`
	Name   string             `json:"name" validate:"required"`
	Roster []RosterEntryInput `json:"roster"`
	Goals  []GoalInput        `json:"goals"`
	Cards  []CardInput        `json:"cards"`
}

// MatchInput creates or updates a match
type MatchInput struct {
	Date        string      `json:"date" validate:"required"`
	KickoffTime string      `json:"kickoff_time" validate:"required"`
	Location    string      `json:"location"`
	Status      string      `json:"status"`
	HomeScore   int         `json:"home_score"`
	AwayScore   int         `json:"away_score"`
	Notes       string      `json:"notes"`
	RefereeCPF  string      `json:"referee_cpf"`
	RefereeName string      `json:"referee_name"`
	Teams       []TeamInput `json:"teams" validate:"required"`
}

// allowedTransitions maps a status to the statuses it may move to.
// Finalized matches may be re-saved (late-added cards and goals).
var allowedTransitions = map[string][]string{
	models.MatchStatusScheduled:  {models.MatchStatusInProgress, models.MatchStatusFinalized, models.MatchStatusCancelled},
	models.MatchStatusInProgress: {models.MatchStatusFinalized, models.MatchStatusCancelled},
	models.MatchStatusFinalized:  {models.MatchStatusFinalized},
	models.MatchStatusCancelled:  {},
}

func transitionAllowed(from, to string) bool {
	if from == to {
		return true
	}
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Create registers a new match
func (s *MatchService) Create(ctx context.Context, input *MatchInput, registeredBy string) (*models.Match, error) {
	if err := validateTeams(input.Teams); err != nil {
		return nil, err
	}

	date, err := ParseDate(input.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}

	status := input.Status
	if status == "" {
		status = models.MatchStatusScheduled
	}
	if _, ok := allowedTransitions[status]; !ok {
		return nil, ErrInvalidTransition
	}

	match := &models.Match{
		Date:         date,
		KickoffTime:  input.KickoffTime,
		Location:     input.Location,
		Status:       status,
		HomeScore:    input.HomeScore,
		AwayScore:    input.AwayScore,
		Notes:        input.Notes,
		RefereeCPF:   NormalizeCPF(input.RefereeCPF),
		RefereeName:  input.RefereeName,
		RegisteredBy: registeredBy,
		Teams:        buildTeams(input.Teams),
	}

	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, err
	}

	// A match created directly as finalized bills its cards right away
	if status == models.MatchStatusFinalized {
		if err := s.applyFinalization(ctx, match.ID, nil); err != nil {
			return nil, err
		}
	}

	s.audit(ctx, "match.create", registeredBy, models.RoleAdmin,
		fmt.Sprintf(`{"match_id":%d,"date":"%s"}`, match.ID, input.Date))

	log.Printf("⚽ Match created: #%d on %s", match.ID, input.Date)
	return s.matchRepo.GetByID(ctx, match.ID)
}

// Update edits a match, validating the status transition. Saving a
// match as finalized (first time or re-save) triggers fine generation
// for any unbilled cards; a fine generation error aborts the update's
// observable success so the admin retries.
func (s *MatchService) Update(ctx context.Context, id uint, input *MatchInput, updatedBy string) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	newStatus := input.Status
	if newStatus == "" {
		newStatus = match.Status
	}
	if !transitionAllowed(match.Status, newStatus) {
		return nil, ErrInvalidTransition
	}
	if err := validateTeams(input.Teams); err != nil {
		return nil, err
	}

	date, err := ParseDate(input.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}

	// Goal counters are kept by diffing, so a re-save that adds or
	// removes goals adjusts each scorer by the difference only.
	oldCounts := map[string]int{}
	if match.Status == models.MatchStatusFinalized {
		oldCounts = goalCounts(match.Teams)
	}

	match.Date = date
	match.KickoffTime = input.KickoffTime
	match.Location = input.Location
	match.Status = newStatus
	match.HomeScore = input.HomeScore
	match.AwayScore = input.AwayScore
	match.Notes = input.Notes
	match.RefereeCPF = NormalizeCPF(input.RefereeCPF)
	match.RefereeName = input.RefereeName

	teams := match.Teams
	match.Teams = nil
	if err := s.matchRepo.Update(ctx, match); err != nil {
		return nil, err
	}
	match.Teams = teams

	if err := s.matchRepo.ReplaceTeams(ctx, id, buildTeams(input.Teams)); err != nil {
		return nil, err
	}

	if newStatus == models.MatchStatusFinalized {
		if err := s.applyFinalization(ctx, id, oldCounts); err != nil {
			return nil, err
		}
	}

	s.audit(ctx, "match.update", updatedBy, models.RoleAdmin,
		fmt.Sprintf(`{"match_id":%d,"status":"%s"}`, id, newStatus))

	return s.matchRepo.GetByID(ctx, id)
}

// applyFinalization bills unbilled cards and settles goal counters for
// a match stored as finalized. oldCounts carries the goal tallies the
// match had before this save (nil or empty when it was not finalized).
func (s *MatchService) applyFinalization(ctx context.Context, id uint, oldCounts map[string]int) error {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.financeSvc.GenerateMatchFines(ctx, match); err != nil {
		return err
	}

	newCounts := goalCounts(match.Teams)
	for cpf, n := range newCounts {
		if delta := n - oldCounts[cpf]; delta != 0 {
			if err := s.playerRepo.IncrementGoals(ctx, cpf, delta); err != nil {
				return err
			}
		}
	}
	for cpf, n := range oldCounts {
		if _, still := newCounts[cpf]; !still && n > 0 {
			if err := s.playerRepo.IncrementGoals(ctx, cpf, -n); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetByID gets a match with all nested data
func (s *MatchService) GetByID(ctx context.Context, id uint) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

// List lists matches with filters
func (s *MatchService) List(ctx context.Context, f repositories.MatchFilters, offset, limit int) ([]*models.Match, int64, error) {
	return s.matchRepo.List(ctx, f, offset, limit)
}

// Delete removes a match. Fines already generated from it stay.
func (s *MatchService) Delete(ctx context.Context, id uint, deletedBy string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.matchRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit(ctx, "match.delete", deletedBy, models.RoleAdmin,
		fmt.Sprintf(`{"match_id":%d}`, id))

	log.Printf("🗑️ Match deleted: #%d", id)
	return nil
}

// PlayerStats aggregates a player's record across finalized matches
type PlayerStats struct {
	Appearances int `json:"appearances"`
	Goals       int `json:"goals"`
	YellowCards int `json:"yellow_cards"`
	RedCards    int `json:"red_cards"`
}

// PlayerStats computes appearances, goals and cards from the finalized
// matches the player was rostered in
func (s *MatchService) PlayerStats(ctx context.Context, cpf string) (*PlayerStats, error) {
	matches, err := s.matchRepo.ListFinalizedByPlayer(ctx, cpf)
	if err != nil {
		return nil, err
	}

	stats := &PlayerStats{Appearances: len(matches)}
	for _, match := range matches {
		for _, team := range match.Teams {
			for _, goal := range team.Goals {
				if goal.PlayerCPF == cpf && goal.Kind != models.GoalKindOwnGoal {
					stats.Goals++
				}
			}
			for _, card := range team.Cards {
				if card.PlayerCPF != cpf {
					continue
				}
				if card.Color == models.CardRed {
					stats.RedCards++
				} else {
					stats.YellowCards++
				}
			}
		}
	}
	return stats, nil
}

func validateTeams(teams []TeamInput) error {
	if len(teams) != 2 {
		return ErrInvalidTeams
	}
	sides := map[string]bool{}
	for _, t := range teams {
		if t.Side != models.TeamSideHome && t.Side != models.TeamSideAway {
			return ErrInvalidTeams
		}
		if sides[t.Side] {
			return ErrInvalidTeams
		}
		sides[t.Side] = true
	}
	return nil
}

func buildTeams(inputs []TeamInput) []models.MatchTeam {
	teams := make([]models.MatchTeam, 0, len(inputs))
	for _, in := range inputs {
		team := models.MatchTeam{
			Side: in.Side,
			Name: in.Name,
		}
		for _, r := range in.Roster {
			team.Roster = append(team.Roster, models.MatchRosterEntry{
				PlayerCPF:   NormalizeCPF(r.PlayerCPF),
				PlayerName:  r.PlayerName,
				ShirtNumber: r.ShirtNumber,
				Position:    r.Position,
			})
		}
		for _, g := range in.Goals {
			kind := g.Kind
			if kind == "" {
				kind = models.GoalKindRegular
			}
			team.Goals = append(team.Goals, models.MatchGoal{
				PlayerCPF:  NormalizeCPF(g.PlayerCPF),
				PlayerName: g.PlayerName,
				Minute:     g.Minute,
				Kind:       kind,
			})
		}
		for _, c := range in.Cards {
			team.Cards = append(team.Cards, models.MatchCard{
				PlayerCPF:  NormalizeCPF(c.PlayerCPF),
				PlayerName: c.PlayerName,
				Minute:     c.Minute,
				Color:      c.Color,
				Reason:     c.Reason,
			})
		}
		teams = append(teams, team)
	}
	return teams
}

// goalCounts tallies non-own-goal goals per scorer
func goalCounts(teams []models.MatchTeam) map[string]int {
	counts := map[string]int{}
	for _, team := range teams {
		for _, goal := range team.Goals {
			if goal.Kind == models.GoalKindOwnGoal {
				continue
			}
			counts[goal.PlayerCPF]++
		}
	}
	return counts
}

// audit records an audit entry for this service
func (s *MatchService) audit(ctx context.Context, action, cpf, role, details string) {
	writeAudit(ctx, s.auditRepo, action, cpf, role, details)
}
