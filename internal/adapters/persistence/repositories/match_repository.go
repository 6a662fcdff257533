package repositories

import (
	"context"

	"afps-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// GormMatchRepository handles match data access
type GormMatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(db *gorm.DB) *GormMatchRepository {
	return &GormMatchRepository{db: db}
}

// Create creates a match with its nested teams, rosters and events
func (r *GormMatchRepository) Create(ctx context.Context, match *models.Match) error {
	return r.db.WithContext(ctx).Create(match).Error
}

// GetByID gets a match with all nested data
func (r *GormMatchRepository) GetByID(ctx context.Context, id uint) (*models.Match, error) {
	var match models.Match
	err := r.db.WithContext(ctx).
		Preload("Teams").
		Preload("Teams.Roster").
		Preload("Teams.Goals").
		Preload("Teams.Cards").
		First(&match, id).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// Update saves top-level match columns (status, scores, notes, etc.)
func (r *GormMatchRepository) Update(ctx context.Context, match *models.Match) error {
	return r.db.WithContext(ctx).Omit("Teams").Save(match).Error
}

// ReplaceTeams swaps out the match's nested teams, rosters and events
// in one database transaction
func (r *GormMatchRepository) ReplaceTeams(ctx context.Context, matchID uint, teams []models.MatchTeam) error {
	return r.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		var old []models.MatchTeam
		if err := dbtx.Where("match_id = ?", matchID).Find(&old).Error; err != nil {
			return err
		}
		for _, team := range old {
			if err := dbtx.Where("team_id = ?", team.ID).Delete(&models.MatchRosterEntry{}).Error; err != nil {
				return err
			}
			if err := dbtx.Where("team_id = ?", team.ID).Delete(&models.MatchGoal{}).Error; err != nil {
				return err
			}
			if err := dbtx.Where("team_id = ?", team.ID).Delete(&models.MatchCard{}).Error; err != nil {
				return err
			}
		}
		if err := dbtx.Where("match_id = ?", matchID).Delete(&models.MatchTeam{}).Error; err != nil {
			return err
		}

		for i := range teams {
			teams[i].ID = 0
			teams[i].MatchID = matchID
			if err := dbtx.Create(&teams[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete soft-deletes a match
func (r *GormMatchRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Match{}, id).Error
}

// List lists matches with optional filters
func (r *GormMatchRepository) List(ctx context.Context, f MatchFilters, offset, limit int) ([]*models.Match, int64, error) {
	var matches []*models.Match
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Match{})
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.DateFrom != nil {
		query = query.Where("date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		query = query.Where("date <= ?", *f.DateTo)
	}
	if f.PlayerCPF != "" {
		query = query.Where(
			"id IN (SELECT mt.match_id FROM match_teams mt JOIN match_roster_entries mr ON mr.team_id = mt.id WHERE mr.player_cpf = ?)",
			f.PlayerCPF,
		)
	}

	query.Count(&total)

	err := query.
		Preload("Teams").
		Preload("Teams.Roster").
		Preload("Teams.Goals").
		Preload("Teams.Cards").
		Order("date DESC").
		Offset(offset).
		Limit(limit).
		Find(&matches).Error

	return matches, total, err
}

// ListFinalizedByPlayer lists finalized matches a player was rostered in
func (r *GormMatchRepository) ListFinalizedByPlayer(ctx context.Context, cpf string) ([]*models.Match, error) {
	var matches []*models.Match
	err := r.db.WithContext(ctx).
		Preload("Teams").
		Preload("Teams.Roster").
		Preload("Teams.Goals").
		Preload("Teams.Cards").
		Where("status = ?", models.MatchStatusFinalized).
		Where(
			"id IN (SELECT mt.match_id FROM match_teams mt JOIN match_roster_entries mr ON mr.team_id = mt.id WHERE mr.player_cpf = ?)",
			cpf,
		).
		Order("date DESC").
		Find(&matches).Error
	return matches, err
}
